package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/app"
	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/config"
	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/supabase"
)

const scriptURL = "https://script.google.com/macros/s/X/exec"

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		StoreDriver:   config.StoreDriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "orders.db"),
		AppsScriptURL: scriptURL,
		WorkerSecret:  "s3cret",
	}
}

func TestOpenStore_SQLitePublishesToHub(t *testing.T) {
	hub := feed.NewHub()
	store, err := app.OpenStore(sqliteConfig(t), hub, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer store.Close()
	assert.Nil(t, store.Realtime)

	ctx := context.Background()
	sub, err := hub.Subscribe(ctx, "O1")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	files := models.Normalize([]models.UploadedFile{{Filename: "a.pdf", FileID: "X1"}})
	order, err := models.NewOrder("O1", "u1", models.StatusUploaded, models.OrderForm{Customer: models.Customer{Name: "Ana"}}, files)
	require.NoError(t, err)
	_, err = store.Orders.CreateOrder(ctx, order)
	require.NoError(t, err)

	assert.Equal(t, "O1", (<-sub.Updates()).ID)

	got, err := store.Orders.GetOrder(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, got.Status)
}

func TestOpenStore_SQLiteWithoutHub(t *testing.T) {
	store, err := app.OpenStore(sqliteConfig(t), nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StoreDriver = "mongo"

	_, err := app.OpenStore(cfg, nil, zap.NewNop().Sugar())
	assert.ErrorContains(t, err, `unknown store driver "mongo"`)
}

func TestNewWorker(t *testing.T) {
	worker, err := app.NewWorker(sqliteConfig(t), nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.NotNil(t, worker)
}

func TestNewWorker_InvalidScriptURL(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.AppsScriptURL = "ftp://script.example"

	_, err := app.NewWorker(cfg, nil, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, bridge.ErrInvalidBaseURL)
}

func TestNewPreviewPublisher(t *testing.T) {
	endpoint, err := bridge.ParseBaseURL(scriptURL)
	require.NoError(t, err)
	bridgeClient := bridge.NewClient(endpoint, "s3cret")

	t.Run("bridge when supabase is not configured", func(t *testing.T) {
		cfg := sqliteConfig(t)
		cfg.SupabaseURL = "https://project.supabase.co"

		previews, err := app.NewPreviewPublisher(cfg, bridgeClient, zap.NewNop().Sugar())
		require.NoError(t, err)
		assert.Same(t, bridgeClient, previews)
	})

	t.Run("supabase storage when configured", func(t *testing.T) {
		cfg := sqliteConfig(t)
		cfg.SupabaseURL = "https://project.supabase.co"
		cfg.SupabasePublishableKey = "sb_publishable_key"
		cfg.SupabaseStorageBucket = "previews"

		previews, err := app.NewPreviewPublisher(cfg, bridgeClient, zap.NewNop().Sugar())
		require.NoError(t, err)
		assert.IsType(t, &supabase.StorageClient{}, previews)
	})
}
