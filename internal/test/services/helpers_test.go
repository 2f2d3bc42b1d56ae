package services_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/localstore"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

func newStore(t *testing.T, hub *feed.Hub) *localstore.Store {
	t.Helper()
	var publisher localstore.Publisher
	if hub != nil {
		publisher = hub
	}
	store, err := localstore.Open(filepath.Join(t.TempDir(), "orders.db"), publisher)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func strPtr(s string) *string { return &s }

func uploadedRequest(ids ...string) models.CreateOrderRequest {
	req := models.CreateOrderRequest{
		Status:   models.StatusUploaded,
		Customer: models.Customer{Name: "Ana", Phone: "+56 9 1234 5678"},
		Options:  models.Options{Color: "Color", Delivery: "Delivery"},
	}
	for i, id := range ids {
		req.Files = append(req.Files, models.FileDescriptor{
			Filename:    string(rune('a'+i)) + ".pdf",
			DriveFileID: strPtr(id),
		})
	}
	return req
}

func placeholderRequest(names ...string) models.CreateOrderRequest {
	req := models.CreateOrderRequest{Status: models.StatusAwaitingUpload}
	for _, name := range names {
		req.Files = append(req.Files, models.PendingFile(name, "", 10))
	}
	return req
}

func withStatus(req models.CreateOrderRequest, status models.OrderStatus) models.CreateOrderRequest {
	req.Status = status
	return req
}
