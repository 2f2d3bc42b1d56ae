package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Delyplott/DelyPlot-Web/internal/config"
)

var serverKeys = []string{
	"PORT", "ENVIRONMENT", "BASE_URL", "JWT_SECRET", "STORE_DRIVER", "DATABASE_URL",
	"SQLITE_PATH", "SUPABASE_URL", "SUPABASE_PUBLISHABLE_KEY", "SUPABASE_STORAGE_BUCKET",
	"APPS_SCRIPT_URL", "WORKER_SECRET", "WORKER_ID", "POLL_SECS", "BATCH_LIMIT",
	"RUN_ONCE", "RUN_WINDOW_SECS", "ORDER_ID", "ORDER_WAIT_SECS",
}

func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, serverKeys)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, config.StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "delyplott.db", cfg.SQLitePath)
	assert.Equal(t, "previews", cfg.SupabaseStorageBucket)
	assert.Equal(t, "worker-1", cfg.WorkerID)
	assert.Equal(t, 4*time.Second, cfg.PollInterval)
	assert.Equal(t, 240*time.Second, cfg.RunWindow)
	assert.Equal(t, 10*time.Second, cfg.OrderWait)
	assert.Equal(t, 5, cfg.BatchLimit)
	assert.False(t, cfg.RunOnce)
	assert.False(t, cfg.SupabaseEnabled())

	assert.Error(t, cfg.ValidateServer())
	assert.Error(t, cfg.ValidateWorker())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t, serverKeys)
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/delyplott")
	t.Setenv("POLL_SECS", "0.5")
	t.Setenv("RUN_ONCE", "1")
	t.Setenv("ORDER_ID", "O1")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("APPS_SCRIPT_URL", "https://script.google.com/macros/s/X/exec")
	t.Setenv("WORKER_SECRET", "w")
	t.Setenv("SUPABASE_URL", "https://p.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "k")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.RunOnce)
	assert.Equal(t, "O1", cfg.OrderID)
	assert.True(t, cfg.SupabaseEnabled())
	assert.NoError(t, cfg.ValidateServer())
	assert.NoError(t, cfg.ValidateWorker())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "mysql"},
		{"postgres without url", "STORE_DRIVER", "postgres"},
		{"bad poll", "POLL_SECS", "soon"},
		{"zero poll", "POLL_SECS", "0"},
		{"bad batch", "BATCH_LIMIT", "many"},
		{"negative batch", "BATCH_LIMIT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, serverKeys)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}
