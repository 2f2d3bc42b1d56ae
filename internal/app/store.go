// Package app assembles the server and worker from configuration.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/config"
	"github.com/Delyplott/DelyPlot-Web/internal/database"
	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/localstore"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
	"github.com/Delyplott/DelyPlot-Web/internal/supabase"
)

// Store is the configured order repository. Realtime is set only for
// Postgres when a hub was given; SQLite publishes to the hub directly.
type Store struct {
	Orders   services.OrderRepository
	Realtime *supabase.RealtimeClient
	close    func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the store named by STORE_DRIVER. Postgres is migrated
// before use.
func OpenStore(cfg *config.Config, hub *feed.Hub, logger *zap.SugaredLogger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(cfg, hub, logger)
	case config.StoreDriverSQLite:
		var publisher localstore.Publisher
		if hub != nil {
			publisher = hub
		}
		store, err := localstore.Open(cfg.SQLitePath, publisher)
		if err != nil {
			return nil, err
		}
		logger.Infow("using sqlite store", "path", cfg.SQLitePath)
		return &Store{Orders: store, close: store.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(cfg *config.Config, hub *feed.Hub, logger *zap.SugaredLogger) (*Store, error) {
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()
	if err := migrator.Run(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := &Store{Orders: db, close: db.Close}
	if hub != nil {
		store.Realtime = supabase.NewRealtimeClient(cfg.DatabaseURL, db, hub, logger)
	}
	logger.Infow("using postgres store")
	return store, nil
}
