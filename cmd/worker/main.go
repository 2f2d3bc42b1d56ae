package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/app"
	"github.com/Delyplott/DelyPlot-Web/internal/config"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	logger := z.Sugar().With("worker", cfg.WorkerID)
	defer logger.Sync()

	if cfg.StoreDriver == config.StoreDriverSQLite {
		logger.Warnw("sqlite store changes are not seen by a separate server process", "path", cfg.SQLitePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(cfg, nil, logger)
	if err != nil {
		logger.Fatalw("failed to open store", "error", err)
	}
	defer store.Close()

	worker, err := app.NewWorker(cfg, store.Orders, logger)
	if err != nil {
		logger.Fatalw("failed to initialize worker", "error", err)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("worker stopped", "error", err)
		os.Exit(1)
	}
}
