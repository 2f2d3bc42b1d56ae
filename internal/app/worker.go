package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/config"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
	"github.com/Delyplott/DelyPlot-Web/internal/supabase"
)

// NewWorker wires a worker to the bridge.
func NewWorker(cfg *config.Config, orders services.OrderRepository, logger *zap.SugaredLogger) (*services.Worker, error) {
	endpoint, err := bridge.ParseBaseURL(cfg.AppsScriptURL)
	if err != nil {
		return nil, fmt.Errorf("invalid APPS_SCRIPT_URL: %w", err)
	}
	bridgeClient := bridge.NewClient(endpoint, cfg.WorkerSecret)

	previews, err := NewPreviewPublisher(cfg, bridgeClient, logger)
	if err != nil {
		return nil, err
	}

	return services.NewWorker(orders, bridgeClient, previews, services.WorkerOptions{
		ID:           cfg.WorkerID,
		PollInterval: cfg.PollInterval,
		BatchLimit:   cfg.BatchLimit,
		RunOnce:      cfg.RunOnce,
		RunWindow:    cfg.RunWindow,
		OrderID:      cfg.OrderID,
		OrderWait:    cfg.OrderWait,
	}, logger), nil
}

// NewPreviewPublisher picks where previews are stored: Supabase Storage when
// it is configured, the bridge otherwise.
func NewPreviewPublisher(cfg *config.Config, bridgeClient *bridge.Client, logger *zap.SugaredLogger) (services.PreviewPublisher, error) {
	if !cfg.SupabaseEnabled() {
		logger.Infow("previews go to the bridge")
		return bridgeClient, nil
	}
	client, err := supabase.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	logger.Infow("previews go to supabase storage", "bucket", cfg.SupabaseStorageBucket)
	return supabase.NewStorageClient(client), nil
}
