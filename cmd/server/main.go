// @title           DelyPlott API
// @version         1.0.0
// @description     Order API for the DelyPlott print shop. Customers sign in anonymously, create orders whose files live in the shop's Drive, and follow each order live until the worker has quoted it.

// @contact.name   DelyPlott
// @contact.email  hola@delyplott.cl

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/docs"
	"github.com/Delyplott/DelyPlot-Web/internal/app"
	"github.com/Delyplott/DelyPlot-Web/internal/config"
	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/handlers"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
)

func main() {
	// quote coefficients as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	z, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	logger := z.Sugar()
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Swagger host follows BASE_URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub()
	store, err := app.OpenStore(cfg, hub, logger)
	if err != nil {
		logger.Fatalw("failed to open store", "error", err)
	}
	defer store.Close()

	if store.Realtime != nil {
		go func() {
			if err := store.Realtime.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorw("order change listener stopped", "error", err)
			}
		}()
	}

	// A SQLite store is only visible in-process, so the worker runs here.
	if cfg.StoreDriver == config.StoreDriverSQLite && cfg.ValidateWorker() == nil {
		worker, err := app.NewWorker(cfg, store.Orders, logger.Named("worker"))
		if err != nil {
			logger.Fatalw("failed to initialize worker", "error", err)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorw("embedded worker stopped", "error", err)
			}
		}()
		logger.Infow("embedded worker started", "worker", cfg.WorkerID)
	}

	orders := services.NewOrderService(store.Orders, hub, logger)
	router := handlers.NewRouter(cfg.JWTSecret, orders, logger, true)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Open order streams end when their request context is cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
