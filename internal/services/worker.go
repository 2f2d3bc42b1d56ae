package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/analysis"
	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/preview"
	"github.com/Delyplott/DelyPlot-Web/internal/quote"
)

const downloadRetries = 3

var errNotClaimable = errors.New("order is not waiting for a worker")

// Bridge is the part of bridge.Client the worker needs.
type Bridge interface {
	Download(ctx context.Context, fileID string) (*bridge.DownloadResponse, []byte, error)
	RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error
}

// PreviewPublisher stores a rendered preview. Implemented by
// supabase.StorageClient and bridge.Client.
type PreviewPublisher interface {
	UploadPreview(ctx context.Context, orderID, filename, contentType string, data []byte) (*models.Preview, error)
}

type WorkerOptions struct {
	ID           string
	PollInterval time.Duration
	BatchLimit   int
	// RunOnce exits once RunWindow has elapsed instead of running forever.
	RunOnce   bool
	RunWindow time.Duration
	// OrderID restricts the worker to one order, waited for up to OrderWait.
	OrderID   string
	OrderWait time.Duration
}

// Worker claims uploaded orders, analyses their primary file and writes
// back a preview and a quote.
type Worker struct {
	repo     OrderRepository
	bridge   Bridge
	previews PreviewPublisher
	opts     WorkerOptions
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewWorker(repo OrderRepository, b Bridge, previews PreviewPublisher, opts WorkerOptions, logger *zap.SugaredLogger) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 4 * time.Second
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 5
	}
	return &Worker{
		repo:     repo,
		bridge:   b,
		previews: previews,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	target := "queue"
	if w.opts.OrderID != "" {
		target = "order " + w.opts.OrderID
	}
	w.logger.Infow("worker started", "worker_id", w.opts.ID, "run_once", w.opts.RunOnce, "target", target)

	var deadline time.Time
	if w.opts.RunOnce {
		deadline = w.now().Add(w.opts.RunWindow)
	}
	windowOver := func() bool {
		return w.opts.RunOnce && !w.now().Before(deadline)
	}

	for {
		orders, err := w.targets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if w.opts.RunOnce {
				return fmt.Errorf("failed to fetch orders: %w", err)
			}
			w.logger.Errorw("failed to fetch orders", "error", err)
			if !sleep(ctx, w.opts.PollInterval) {
				return nil
			}
			continue
		}

		for _, order := range orders {
			w.handle(ctx, order.ID)
		}

		if windowOver() {
			w.logger.Infow("run window ended")
			return nil
		}
		wait := w.opts.PollInterval
		if len(orders) > 0 && w.opts.RunOnce {
			wait = time.Second
		}
		if !sleep(ctx, wait) {
			return nil
		}
	}
}

func (w *Worker) targets(ctx context.Context) ([]*models.Order, error) {
	if w.opts.OrderID == "" {
		return w.repo.ListOrdersByStatus(ctx, models.StatusUploaded, w.opts.BatchLimit)
	}

	deadline := w.now().Add(w.opts.OrderWait)
	for {
		order, err := w.repo.GetOrder(ctx, w.opts.OrderID)
		if err == nil {
			return []*models.Order{order}, nil
		}
		if !errors.Is(err, models.ErrOrderNotFound) {
			return nil, err
		}
		if !w.now().Before(deadline) {
			w.logger.Warnw("order not found", "order_id", w.opts.OrderID, "waited", w.opts.OrderWait)
			return nil, nil
		}
		if !sleep(ctx, time.Second) {
			return nil, ctx.Err()
		}
	}
}

func (w *Worker) handle(ctx context.Context, orderID string) {
	order, claimed, err := w.Claim(ctx, orderID)
	if err != nil {
		w.logger.Errorw("failed to claim order", "order_id", orderID, "error", err)
		return
	}
	if !claimed {
		return
	}

	w.logger.Infow("processing order", "order_id", orderID)
	if err := w.Process(ctx, order); err != nil {
		w.logger.Errorw("order failed", "order_id", orderID, "error", err)
		w.fail(ctx, orderID, err)
		return
	}
	w.logger.Infow("order quoted", "order_id", orderID)
}

// Claim moves an uploaded order to in_progress. It reports false when
// another worker got there first.
func (w *Worker) Claim(ctx context.Context, orderID string) (*models.Order, bool, error) {
	order, err := w.repo.UpdateOrder(ctx, orderID, func(o *models.Order) error {
		if o.Status != models.StatusUploaded {
			return errNotClaimable
		}
		o.Status = models.StatusInProgress
		o.Worker = &models.WorkerClaim{ClaimedBy: w.opts.ID, ClaimedAt: w.now().UTC()}
		return nil
	})
	if errors.Is(err, errNotClaimable) || errors.Is(err, models.ErrOrderNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// Process analyses a claimed order and stores the quote.
func (w *Worker) Process(ctx context.Context, order *models.Order) error {
	if order.File == nil || !order.File.Uploaded() {
		return errors.New("order has no uploaded primary file")
	}

	var (
		download *bridge.DownloadResponse
		data     []byte
	)
	err := w.bridge.RetryWithBackoff(ctx, func() error {
		var err error
		download, data, err = w.bridge.Download(ctx, *order.File.DriveFileID)
		return err
	}, downloadRetries)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	result, err := analysis.Analyze(download.Filename, data)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", download.Filename, err)
	}

	sheet, err := preview.Render(order.ID, data, result, w.now())
	if err != nil {
		return err
	}
	pv, err := w.previews.UploadPreview(ctx, order.ID, preview.Filename(order.ID), preview.ContentType, sheet)
	if err != nil {
		return err
	}

	q := quote.Calculate(order.Options, result)

	_, err = w.repo.UpdateOrder(ctx, order.ID, func(o *models.Order) error {
		o.Analysis = result
		o.Preview = pv
		o.Quote = q
		o.Error = nil
		o.Status = models.StatusQuoted
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store quote: %w", err)
	}
	return nil
}

func (w *Worker) fail(ctx context.Context, orderID string, cause error) {
	_, err := w.repo.UpdateOrder(ctx, orderID, func(o *models.Order) error {
		o.Status = models.StatusError
		o.Error = &models.OrderError{Message: cause.Error()}
		return nil
	})
	if err != nil {
		w.logger.Errorw("failed to record order error", "order_id", orderID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
