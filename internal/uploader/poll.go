package uploader

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// ResultFetcher reads the result endpoint once.
type ResultFetcher func(ctx context.Context, orderID string) (bridge.Result, error)

type PollOptions struct {
	Timeout        time.Duration
	AttemptTimeout time.Duration
	Backoff        Backoff
}

func DefaultPollOptions() PollOptions {
	return PollOptions{
		Timeout:        10 * time.Minute,
		AttemptTimeout: 9 * time.Second,
		Backoff:        DefaultBackoff(),
	}
}

// Poller opens the uploader and polls the result endpoint until the files
// are there. A closed window is not fatal here: the uploader may have stored
// its result before the window went away.
type Poller struct {
	launcher Launcher
	endpoint bridge.Endpoint
	fetch    ResultFetcher
	opts     PollOptions
	logger   *zap.SugaredLogger
}

func NewPoller(launcher Launcher, endpoint bridge.Endpoint, fetch ResultFetcher, opts PollOptions, logger *zap.SugaredLogger) *Poller {
	defaults := DefaultPollOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = defaults.AttemptTimeout
	}
	if opts.Backoff.Initial <= 0 {
		opts.Backoff = defaults.Backoff
	}
	return &Poller{
		launcher: launcher,
		endpoint: endpoint,
		fetch:    fetch,
		opts:     opts,
		logger:   logger,
	}
}

func (p *Poller) Acquire(ctx context.Context, orderID string) (*Acquisition, error) {
	win, err := p.launcher.Open(ctx, p.endpoint.UploaderURL(orderID))
	if err != nil {
		return nil, err
	}
	files, err := p.Poll(ctx, orderID, win)
	if err != nil {
		return nil, err
	}
	return &Acquisition{Files: files, Window: win}, nil
}

// Poll runs the loop on its own; win may be nil.
func (p *Poller) Poll(parent context.Context, orderID string, win Window) ([]models.UploadedFile, error) {
	ctx, cancel := context.WithTimeout(parent, p.opts.Timeout)
	defer cancel()

	backoff := p.opts.Backoff
	backoff.Reset()
	closedSeen := false

	for attempt := 1; ; attempt++ {
		if win != nil && !closedSeen && win.Closed() {
			closedSeen = true
			p.logger.Infow("uploader window closed, still polling for a stored result", "order_id", orderID)
		}

		res, err := p.attempt(ctx, orderID)
		switch {
		case ctx.Err() != nil:
			return nil, doneErr(parent)
		case err != nil:
			p.logger.Warnw("result poll failed", "order_id", orderID, "attempt", attempt, "error", err)
		case res.Kind == bridge.ResultReady:
			return res.Files, nil
		case res.Kind == bridge.ResultMalformed:
			p.logger.Warnw("result poll returned a malformed answer", "order_id", orderID, "attempt", attempt, "error", res.Err)
		default:
			p.logger.Debugw("result not ready yet", "order_id", orderID, "attempt", attempt)
		}

		timer := time.NewTimer(backoff.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, doneErr(parent)
		case <-timer.C:
		}
	}
}

func (p *Poller) attempt(ctx context.Context, orderID string) (bridge.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.opts.AttemptTimeout)
	defer cancel()
	return p.fetch(attemptCtx, orderID)
}
