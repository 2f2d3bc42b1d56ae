package uploader_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

func fastPoll(timeout time.Duration) uploader.PollOptions {
	return uploader.PollOptions{
		Timeout:        timeout,
		AttemptTimeout: 50 * time.Millisecond,
		Backoff:        uploader.Backoff{Initial: time.Millisecond, Max: 2 * time.Millisecond},
	}
}

func TestPoller_ReadyAfterPendingAndErrors(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, orderID string) (bridge.Result, error) {
		assert.Equal(t, "O1", orderID)
		switch calls.Add(1) {
		case 1:
			return bridge.Pending(), nil
		case 2:
			return bridge.Result{}, errors.New("network down")
		case 3:
			return bridge.Malformed(errors.New("garbage")), nil
		}
		return bridge.Ready([]models.UploadedFile{{Filename: "a.pdf", FileID: "X1"}}), nil
	}
	launcher := &fakeLauncher{}

	p := uploader.NewPoller(launcher, testEndpoint(t), fetch, fastPoll(5*time.Second), zap.NewNop().Sugar())
	acq, err := p.Acquire(context.Background(), "O1")
	require.NoError(t, err)

	assert.Equal(t, int32(4), calls.Load())
	require.Len(t, acq.Files, 1)
	assert.Equal(t, "a.pdf", acq.Files[0].Filename)
	assert.NotNil(t, acq.Window)
}

func TestPoller_ClosedWindowKeepsPolling(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, orderID string) (bridge.Result, error) {
		if calls.Add(1) < 3 {
			return bridge.Pending(), nil
		}
		return bridge.Ready([]models.UploadedFile{{FileID: "X1"}}), nil
	}
	win := &fakeWindow{}
	win.closed.Store(true)

	p := uploader.NewPoller(&fakeLauncher{}, testEndpoint(t), fetch, fastPoll(5*time.Second), zap.NewNop().Sugar())
	files, err := p.Poll(context.Background(), "O1", win)

	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPoller_TimesOut(t *testing.T) {
	fetch := func(ctx context.Context, orderID string) (bridge.Result, error) {
		return bridge.Pending(), nil
	}

	timeout := 80 * time.Millisecond
	p := uploader.NewPoller(&fakeLauncher{}, testEndpoint(t), fetch, fastPoll(timeout), zap.NewNop().Sugar())
	start := time.Now()
	_, err := p.Poll(context.Background(), "O1", nil)

	assert.ErrorIs(t, err, uploader.ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPoller_SlowAttemptIsBounded(t *testing.T) {
	fetch := func(ctx context.Context, orderID string) (bridge.Result, error) {
		<-ctx.Done()
		return bridge.Result{}, ctx.Err()
	}

	timeout := 200 * time.Millisecond
	p := uploader.NewPoller(&fakeLauncher{}, testEndpoint(t), fetch, fastPoll(timeout), zap.NewNop().Sugar())
	start := time.Now()
	_, err := p.Poll(context.Background(), "O1", nil)

	assert.ErrorIs(t, err, uploader.ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPoller_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, orderID string) (bridge.Result, error) {
		cancel()
		return bridge.Pending(), nil
	}

	p := uploader.NewPoller(&fakeLauncher{}, testEndpoint(t), fetch, fastPoll(time.Minute), zap.NewNop().Sugar())
	_, err := p.Poll(ctx, "O1", nil)

	assert.ErrorIs(t, err, context.Canceled)
}
