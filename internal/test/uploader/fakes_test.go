package uploader_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

type fakeWindow struct {
	closed atomic.Bool
	closes atomic.Int32
}

func (w *fakeWindow) Closed() bool { return w.closed.Load() }

func (w *fakeWindow) Close() error {
	w.closes.Add(1)
	w.closed.Store(true)
	return nil
}

// fakeLauncher records opened URLs and runs onOpen once the window exists.
type fakeLauncher struct {
	mu     sync.Mutex
	urls   []string
	window *fakeWindow
	err    error
	onOpen func()
}

func (l *fakeLauncher) Open(ctx context.Context, url string) (uploader.Window, error) {
	l.mu.Lock()
	l.urls = append(l.urls, url)
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.window == nil {
		l.window = &fakeWindow{}
	}
	if l.onOpen != nil {
		l.onOpen()
	}
	return l.window, nil
}
