package uploader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// BrowserLauncher opens the uploader in the system browser. A browser tab
// cannot be watched, so the operator reports closing it by typing "q".
//
// Input is read by a single goroutine started on the first Open. It blocks on
// Input for the rest of the process; each window only listens while open.
type BrowserLauncher struct {
	Out     io.Writer
	Input   io.Reader
	OpenURL func(url string) error

	linesOnce sync.Once
	lines     chan string
}

func NewBrowserLauncher(out io.Writer, input io.Reader) *BrowserLauncher {
	return &BrowserLauncher{Out: out, Input: input, OpenURL: openBrowser}
}

func (l *BrowserLauncher) Open(ctx context.Context, url string) (Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Out != nil {
		fmt.Fprintf(l.Out, "Opening uploader: %s\n", url)
	}
	open := l.OpenURL
	if open == nil {
		open = openBrowser
	}
	if err := open(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	w := &browserWindow{done: make(chan struct{})}
	if l.Input != nil {
		if l.Out != nil {
			fmt.Fprintln(l.Out, `Type "q" and Enter if you close the uploader without sending files.`)
		}
		l.linesOnce.Do(func() {
			l.lines = make(chan string)
			go readLines(l.Input, l.lines)
		})
		go w.watch(l.lines)
	}
	return w, nil
}

// readLines forwards lines to whichever window is listening. Lines typed
// while no window is open are dropped.
func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		default:
		}
	}
}

type browserWindow struct {
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func (w *browserWindow) Closed() bool {
	return w.closed.Load()
}

func (w *browserWindow) Close() error {
	w.closed.Store(true)
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

func (w *browserWindow) watch(lines <-chan string) {
	for {
		select {
		case <-w.done:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.EqualFold(strings.TrimSpace(line), "q") {
				w.Close()
				return
			}
		}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
