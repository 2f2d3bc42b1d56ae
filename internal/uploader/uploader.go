// Package uploader obtains the files an out-of-process uploader stored
// against an order id. Two strategies exist and a deployment picks one:
// Handshake waits for a notification message, Poller polls the result
// endpoint. BridgeUploader covers the inline upload variant.
package uploader

import (
	"context"
	"errors"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

var (
	ErrTimeout      = errors.New("timed out waiting for the uploader result")
	ErrWindowClosed = errors.New("uploader window closed before completing")
	ErrPopupBlocked = errors.New("uploader window could not be opened, allow popups and retry")
)

// Acquisition is the outcome of a successful wait. Window stays open; the
// caller decides when to close it.
type Acquisition struct {
	Files  []models.UploadedFile
	Window Window
}

type Acquirer interface {
	Acquire(ctx context.Context, orderID string) (*Acquisition, error)
}

// Window is the uploader's browsing context. Its closure is observed, not
// controlled.
type Window interface {
	Closed() bool
	Close() error
}

type Launcher interface {
	Open(ctx context.Context, url string) (Window, error)
}

// doneErr maps the end of a wait to the error the caller should see: the
// parent's own cancellation wins over our deadline.
func doneErr(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrTimeout
}
