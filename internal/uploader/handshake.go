package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const HandshakeMessageType = "drive_upload_done"

// DefaultAllowedOrigins are the two domains the bridge uploader page is
// served from.
var DefaultAllowedOrigins = []string{
	"https://script.google.com",
	"https://script.googleusercontent.com",
}

type HandshakeOptions struct {
	AllowedOrigins      []string
	Timeout             time.Duration
	ClosedCheckInterval time.Duration
}

func DefaultHandshakeOptions() HandshakeOptions {
	return HandshakeOptions{
		AllowedOrigins:      DefaultAllowedOrigins,
		Timeout:             10 * time.Minute,
		ClosedCheckInterval: 500 * time.Millisecond,
	}
}

// Handshake opens the uploader and waits for its single completion message.
type Handshake struct {
	launcher Launcher
	endpoint bridge.Endpoint
	messages MessageSource
	opts     HandshakeOptions
	allowed  map[string]bool
	logger   *zap.SugaredLogger
}

type handshakeMessage struct {
	Type    string          `json:"type"`
	OrderID json.RawMessage `json:"orderId"`
	Files   json.RawMessage `json:"files"`
}

func NewHandshake(launcher Launcher, endpoint bridge.Endpoint, messages MessageSource, opts HandshakeOptions, logger *zap.SugaredLogger) *Handshake {
	defaults := DefaultHandshakeOptions()
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = defaults.AllowedOrigins
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.ClosedCheckInterval <= 0 {
		opts.ClosedCheckInterval = defaults.ClosedCheckInterval
	}

	allowed := make(map[string]bool, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		allowed[o] = true
	}
	return &Handshake{
		launcher: launcher,
		endpoint: endpoint,
		messages: messages,
		opts:     opts,
		allowed:  allowed,
		logger:   logger,
	}
}

func (h *Handshake) Acquire(ctx context.Context, orderID string) (*Acquisition, error) {
	// Listen before opening so an instant reply is not lost.
	msgs, stop := h.messages.Listen()
	defer stop()

	win, err := h.launcher.Open(ctx, h.endpoint.UploaderURL(orderID))
	if err != nil {
		return nil, err
	}

	files, err := h.wait(ctx, orderID, win, msgs)
	if err != nil {
		return nil, err
	}
	return &Acquisition{Files: files, Window: win}, nil
}

func (h *Handshake) wait(parent context.Context, orderID string, win Window, msgs <-chan Message) ([]models.UploadedFile, error) {
	timer := time.NewTimer(h.opts.Timeout)
	defer timer.Stop()
	ticker := time.NewTicker(h.opts.ClosedCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-parent.Done():
			return nil, parent.Err()
		case <-timer.C:
			return nil, fmt.Errorf("%w after %s", ErrTimeout, h.opts.Timeout)
		case <-ticker.C:
			if win.Closed() {
				return nil, ErrWindowClosed
			}
		case msg, ok := <-msgs:
			if !ok {
				// Source shut down; closure and timeout still decide the outcome.
				msgs = nil
				continue
			}
			if files, accepted := h.accept(msg, orderID); accepted {
				return files, nil
			}
		}
	}
}

// accept applies the origin allow-list and the order id match.
func (h *Handshake) accept(msg Message, orderID string) ([]models.UploadedFile, bool) {
	if !h.allowed[msg.Origin] {
		h.logger.Debugw("ignoring uploader message from unexpected origin", "origin", msg.Origin)
		return nil, false
	}

	var m handshakeMessage
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		h.logger.Debugw("ignoring undecodable uploader message", "error", err)
		return nil, false
	}
	if m.Type != HandshakeMessageType {
		return nil, false
	}
	if id, ok := bridge.CoerceID(m.OrderID); !ok || id != orderID {
		h.logger.Infow("ignoring uploader message for another order", "order_id", orderID, "message_order_id", string(m.OrderID))
		return nil, false
	}

	files, ok := bridge.DecodeFiles(m.Files)
	if !ok {
		h.logger.Warnw("uploader message files is not a list", "order_id", orderID, "files", string(m.Files))
	}
	return files, true
}
