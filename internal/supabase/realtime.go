package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// OrderChannel is the NOTIFY channel the orders trigger writes to; the
// payload is the order id.
const OrderChannel = "order_changes"

type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

type Publisher interface {
	Publish(order *models.Order)
}

// RealtimeClient turns Postgres notifications into order snapshots.
type RealtimeClient struct {
	listener *pq.Listener
	orders   OrderReader
	hub      Publisher
	logger   *zap.SugaredLogger
}

func NewRealtimeClient(connectionString string, orders OrderReader, hub Publisher, logger *zap.SugaredLogger) *RealtimeClient {
	listener := pq.NewListener(connectionString, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warnw("order listener event", "event", ev, "error", err)
		}
	})
	return &RealtimeClient{
		listener: listener,
		orders:   orders,
		hub:      hub,
		logger:   logger,
	}
}

// Run forwards notifications until ctx ends.
func (r *RealtimeClient) Run(ctx context.Context) error {
	if err := r.listener.Listen(OrderChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", OrderChannel, err)
	}
	defer r.listener.Close()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-r.listener.Notify:
			// nil after a reconnect; changes in between are not replayed.
			if n == nil {
				continue
			}
			r.forward(ctx, n.Extra)
		case <-ping.C:
			go func() {
				if err := r.listener.Ping(); err != nil {
					r.logger.Warnw("order listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (r *RealtimeClient) forward(ctx context.Context, orderID string) {
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		r.logger.Warnw("failed to load changed order", "order_id", orderID, "error", err)
		return
	}
	r.hub.Publish(order)
}
