// Package feed is the order change feed: subscribe to one order and receive
// its snapshots until unsubscribing.
package feed

import (
	"context"
	"sync"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// Feed streams snapshots of a single order. Snapshots are shared and must
// not be mutated by receivers.
type Feed interface {
	Subscribe(ctx context.Context, orderID string) (Subscription, error)
}

type Subscription interface {
	// Updates is closed after Unsubscribe or when the feed ends.
	Updates() <-chan *models.Order
	// Unsubscribe is safe to call more than once.
	Unsubscribe()
}

// Hub is an in-process Feed. A slow subscriber only ever sees the most
// recent snapshot; intermediate ones are dropped.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*hubSubscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*hubSubscription]struct{})}
}

type hubSubscription struct {
	hub     *Hub
	orderID string
	ch      chan *models.Order
	done    chan struct{}
	once    sync.Once
}

func (h *Hub) Subscribe(ctx context.Context, orderID string) (Subscription, error) {
	sub := &hubSubscription{
		hub:     h,
		orderID: orderID,
		ch:      make(chan *models.Order, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[orderID]
	if !ok {
		set = make(map[*hubSubscription]struct{})
		h.subs[orderID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Publish hands order to every subscriber of its id without blocking.
func (h *Hub) Publish(order *models.Order) {
	if order == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[order.ID] {
		select {
		case sub.ch <- order:
			continue
		default:
		}
		// Replace the stale snapshot nobody has read yet.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- order:
		default:
		}
	}
}

// Subscribers reports how many subscriptions are attached to orderID.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}

func (s *hubSubscription) Updates() <-chan *models.Order {
	return s.ch
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if set, ok := s.hub.subs[s.orderID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.orderID)
			}
		}
		close(s.ch)
		close(s.done)
	})
}
