package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const maxEventBytes = 4 << 20

// Subscribe follows an order over the API's event stream. It satisfies
// feed.Feed.
func (c *Client) Subscribe(ctx context.Context, orderID string) (feed.Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.baseURL+orderPath(orderID)+"/stream", nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open order stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		cancel()
		return nil, apiError(resp.StatusCode, body)
	}

	sub := &streamSubscription{
		ch:     make(chan *models.Order, 1),
		cancel: cancel,
	}
	go sub.read(resp.Body)
	return sub, nil
}

type streamSubscription struct {
	ch     chan *models.Order
	cancel context.CancelFunc
	once   sync.Once
}

func (s *streamSubscription) Updates() <-chan *models.Order {
	return s.ch
}

func (s *streamSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

func (s *streamSubscription) read(body io.ReadCloser) {
	defer close(s.ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64<<10), maxEventBytes)

	var event string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "order" && data.Len() > 0 {
				s.deliver(data.String())
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			value := strings.TrimPrefix(line, "data:")
			data.WriteString(strings.TrimPrefix(value, " "))
		}
	}
}

// deliver keeps only the newest snapshot if the reader falls behind.
func (s *streamSubscription) deliver(raw string) {
	var order models.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return
	}
	select {
	case s.ch <- &order:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- &order:
	default:
	}
}
