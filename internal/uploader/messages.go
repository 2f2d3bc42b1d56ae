package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxMessageBytes = 1 << 20

// Message is one cross-context notification with the sender's origin.
type Message struct {
	Origin string
	Data   json.RawMessage
}

// MessageSource delivers messages until the returned stop func is called.
type MessageSource interface {
	Listen() (<-chan Message, func())
}

// MessageServer receives uploader notifications over HTTP on a loopback
// address. Every posted JSON body becomes a Message for each listener.
type MessageServer struct {
	mu             sync.Mutex
	listeners      map[int]chan Message
	nextID         int
	allowedOrigins map[string]bool
	logger         *zap.SugaredLogger
	engine         *gin.Engine
	server         *http.Server
}

func NewMessageServer(allowedOrigins []string, logger *zap.SugaredLogger) *MessageServer {
	s := &MessageServer{
		listeners:      make(map[int]chan Message),
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
		logger:         logger,
	}
	for _, o := range allowedOrigins {
		s.allowedOrigins[o] = true
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.cors)
	engine.POST("/messages", s.receive)
	engine.OPTIONS("/messages", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	s.engine = engine
	return s
}

func (s *MessageServer) Handler() http.Handler {
	return s.engine
}

// Start serves on addr in the background.
func (s *MessageServer) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *MessageServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *MessageServer) Listen() (<-chan Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Message, 16)
	s.listeners[id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			close(ch)
		})
	}
	return ch, stop
}

// Dispatch hands msg to every listener without blocking the sender.
func (s *MessageServer) Dispatch(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- msg:
		default:
			s.logger.Warnw("dropping uploader message, listener is full", "origin", msg.Origin)
		}
	}
}

func (s *MessageServer) receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMessageBytes))
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "body must be JSON"})
		return
	}
	s.Dispatch(Message{Origin: c.GetHeader("Origin"), Data: body})
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

func (s *MessageServer) cors(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if s.allowedOrigins[origin] {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Vary", "Origin")
	}
	c.Next()
}
