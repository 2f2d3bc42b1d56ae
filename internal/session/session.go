// Package session runs one customer's order desk: the submit flow from
// anonymous sign-in to a live order subscription, and the reset between
// orders.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/staging"
	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateAwaitingUpload State = "awaiting_upload"
	StateUploading      State = "uploading"
	StatePersisting     State = "persisting"
	StateListening      State = "listening"
)

var (
	ErrSubmitInFlight  = errors.New("an order submission is already in progress")
	ErrNothingStaged   = errors.New("select at least one file before submitting")
	ErrNothingUploaded = errors.New("the uploader finished without any files")
	ErrNotListening    = errors.New("no order is being followed")
	ErrFeedEnded       = errors.New("order updates stopped before a final status")
)

// OrderFailedError is the worker's error report on a persisted order.
type OrderFailedError struct {
	OrderID string
	Message string
}

func (e *OrderFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order %s failed", e.OrderID)
	}
	return fmt.Sprintf("order %s failed: %s", e.OrderID, e.Message)
}

// API is the part of apiclient.Client the session drives.
type API interface {
	SignInAnonymously(ctx context.Context) (*models.AuthResponse, error)
	CreateOrder(ctx context.Context, orderID string, req models.CreateOrderRequest) (*models.Order, error)
	PatchFile(ctx context.Context, orderID string, index int, fileID string) (*models.Order, error)
	MarkUploaded(ctx context.Context, orderID string) (*models.Order, error)
}

// Notifier tells the uploader side an order was saved.
type Notifier interface {
	NotifyOrderSaved(ctx context.Context, orderID string) error
}

type InlineUploader interface {
	UploadAll(ctx context.Context, orderID string, files []staging.File, onUploaded func(index int, fileID string) error) error
}

type Renderer interface {
	State(s State)
	Order(o *models.Order)
	Alert(err error)
	Reset()
}

// Options wires a Session. Exactly one of Acquirer and Inline selects the
// upload flow. Notifier is optional.
type Options struct {
	API      API
	Feed     feed.Feed
	Acquirer uploader.Acquirer
	Inline   InlineUploader
	Notifier Notifier
	Stager   *staging.Stager
	Renderer Renderer
	Logger   *zap.SugaredLogger
	NewID    func() string
}

type Session struct {
	opts Options

	mu       sync.Mutex
	state    State
	inFlight bool
	uid      string
	order    *models.Order
	sub      feed.Subscription
	// done is closed when the followed order reaches quoted or error, or
	// its feed ends.
	done chan struct{}
}

func New(opts Options) (*Session, error) {
	if opts.API == nil || opts.Feed == nil || opts.Renderer == nil {
		return nil, errors.New("session needs an API, a feed and a renderer")
	}
	if (opts.Acquirer == nil) == (opts.Inline == nil) {
		return nil, errors.New("session needs exactly one upload flow")
	}
	if opts.Stager == nil {
		opts.Stager = staging.NewStager(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Session{opts: opts, state: StateIdle}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Order is the latest snapshot of the followed order.
func (s *Session) Order() *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

func (s *Session) Stager() *staging.Stager {
	return s.opts.Stager
}

// Submit runs the whole flow for form and leaves the session listening.
// On failure the alert is rendered and the session returns to idle.
func (s *Session) Submit(ctx context.Context, form models.OrderForm) (*models.Order, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.inFlight = true
	s.detachLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	order, err := s.submit(ctx, form)
	if err != nil {
		s.opts.Logger.Warnw("order submission failed", "error", err)
		s.mu.Lock()
		s.opts.Renderer.Alert(err)
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		return nil, err
	}
	return order, nil
}

func (s *Session) submit(ctx context.Context, form models.OrderForm) (*models.Order, error) {
	if s.opts.Inline != nil && s.opts.Stager.Len() == 0 {
		return nil, ErrNothingStaged
	}

	s.setState(StateAuthenticating)
	if err := s.authenticate(ctx); err != nil {
		return nil, err
	}

	orderID := s.opts.NewID()
	s.setState(StateAwaitingUpload)

	var (
		order *models.Order
		err   error
	)
	if s.opts.Inline != nil {
		order, err = s.submitInline(ctx, orderID, form)
	} else {
		order, err = s.submitPopup(ctx, orderID, form)
	}
	if err != nil {
		return nil, err
	}

	if err := s.listen(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Session) authenticate(ctx context.Context) error {
	s.mu.Lock()
	signedIn := s.uid != ""
	s.mu.Unlock()
	if signedIn {
		return nil
	}

	auth, err := s.opts.API.SignInAnonymously(ctx)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	s.mu.Lock()
	s.uid = auth.UID
	s.mu.Unlock()
	return nil
}

// submitPopup waits for the external uploader, then writes the complete
// order in one go.
func (s *Session) submitPopup(ctx context.Context, orderID string, form models.OrderForm) (*models.Order, error) {
	s.setState(StateUploading)
	acq, err := s.opts.Acquirer.Acquire(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if acq.Window != nil {
		defer acq.Window.Close()
	}
	if len(acq.Files) == 0 {
		return nil, ErrNothingUploaded
	}

	s.setState(StatePersisting)
	order, err := s.opts.API.CreateOrder(ctx, orderID, models.CreateOrderRequest{
		Status:   models.StatusUploaded,
		Customer: form.Customer,
		Options:  form.Options,
		Notes:    form.Notes,
		Files:    models.Normalize(acq.Files),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.NotifyOrderSaved(ctx, orderID); err != nil {
			s.opts.Logger.Warnw("order_saved notification failed", "order_id", orderID, "error", err)
		}
	}
	return order, nil
}

// submitInline saves placeholders first, then patches each file id as the
// bridge returns it.
func (s *Session) submitInline(ctx context.Context, orderID string, form models.OrderForm) (*models.Order, error) {
	staged := s.opts.Stager.Files()
	pending := make([]models.FileDescriptor, len(staged))
	for i, f := range staged {
		pending[i] = f.Descriptor()
	}

	s.setState(StatePersisting)
	if _, err := s.opts.API.CreateOrder(ctx, orderID, models.CreateOrderRequest{
		Status:   models.StatusAwaitingUpload,
		Customer: form.Customer,
		Options:  form.Options,
		Notes:    form.Notes,
		Files:    pending,
	}); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.setState(StateUploading)
	err := s.opts.Inline.UploadAll(ctx, orderID, staged, func(index int, fileID string) error {
		_, err := s.opts.API.PatchFile(ctx, orderID, index, fileID)
		return err
	})
	if err != nil {
		return nil, err
	}

	order, err := s.opts.API.MarkUploaded(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}
	return order, nil
}

func (s *Session) listen(ctx context.Context, order *models.Order) error {
	// The subscription outlives this submission; NewOrder and Close end it.
	sub, err := s.opts.Feed.Subscribe(context.WithoutCancel(ctx), order.ID)
	if err != nil {
		return fmt.Errorf("failed to follow order: %w", err)
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.sub = sub
	s.done = done
	s.order = order
	s.setStateLocked(StateListening)
	s.opts.Renderer.Order(order)
	s.mu.Unlock()

	go s.pump(sub, done)
	return nil
}

func (s *Session) pump(sub feed.Subscription, done chan struct{}) {
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }
	defer finish()

	for order := range sub.Updates() {
		s.mu.Lock()
		if s.sub != sub {
			s.mu.Unlock()
			return
		}
		s.order = order
		s.opts.Renderer.Order(order)
		if order.Status == models.StatusError {
			s.opts.Renderer.Alert(failure(order))
		}
		s.mu.Unlock()

		if order.Status.Terminal() {
			finish()
		}
	}
}

// Follow blocks until the followed order is quoted or failed.
func (s *Session) Follow(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil, ErrNotListening
	}

	select {
	case <-ctx.Done():
		return s.Order(), ctx.Err()
	case <-done:
	}

	order := s.Order()
	switch {
	case order == nil:
		return nil, ErrNotListening
	case order.Status == models.StatusError:
		return order, failure(order)
	case order.Status != models.StatusQuoted:
		return order, ErrFeedEnded
	}
	return order, nil
}

// NewOrder detaches the live subscription and clears every client-side
// trace of the previous order. The persisted order is left alone.
func (s *Session) NewOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
	s.opts.Stager.Reset()
	s.order = nil
	s.opts.Renderer.Reset()
	s.setStateLocked(StateIdle)
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Session) detachLocked() {
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	s.done = nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(state)
}

func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.state = state
	s.opts.Renderer.State(state)
}

func failure(order *models.Order) error {
	msg := ""
	if order.Error != nil {
		msg = order.Error.Message
	}
	return &OrderFailedError{OrderID: order.ID, Message: msg}
}
