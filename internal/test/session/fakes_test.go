package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/session"
	"github.com/Delyplott/DelyPlot-Web/internal/staging"
	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

type fakeAPI struct {
	mu        sync.Mutex
	signIns   int
	created   map[string]models.CreateOrderRequest
	patches   []string
	marked    []string
	createErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{created: make(map[string]models.CreateOrderRequest)}
}

func (a *fakeAPI) SignInAnonymously(ctx context.Context) (*models.AuthResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signIns++
	return &models.AuthResponse{UID: "user-1", Token: "tok"}, nil
}

func (a *fakeAPI) CreateOrder(ctx context.Context, orderID string, req models.CreateOrderRequest) (*models.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return nil, a.createErr
	}
	a.created[orderID] = req
	return models.NewOrder(orderID, "user-1", req.Status, models.OrderForm{
		Customer: req.Customer,
		Options:  req.Options,
		Notes:    req.Notes,
	}, req.Files)
}

func (a *fakeAPI) PatchFile(ctx context.Context, orderID string, index int, fileID string) (*models.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	req, ok := a.created[orderID]
	if !ok || index >= len(req.Files) {
		return nil, errors.New("no such file")
	}
	id := fileID
	req.Files[index].DriveFileID = &id
	a.patches = append(a.patches, fileID)
	return models.NewOrder(orderID, "user-1", req.Status, models.OrderForm{}, req.Files)
}

func (a *fakeAPI) MarkUploaded(ctx context.Context, orderID string) (*models.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	req := a.created[orderID]
	a.marked = append(a.marked, orderID)
	return models.NewOrder(orderID, "user-1", models.StatusUploaded, models.OrderForm{Customer: req.Customer}, req.Files)
}

func (a *fakeAPI) request(orderID string) (models.CreateOrderRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	req, ok := a.created[orderID]
	return req, ok
}

type fakeWindow struct {
	mu     sync.Mutex
	closed bool
}

func (w *fakeWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type fakeAcquirer struct {
	files   []models.UploadedFile
	err     error
	window  *fakeWindow
	release chan struct{}
	started chan struct{}
	calls   []string
}

func (a *fakeAcquirer) Acquire(ctx context.Context, orderID string) (*uploader.Acquisition, error) {
	a.calls = append(a.calls, orderID)
	if a.started != nil {
		close(a.started)
	}
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	acq := &uploader.Acquisition{Files: a.files}
	if a.window != nil {
		acq.Window = a.window
	}
	return acq, nil
}

type fakeInline struct {
	fileIDs []string
	err     error
	got     []staging.File
}

func (u *fakeInline) UploadAll(ctx context.Context, orderID string, files []staging.File, onUploaded func(index int, fileID string) error) error {
	u.got = files
	for i := range files {
		if u.err != nil {
			return u.err
		}
		if err := onUploaded(i, u.fileIDs[i]); err != nil {
			return err
		}
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (n *fakeNotifier) NotifyOrderSaved(ctx context.Context, orderID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, orderID)
	return n.err
}

// recorder keeps every rendered event in order.
type recorder struct {
	mu     sync.Mutex
	states []session.State
	orders []*models.Order
	alerts []error
	resets int
}

func (r *recorder) State(s session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) Order(o *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
}

func (r *recorder) Alert(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, err)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recorder) alertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func (r *recorder) stateList() []session.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.State(nil), r.states...)
}
