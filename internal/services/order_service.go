package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("order is not in a state that allows this change")
	ErrFileIndex         = errors.New("file index out of range")
)

const maxOrderIDLength = 128

// OrderRepository is implemented by supabase.DatabaseClient and
// localstore.Store.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID string, fn func(*models.Order) error) (*models.Order, error)
	ListOrdersByStatus(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error)
}

// OrderService applies the client-side rules: who may read an order, and
// the only mutations a client may make after creating one.
type OrderService struct {
	repo   OrderRepository
	feed   feed.Feed
	logger *zap.SugaredLogger
}

func NewOrderService(repo OrderRepository, changes feed.Feed, logger *zap.SugaredLogger) *OrderService {
	return &OrderService{repo: repo, feed: changes, logger: logger}
}

// Create writes a new order owned by uid. Orders arrive either complete
// (uploaded) or as placeholders for the bridge upload (awaiting_upload).
func (s *OrderService) Create(ctx context.Context, uid, orderID string, req models.CreateOrderRequest) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || len(orderID) > maxOrderIDLength || strings.ContainsAny(orderID, "/?#") {
		return nil, fmt.Errorf("%w: bad order id", ErrInvalidOrder)
	}

	switch req.Status {
	case models.StatusUploaded, models.StatusAwaitingUpload:
	default:
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrInvalidOrder, models.StatusUploaded, models.StatusAwaitingUpload)
	}

	files := make([]models.FileDescriptor, len(req.Files))
	for i, f := range req.Files {
		f.Provider = models.ProviderDrive
		if f.ContentType == "" {
			f.ContentType = models.DefaultContentType
		}
		if req.Status == models.StatusUploaded && !f.Uploaded() {
			return nil, fmt.Errorf("%w: file %d has no driveFileId", ErrInvalidOrder, i)
		}
		files[i] = f
	}

	form := models.OrderForm{Customer: req.Customer, Options: req.Options, Notes: req.Notes}
	order, err := models.NewOrder(orderID, uid, req.Status, form, files)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("order created", "order_id", created.ID, "status", created.Status, "files", len(created.Files))
	return created, nil
}

// Get hides other users' orders behind ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, uid, orderID string) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UID != uid {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// PatchFile records the remote id of one bridge-uploaded file.
func (s *OrderService) PatchFile(ctx context.Context, uid, orderID string, index int, fileID string) (*models.Order, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, fmt.Errorf("%w: fileId is required", ErrInvalidOrder)
	}

	return s.repo.UpdateOrder(ctx, orderID, func(o *models.Order) error {
		if o.UID != uid {
			return models.ErrOrderNotFound
		}
		if o.Status != models.StatusAwaitingUpload {
			return ErrInvalidTransition
		}
		if index < 0 || index >= len(o.Files) {
			return ErrFileIndex
		}
		o.Files[index].DriveFileID = &fileID
		o.SyncPrimary()
		return nil
	})
}

// MarkUploaded hands a fully patched order to the worker queue. Repeating
// it on an uploaded order is a no-op.
func (s *OrderService) MarkUploaded(ctx context.Context, uid, orderID string) (*models.Order, error) {
	order, err := s.repo.UpdateOrder(ctx, orderID, func(o *models.Order) error {
		if o.UID != uid {
			return models.ErrOrderNotFound
		}
		switch o.Status {
		case models.StatusUploaded:
			return nil
		case models.StatusAwaitingUpload:
		default:
			return ErrInvalidTransition
		}
		if !o.AllFilesUploaded() {
			return fmt.Errorf("%w: not every file has a driveFileId", ErrInvalidOrder)
		}
		o.Status = models.StatusUploaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("order uploaded", "order_id", order.ID)
	return order, nil
}

// Subscribe opens the change feed for an order the caller owns.
func (s *OrderService) Subscribe(ctx context.Context, uid, orderID string) (*models.Order, feed.Subscription, error) {
	// Subscribe first so no change between the read and the subscription is lost.
	sub, err := s.feed.Subscribe(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.Get(ctx, uid, orderID)
	if err != nil {
		sub.Unsubscribe()
		return nil, nil, err
	}
	return order, sub, nil
}
