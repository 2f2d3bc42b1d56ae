package models

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusAwaitingUpload OrderStatus = "awaiting_upload"
	StatusUploaded       OrderStatus = "uploaded"
	StatusInProgress     OrderStatus = "in_progress"
	StatusQuoted         OrderStatus = "quoted"
	StatusError          OrderStatus = "error"
)

// ProviderDrive tags every file descriptor; uploads always land in the
// shop's Drive folder through the bridge.
const ProviderDrive = "drive"

const DefaultContentType = "application/octet-stream"

var (
	ErrNoFiles         = errors.New("order has no files")
	ErrPrimaryMismatch = errors.New("primary file does not mirror the first file")
	ErrInvalidStatus   = errors.New("invalid order status")
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingUpload, StatusUploaded, StatusInProgress, StatusQuoted, StatusError:
		return true
	}
	return false
}

// Terminal reports whether the client stops expecting further pushes.
func (s OrderStatus) Terminal() bool {
	return s == StatusQuoted || s == StatusError
}

// Hint is the short explanation shown next to the status.
func (s OrderStatus) Hint() string {
	switch s {
	case StatusAwaitingUpload:
		return "Waiting for the file upload..."
	case StatusUploaded:
		return "Queued for analysis..."
	case StatusInProgress:
		return "Analyzing and generating preview..."
	case StatusQuoted:
		return "Quote ready."
	case StatusError:
		return "Something went wrong. Check the details."
	}
	return ""
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Options struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Delivery string `json:"delivery"`
}

// OrderForm is what the customer typed into the order form.
type OrderForm struct {
	Customer Customer `json:"customer"`
	Options  Options  `json:"options"`
	Notes    string   `json:"notes"`
}

type Preview struct {
	Provider    string `json:"provider"`
	Path        string `json:"path,omitempty"`
	DriveFileID string `json:"driveFileId,omitempty"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

type OrderError struct {
	Message string `json:"message"`
}

type WorkerClaim struct {
	ClaimedBy string    `json:"claimedBy"`
	ClaimedAt time.Time `json:"claimedAt"`
}

type Order struct {
	ID        string           `json:"id"`
	UID       string           `json:"uid"`
	Status    OrderStatus      `json:"status"`
	Customer  Customer         `json:"customer"`
	Options   Options          `json:"options"`
	Notes     string           `json:"notes"`
	File      *FileDescriptor  `json:"file"`
	Files     []FileDescriptor `json:"files"`
	Preview   *Preview         `json:"preview,omitempty"`
	Quote     *Quote           `json:"quote,omitempty"`
	Analysis  *Analysis        `json:"analysis,omitempty"`
	Error     *OrderError      `json:"error,omitempty"`
	Worker    *WorkerClaim     `json:"worker,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewOrder builds an order record whose primary file mirrors files[0].
// Timestamps are left for the store to assign.
func NewOrder(id, uid string, status OrderStatus, form OrderForm, files []FileDescriptor) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	order := &Order{
		ID:       id,
		UID:      uid,
		Status:   status,
		Customer: form.Customer,
		Options:  form.Options,
		Notes:    form.Notes,
		Files:    make([]FileDescriptor, len(files)),
	}
	for i, f := range files {
		order.Files[i] = f.Clone()
	}
	order.SyncPrimary()
	return order, nil
}

// SyncPrimary re-establishes file == files[0] after the file list changed.
func (o *Order) SyncPrimary() {
	if len(o.Files) == 0 {
		o.File = nil
		return
	}
	primary := o.Files[0].Clone()
	o.File = &primary
}

func (o *Order) CheckPrimary() error {
	if len(o.Files) == 0 {
		return ErrNoFiles
	}
	if o.File == nil || !o.File.Equal(o.Files[0]) {
		return ErrPrimaryMismatch
	}
	return nil
}

// AllFilesUploaded reports whether every descriptor carries a remote id.
func (o *Order) AllFilesUploaded() bool {
	if len(o.Files) == 0 {
		return false
	}
	for _, f := range o.Files {
		if !f.Uploaded() {
			return false
		}
	}
	return true
}
