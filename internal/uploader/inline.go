package uploader

import (
	"context"
	"fmt"
	"os"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/staging"
)

// FileSender is the bridge's inline upload call.
type FileSender interface {
	Upload(ctx context.Context, orderID, filename, contentType string, data []byte) (string, error)
}

// BridgeUploader pushes staged files through the bridge one at a time.
type BridgeUploader struct {
	sender   FileSender
	readFile func(path string) ([]byte, error)
}

func NewBridgeUploader(sender FileSender) *BridgeUploader {
	return &BridgeUploader{sender: sender, readFile: os.ReadFile}
}

// UploadAll stops at the first failure. onUploaded runs after each file so
// the order can be patched incrementally.
func (u *BridgeUploader) UploadAll(ctx context.Context, orderID string, files []staging.File, onUploaded func(index int, fileID string) error) error {
	for i, f := range files {
		data, err := u.readFile(f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = models.DefaultContentType
		}
		fileID, err := u.sender.Upload(ctx, orderID, f.Name, contentType, data)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		if err := onUploaded(i, fileID); err != nil {
			return fmt.Errorf("failed to record upload of %s: %w", f.Name, err)
		}
	}
	return nil
}
