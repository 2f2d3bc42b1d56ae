package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const PreviewProvider = "supabase"

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewStorageClient uses the storage handle of an existing Supabase client.
func NewStorageClient(c *Client) *StorageClient {
	return &StorageClient{
		client:  c.Supabase.Storage,
		bucket:  c.Config.SupabaseStorageBucket,
		baseURL: strings.TrimRight(c.Config.SupabaseURL, "/"),
	}
}

// UploadPreview stores a preview under orders/{order_id}/ and returns where
// it can be fetched.
func (s *StorageClient) UploadPreview(ctx context.Context, orderID, filename, contentType string, data []byte) (*models.Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	storagePath := fmt.Sprintf("orders/%s/%s", orderID, filename)

	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload preview: %w", err)
	}

	return &models.Preview{
		Provider:    PreviewProvider,
		Path:        storagePath,
		URL:         s.GetPublicURL(storagePath),
		ContentType: contentType,
	}, nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}
