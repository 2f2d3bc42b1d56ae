// Package bridge talks to the storage bridge web app: inline uploads,
// worker downloads, and the uploader's result endpoint.
package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

var ErrBridge = errors.New("bridge error")

type Client struct {
	endpoint   Endpoint
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

// UploadRequest is the inline-upload payload.
type UploadRequest struct {
	Action      string `json:"action"`
	OrderID     string `json:"orderId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64"`
}

type UploadResponse struct {
	OK     bool   `json:"ok"`
	FileID string `json:"fileId,omitempty"`
	Error  string `json:"error,omitempty"`
}

type downloadRequest struct {
	Action string `json:"action"`
	Secret string `json:"secret"`
	FileID string `json:"fileId"`
}

type DownloadResponse struct {
	OK          bool   `json:"ok"`
	Filename    string `json:"filename,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Base64      string `json:"base64,omitempty"`
	Error       string `json:"error,omitempty"`
}

type uploadPreviewRequest struct {
	Action      string `json:"action"`
	Secret      string `json:"secret"`
	OrderID     string `json:"orderId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64"`
}

type UploadPreviewResponse struct {
	OK            bool   `json:"ok"`
	PreviewFileID string `json:"previewFileId,omitempty"`
	URL           string `json:"url,omitempty"`
	Error         string `json:"error,omitempty"`
}

// OrderSavedMessage tells the uploader side the order document exists.
type OrderSavedMessage struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId"`
}

type bridgeStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func NewClient(endpoint Endpoint, secret string) *Client {
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Upload sends one file inline and returns the remote file id.
func (c *Client) Upload(ctx context.Context, orderID, filename, contentType string, data []byte) (string, error) {
	var resp UploadResponse
	err := c.post(ctx, UploadRequest{
		Action:      "upload",
		OrderID:     orderID,
		Filename:    filename,
		ContentType: contentType,
		Base64:      base64.StdEncoding.EncodeToString(data),
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", bridgeError(resp.Error)
	}
	if resp.FileID == "" {
		return "", fmt.Errorf("%w: upload response has no fileId", ErrBridge)
	}
	return resp.FileID, nil
}

// Download fetches a stored file. Requires the worker secret.
func (c *Client) Download(ctx context.Context, fileID string) (*DownloadResponse, []byte, error) {
	var resp DownloadResponse
	err := c.post(ctx, downloadRequest{
		Action: "download",
		Secret: c.secret,
		FileID: fileID,
	}, &resp)
	if err != nil {
		return nil, nil, err
	}
	if !resp.OK {
		return nil, nil, bridgeError(resp.Error)
	}
	if resp.Base64 == "" {
		return nil, nil, fmt.Errorf("%w: download response has no base64 content", ErrBridge)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Base64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode download: %w", err)
	}
	if resp.Filename == "" {
		resp.Filename = resp.Name
	}
	if resp.Filename == "" {
		resp.Filename = "input.pdf"
	}
	return &resp, data, nil
}

// UploadPreview stores a worker preview next to the order's files.
// Requires the worker secret.
func (c *Client) UploadPreview(ctx context.Context, orderID, filename, contentType string, data []byte) (*models.Preview, error) {
	var resp UploadPreviewResponse
	err := c.post(ctx, uploadPreviewRequest{
		Action:      "uploadPreview",
		Secret:      c.secret,
		OrderID:     orderID,
		Filename:    filename,
		ContentType: contentType,
		Base64:      base64.StdEncoding.EncodeToString(data),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, bridgeError(resp.Error)
	}
	return &models.Preview{
		Provider:    models.ProviderDrive,
		DriveFileID: resp.PreviewFileID,
		URL:         resp.URL,
		ContentType: contentType,
	}, nil
}

// NotifyOrderSaved lets the uploader side start downstream work once the
// order document is persisted.
func (c *Client) NotifyOrderSaved(ctx context.Context, orderID string) error {
	var resp bridgeStatus
	if err := c.post(ctx, OrderSavedMessage{Type: "order_saved", OrderID: orderID}, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return bridgeError(resp.Error)
	}
	return nil
}

// FetchResult reads the JSON variant of the result endpoint.
func (c *Client) FetchResult(ctx context.Context, orderID string) (Result, error) {
	body, err := c.get(ctx, c.endpoint.ResultURL(orderID, c.now()))
	if err != nil {
		return Result{}, err
	}
	return DecodeResult(body, orderID), nil
}

// FetchResultJSONP reads the script variant with a fresh callback name, so a
// late response for an earlier attempt can never be taken for this one.
func (c *Client) FetchResultJSONP(ctx context.Context, orderID string) (Result, error) {
	callback := "__dely_jsonp_cb_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	body, err := c.get(ctx, c.endpoint.ResultURLJSONP(orderID, callback, c.now()))
	if err != nil {
		return Result{}, err
	}
	inner, err := UnwrapJSONP(body, callback)
	if err != nil {
		return Malformed(err), nil
	}
	return DecodeResult(inner, orderID), nil
}

// RetryWithBackoff executes fn up to maxRetries times, sleeping between tries.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if i == maxRetries-1 {
			break
		}
		wait := backoffs[len(backoffs)-1]
		if i < len(backoffs) {
			wait = backoffs[i]
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// post sends payload as the form field "payload" holding JSON.
func (c *Client) post(ctx context.Context, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	form := url.Values{}
	form.Set("payload", string(raw))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d, body: %s", ErrBridge, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrBridge, resp.StatusCode, string(body))
	}
	return body, nil
}

func bridgeError(msg string) error {
	if msg == "" {
		msg = "bridge reported ok=false"
	}
	return fmt.Errorf("%w: %s", ErrBridge, msg)
}
