// Package apiclient is the order desk's HTTP client for the DelyPlott API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// streams stay open for as long as the order is followed
		streamClient: &http.Client{},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SignInAnonymously obtains a fresh identity and keeps its token for later
// calls.
func (c *Client) SignInAnonymously(ctx context.Context) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/anonymous", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("sign-in response has no token")
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) CreateOrder(ctx context.Context, orderID string, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPut, orderPath(orderID), req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, orderPath(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) PatchFile(ctx context.Context, orderID string, index int, fileID string) (*models.Order, error) {
	var order models.Order
	path := orderPath(orderID) + "/files/" + strconv.Itoa(index)
	if err := c.do(ctx, http.MethodPatch, path, models.PatchFileRequest{FileID: fileID}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MarkUploaded(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, orderPath(orderID)+"/uploaded", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func apiError(status int, body []byte) *APIError {
	var er models.ErrorResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		msg = er.Error
		if er.Message != "" {
			msg += ": " + er.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func orderPath(orderID string) string {
	return "/api/v1/orders/" + url.PathEscape(orderID)
}
