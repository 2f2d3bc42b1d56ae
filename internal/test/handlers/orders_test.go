package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/handlers"
	"github.com/Delyplott/DelyPlot-Web/internal/localstore"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
)

const jwtSecret = "handler-test-secret"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := feed.NewHub()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "orders.db"), hub)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop().Sugar()
	return handlers.NewRouter(jwtSecret, services.NewOrderService(store, hub, logger), logger, false)
}

func call(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, router *gin.Engine) models.AuthResponse {
	t.Helper()
	w := call(router, http.MethodPost, "/api/v1/auth/anonymous", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.UID)
	require.NotEmpty(t, auth.Token)
	return auth
}

func TestOrders_RequireAuth(t *testing.T) {
	router := newRouter(t)

	w := call(router, http.MethodGet, "/api/v1/orders/O1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrders_CreateAndGet(t *testing.T) {
	router := newRouter(t)
	auth := signIn(t, router)

	id := "X1"
	req := models.CreateOrderRequest{
		Status:   models.StatusUploaded,
		Customer: models.Customer{Name: "Ana"},
		Files:    []models.FileDescriptor{{Filename: "a.pdf", DriveFileID: &id}},
	}
	w := call(router, http.MethodPut, "/api/v1/orders/O1", auth.Token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, auth.UID, created.UID)
	assert.Equal(t, "a.pdf", created.File.Filename)

	w = call(router, http.MethodPut, "/api/v1/orders/O1", auth.Token, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(router, http.MethodGet, "/api/v1/orders/O1", auth.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other := signIn(t, router)
	w = call(router, http.MethodGet, "/api/v1/orders/O1", other.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_BridgeFlow(t *testing.T) {
	router := newRouter(t)
	auth := signIn(t, router)

	req := models.CreateOrderRequest{
		Status: models.StatusAwaitingUpload,
		Files:  []models.FileDescriptor{models.PendingFile("a.pdf", "application/pdf", 3)},
	}
	w := call(router, http.MethodPut, "/api/v1/orders/O1", auth.Token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(router, http.MethodPost, "/api/v1/orders/O1/uploaded", auth.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, http.MethodPatch, "/api/v1/orders/O1/files/x", auth.Token, models.PatchFileRequest{FileID: "F1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, http.MethodPatch, "/api/v1/orders/O1/files/0", auth.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(router, http.MethodPatch, "/api/v1/orders/O1/files/0", auth.Token, models.PatchFileRequest{FileID: "F1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(router, http.MethodPost, "/api/v1/orders/O1/uploaded", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.StatusUploaded, order.Status)

	w = call(router, http.MethodPatch, "/api/v1/orders/O1/files/0", auth.Token, models.PatchFileRequest{FileID: "F2"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrders_StreamMissingOrder(t *testing.T) {
	router := newRouter(t)
	auth := signIn(t, router)

	w := call(router, http.MethodGet, "/api/v1/orders/nope/stream", auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTools_Quote(t *testing.T) {
	router := newRouter(t)
	auth := signIn(t, router)

	body := handlers.QuoteRequest{
		Options:  models.Options{Color: "Blanco y negro", Delivery: "Retiro en local"},
		Analysis: &models.Analysis{Pages: 1, PageMM: &models.PageSize{W: 210, H: 297}},
	}
	w := call(router, http.MethodPost, "/api/v1/tools/quote", auth.Token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var q models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, int64(281), q.TotalCLP)
}

func TestTools_Analyze(t *testing.T) {
	router := newRouter(t)
	auth := signIn(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "plano.pdf")
	require.NoError(t, err)
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	require.NoError(t, doc.Output(fw))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var a models.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "pdf", a.Type)
	assert.Equal(t, 1, a.Pages)

	w = call(router, http.MethodPost, "/api/v1/tools/analyze", auth.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
