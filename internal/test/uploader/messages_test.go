package uploader_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

func TestMessageServer_DeliversPostedJSON(t *testing.T) {
	server := uploader.NewMessageServer([]string{trustedOrigin}, zap.NewNop().Sugar())
	msgs, stop := server.Listen()
	defer stop()

	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"type":"drive_upload_done","orderId":"O1"}`))
	req.Header.Set("Origin", trustedOrigin)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, trustedOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	select {
	case msg := <-msgs:
		assert.Equal(t, trustedOrigin, msg.Origin)
		assert.JSONEq(t, `{"type":"drive_upload_done","orderId":"O1"}`, string(msg.Data))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMessageServer_RejectsNonJSON(t *testing.T) {
	server := uploader.NewMessageServer(nil, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageServer_NoCORSForUnknownOrigin(t *testing.T) {
	server := uploader.NewMessageServer([]string{trustedOrigin}, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodOptions, "/messages", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMessageServer_StopClosesListener(t *testing.T) {
	server := uploader.NewMessageServer(nil, zap.NewNop().Sugar())
	msgs, stop := server.Listen()

	stop()
	stop()

	_, ok := <-msgs
	require.False(t, ok)

	// dispatching with no listeners is a no-op
	server.Dispatch(uploader.Message{Origin: trustedOrigin})
}
