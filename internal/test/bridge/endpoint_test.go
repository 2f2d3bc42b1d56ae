package bridge_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
)

func TestParseBaseURL(t *testing.T) {
	_, err := bridge.ParseBaseURL("")
	assert.ErrorIs(t, err, bridge.ErrMissingBaseURL)

	for _, raw := range []string{
		"script.google.com/macros/s/X/exec",
		"ftp://script.google.com/exec",
		"https://script.google.com/macros/s/X/exec ",
		"https:///exec",
	} {
		_, err := bridge.ParseBaseURL(raw)
		assert.ErrorIs(t, err, bridge.ErrInvalidBaseURL, raw)
	}

	e, err := bridge.ParseBaseURL("https://script.google.com/macros/s/X/exec")
	require.NoError(t, err)
	assert.Equal(t, "https://script.google.com", e.Origin())
}

func TestEndpoint_URLs(t *testing.T) {
	e, err := bridge.ParseBaseURL("https://script.google.com/macros/s/X/exec")
	require.NoError(t, err)

	u, err := url.Parse(e.UploaderURL("O 1"))
	require.NoError(t, err)
	assert.Equal(t, "/macros/s/X/exec", u.Path)
	assert.Equal(t, "uploader", u.Query().Get("ui"))
	assert.Equal(t, "O 1", u.Query().Get("orderId"))

	ts := time.UnixMilli(1700000000123)
	u, err = url.Parse(e.ResultURLJSONP("O1", "cb", ts))
	require.NoError(t, err)
	assert.Equal(t, "result", u.Query().Get("ui"))
	assert.Equal(t, "cb", u.Query().Get("callback"))
	assert.Equal(t, "1700000000123", u.Query().Get("_ts"))

	u, err = url.Parse(e.ResultURL("O1", ts))
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("callback"))
}
