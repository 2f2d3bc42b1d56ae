package bridge

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingBaseURL = errors.New("bridge URL is not configured")
	ErrInvalidBaseURL = errors.New("bridge URL must be an absolute http(s) URL")
)

// Endpoint is the bridge web app base URL (the .../exec URL). All uploader,
// result and bridge calls hang off it via query parameters.
type Endpoint struct {
	base *url.URL
}

// ParseBaseURL validates the configured bridge URL before any network
// activity happens.
func ParseBaseURL(raw string) (Endpoint, error) {
	if raw == "" {
		return Endpoint{}, ErrMissingBaseURL
	}
	if strings.IndexFunc(raw, isSpace) >= 0 {
		return Endpoint{}, fmt.Errorf("%w: contains whitespace (%q)", ErrInvalidBaseURL, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return Endpoint{base: u}, nil
}

func (e Endpoint) String() string {
	if e.base == nil {
		return ""
	}
	return e.base.String()
}

// Origin is scheme://host of the bridge, used when posting to the uploader.
func (e Endpoint) Origin() string {
	if e.base == nil {
		return ""
	}
	return e.base.Scheme + "://" + e.base.Host
}

// UploaderURL is the page the customer uses to pick and send files.
func (e Endpoint) UploaderURL(orderID string) string {
	return e.with(map[string]string{
		"ui":      "uploader",
		"orderId": orderID,
	})
}

// ResultURL is the JSON (CORS) variant of the result endpoint.
func (e Endpoint) ResultURL(orderID string, ts time.Time) string {
	return e.with(map[string]string{
		"ui":      "result",
		"orderId": orderID,
		"_ts":     strconv.FormatInt(ts.UnixMilli(), 10),
	})
}

// ResultURLJSONP is the script variant; the body invokes callback(...).
func (e Endpoint) ResultURLJSONP(orderID, callback string, ts time.Time) string {
	return e.with(map[string]string{
		"ui":       "result",
		"orderId":  orderID,
		"callback": callback,
		"_ts":      strconv.FormatInt(ts.UnixMilli(), 10),
	})
}

func (e Endpoint) with(params map[string]string) string {
	if e.base == nil {
		return ""
	}
	u := *e.base
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
