package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

var (
	ErrStaleResult      = errors.New("result belongs to a different order")
	ErrCallbackMismatch = errors.New("jsonp response invokes an unexpected callback")
)

type ResultKind int

const (
	ResultPending ResultKind = iota
	ResultReady
	ResultMalformed
)

func (k ResultKind) String() string {
	switch k {
	case ResultPending:
		return "pending"
	case ResultReady:
		return "ready"
	case ResultMalformed:
		return "malformed"
	}
	return "unknown"
}

// Result is the upload result endpoint's answer decoded once at the boundary.
// Files is set only for ResultReady, Err only for ResultMalformed.
type Result struct {
	Kind  ResultKind
	Files []models.UploadedFile
	Err   error
}

func Pending() Result { return Result{Kind: ResultPending} }

func Ready(files []models.UploadedFile) Result { return Result{Kind: ResultReady, Files: files} }

func Malformed(err error) Result { return Result{Kind: ResultMalformed, Err: err} }

type resultPayload struct {
	OK      bool            `json:"ok"`
	Ready   bool            `json:"ready"`
	Files   json.RawMessage `json:"files"`
	OrderID json.RawMessage `json:"orderId"`
	Error   string          `json:"error"`
}

// DecodeResult classifies a result body for orderID. Only ok && ready with a
// non-empty file list is Ready; a body naming another order is Malformed.
func DecodeResult(body []byte, orderID string) Result {
	var p resultPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Malformed(fmt.Errorf("failed to decode result: %w", err))
	}
	if !p.OK {
		msg := p.Error
		if msg == "" {
			msg = "result endpoint reported ok=false"
		}
		return Malformed(fmt.Errorf("%w: %s", ErrBridge, msg))
	}
	if len(p.OrderID) > 0 {
		if id, _ := CoerceID(p.OrderID); id != orderID {
			return Malformed(fmt.Errorf("%w: got %q, want %q", ErrStaleResult, id, orderID))
		}
	}
	if !p.Ready {
		return Pending()
	}

	files, ok := DecodeFiles(p.Files)
	if !ok {
		return Malformed(errors.New("result files is not a list"))
	}
	if len(files) == 0 {
		return Pending()
	}
	return Ready(files)
}

// DecodeFiles reads an uploaded-file list. A missing or null field is an empty
// list; anything that is not a list reports ok=false. Entries are read
// loosely: ids may be numbers, sizes may be floats or numeric strings, and
// entries that are not objects are skipped.
func DecodeFiles(raw json.RawMessage) ([]models.UploadedFile, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.UploadedFile{}, true
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return []models.UploadedFile{}, false
	}

	files := make([]models.UploadedFile, 0, len(entries))
	for _, e := range entries {
		var w wireFile
		if err := json.Unmarshal(e, &w); err != nil {
			continue
		}
		if w.Filename == nil && w.FileID == nil && w.ContentType == nil && w.Size == nil {
			// not an object, or an object carrying none of the fields
			continue
		}
		f := models.UploadedFile{Size: coerceSize(w.Size)}
		f.Filename, _ = CoerceID(w.Filename)
		f.FileID, _ = CoerceID(w.FileID)
		f.ContentType, _ = CoerceID(w.ContentType)
		files = append(files, f)
	}
	return files, true
}

type wireFile struct {
	Filename    json.RawMessage `json:"filename"`
	FileID      json.RawMessage `json:"fileId"`
	ContentType json.RawMessage `json:"contentType"`
	Size        json.RawMessage `json:"size"`
}

// coerceSize accepts whole numbers written as integers, floats or strings.
func coerceSize(raw json.RawMessage) *int64 {
	s, ok := CoerceID(raw)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v != math.Trunc(v) || v > math.MaxInt64 {
		return nil
	}
	n := int64(v)
	return &n
}

// CoerceID turns a JSON scalar into its string form: strings as-is, other
// scalars by their literal text. ok is false for null, objects and arrays.
func CoerceID(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	}
	return string(trimmed), true
}

// UnwrapJSONP extracts the JSON argument from `callback({...});`.
func UnwrapJSONP(body []byte, callback string) ([]byte, error) {
	s := strings.TrimSpace(string(body))
	s = strings.TrimPrefix(s, "/**/")
	s = strings.TrimSpace(s)

	open := strings.IndexByte(s, '(')
	if open <= 0 {
		return nil, errors.New("jsonp response has no callback invocation")
	}
	name := strings.TrimSpace(s[:open])
	if name != callback {
		return nil, fmt.Errorf("%w: %q", ErrCallbackMismatch, name)
	}
	end := strings.LastIndexByte(s, ')')
	if end < open {
		return nil, errors.New("jsonp response is not terminated")
	}
	return []byte(s[open+1 : end]), nil
}
