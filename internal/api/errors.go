package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport wraps network level failures: the request never got a response.
	ErrTransport = errors.New("transport failure")
	// ErrNotFound is matched by a RemoteError with status 404, e.g. an edit
	// for an id the remote no longer recognizes.
	ErrNotFound = errors.New("not found")
)

// RemoteError is a non-2xx response from the remote authority.
type RemoteError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: remote returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: remote returned %d: %s", e.Op, e.StatusCode, e.Detail)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// newRemoteError extracts the "detail" field of an error body when present.
func newRemoteError(op string, status int, body []byte) *RemoteError {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			detail = s
		} else {
			detail = string(payload.Detail)
		}
	}
	return &RemoteError{Op: op, StatusCode: status, Detail: detail}
}
