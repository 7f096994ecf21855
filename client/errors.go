package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnauthorized is returned for any request the backend rejects with 401.
// A 401 is the sole trigger: callers redirect to login on this error and on
// nothing else, regardless of which operation produced it.
var ErrUnauthorized = errors.New("unauthorized (missing or expired session)")

// IsUnauthorized reports whether err is (or wraps) an authorization failure.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// APIError is an operational (non-auth) failure reported by the backend.
type APIError struct {
	Op     string // the attempted operation, e.g. "create task"
	Status int    // HTTP status code
	Detail string // server-provided detail, if any
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// errorDetail mirrors the backend's error body shape.
type errorDetail struct {
	Detail string `json:"detail"`
}

// responseError maps a non-success response to the error taxonomy:
// 401 becomes ErrUnauthorized (wrapped with the operation name for logs),
// everything else becomes an *APIError carrying the server detail.
func responseError(op string, resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	var ed errorDetail
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &ed)
	return &APIError{Op: op, Status: resp.StatusCode, Detail: ed.Detail}
}
