// internal/errors/mapper.go
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// HTTPError carries an HTTP status alongside a caller-safe message.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// Map converts repo/infra errors into HTTP-friendly errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &HTTPError{http.StatusNotFound, "record not found"}

	case errors.Is(err, context.DeadlineExceeded):
		return &HTTPError{http.StatusGatewayTimeout, "request timed out"}

	case errors.Is(err, context.Canceled):
		return &HTTPError{http.StatusServiceUnavailable, "request was canceled"}

	default:
		// fallback → bubble up error message for debugging
		return &HTTPError{http.StatusInternalServerError, err.Error()}
	}
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return &HTTPError{http.StatusBadRequest, msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) error {
	return &HTTPError{http.StatusNotFound, msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) error {
	return &HTTPError{http.StatusUnauthorized, msg}
}

// Write maps err and writes it as a JSON error response.
func Write(w http.ResponseWriter, err error) {
	he := Map(err)
	if he == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": he.Message})
}
