package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrServer       = errors.New("server error")
)

// FieldError is a per-field validation failure reported by the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is an error answer from the backend. Status is the HTTP status
// code; it is 2xx when the backend answered success=false.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d: %s", e.Status, e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s: %s", f.Field, f.Message)
	}
	return b.String()
}

// Unwrap maps the status onto the sentinel taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusRequestTimeout,
		e.Status == http.StatusTooManyRequests,
		e.Status >= http.StatusInternalServerError:
		return ErrServer
	case e.Status < http.StatusBadRequest,
		e.Status == http.StatusBadRequest,
		e.Status == http.StatusConflict,
		e.Status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the backend message carried by err, or err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// IsFallbackTrigger reports whether a failed resource call may be served
// from the local store instead. Authorization and not-found answers never
// are; validation rejections are only when onValidation is set.
func IsFallbackTrigger(err error, onValidation bool) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return false
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrServer):
		return true
	case errors.Is(err, ErrValidation):
		return onValidation
	default:
		return false
	}
}
