package scraper

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched with errors.Is against a *FetchError
var (
	ErrTransport = errors.New("transport error")
	ErrAuth      = errors.New("auth error")
	ErrSchema    = errors.New("schema error")
)

// FetchError describes a failed page fetch
type FetchError struct {
	Kind       error
	Source     string
	Page       int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s page %d: %v", e.Source, e.Page, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRetryable returns true for transport failures only; auth and schema errors
// will not change on retry.
func (e *FetchError) IsRetryable() bool {
	return e.Kind == ErrTransport
}

// ErrorKind returns a short label for err, or "" when it is not a fetch error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrSchema):
		return "schema"
	default:
		return ""
	}
}

// classifyStatus maps a non-2xx HTTP status to an error kind
func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuth
	case code == http.StatusTooManyRequests || code >= 500:
		return ErrTransport
	default:
		// any other 4xx: the service rejected the request parameters
		return ErrSchema
	}
}
