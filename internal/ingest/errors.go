package ingest

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds shared by every provider adapter. Adapters wrap one of these so
// callers can classify with errors.Is.
var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrNotFound      = errors.New("ticker not found")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpstream      = errors.New("upstream error")
)

// APIError is a non-200 response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d on %s: %s", e.Provider, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap maps the status code onto the failure kinds.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrUpstream
	}
}

// Kind returns the failure kind err wraps, or ErrUpstream when it wraps none.
func Kind(err error) error {
	for _, kind := range []error{ErrNotConfigured, ErrRateLimited, ErrNotFound, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUpstream
}
