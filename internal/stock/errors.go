package stock

import (
	"errors"
	"fmt"

	"github.com/mauv0809/stockcache/internal/ingest"
)

// Category classifies why a snapshot could not be produced.
type Category string

const (
	CategoryNotConfigured       Category = "not_configured"
	CategoryNotFound            Category = "not_found"
	CategoryRateLimited         Category = "rate_limited"
	CategoryUnauthorized        Category = "unauthorized"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
)

// Error is returned when no snapshot, fresh or stale, can be served. Its
// message never includes upstream response text; Cause keeps the detail for
// logs and errors.Is.
type Error struct {
	Ticker   string
	Category Category
	Cause    error
}

func (e *Error) Error() string {
	switch e.Category {
	case CategoryRateLimited:
		return fmt.Sprintf("Rate limit exceeded for %s. Please try again in a minute.", e.Ticker)
	case CategoryNotFound:
		return fmt.Sprintf("Ticker '%s' not found. Please check the symbol.", e.Ticker)
	case CategoryUnauthorized:
		return "API authentication failed. Please check your provider API keys."
	case CategoryNotConfigured:
		return "No data provider API key configured and no cached data available"
	default:
		return fmt.Sprintf("Data providers unavailable for %s and no cached data available", e.Ticker)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// CategoryOf maps an upstream failure onto a Category.
func CategoryOf(err error) Category {
	switch ingest.Kind(err) {
	case ingest.ErrNotConfigured:
		return CategoryNotConfigured
	case ingest.ErrRateLimited:
		return CategoryRateLimited
	case ingest.ErrNotFound:
		return CategoryNotFound
	case ingest.ErrUnauthorized:
		return CategoryUnauthorized
	default:
		return CategoryUpstreamUnavailable
	}
}

// classify picks the failure that explains a fetch where every provider
// failed: the first one that is not a missing credential, else the first one.
func classify(ticker string, errs []error) *Error {
	if len(errs) == 0 {
		return &Error{Ticker: ticker, Category: CategoryNotConfigured, Cause: ingest.ErrNotConfigured}
	}
	for _, err := range errs {
		if !errors.Is(err, ingest.ErrNotConfigured) {
			return &Error{Ticker: ticker, Category: CategoryOf(err), Cause: errors.Join(errs...)}
		}
	}
	return &Error{Ticker: ticker, Category: CategoryNotConfigured, Cause: errors.Join(errs...)}
}
