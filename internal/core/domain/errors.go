package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBoundary is returned for a boundary that is not a closed ring.
	ErrInvalidBoundary = errors.New("boundary must be a closed ring of at least 4 [lng, lat] positions")
	// ErrMissingEndpoints is returned when a route is requested without start and end.
	ErrMissingEndpoints = errors.New("start and end points are required")
	// ErrRouteDataMissing is returned when a route response carries no features.
	ErrRouteDataMissing = errors.New("route data not found")
	// ErrAlreadyDone is returned when processing a request that is already done.
	ErrAlreadyDone = errors.New("request already processed")
	// ErrProviderNotConfigured is returned before any network call when a
	// provider credential or endpoint is missing.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrSuperseded is returned when a newer lookup replaced this one.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// ProviderError is an error reported by an external data provider.
type ProviderError struct {
	Provider   string
	StatusCode int    // HTTP status of the provider response
	Message    string // provider-supplied error message
	Details    string // raw response body, when available
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
}
