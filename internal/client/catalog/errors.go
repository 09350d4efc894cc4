package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable is matched by every catalog API failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrEmptyStreamURL indicates that the catalog resolved a track to an empty URL.
	ErrEmptyStreamURL = errors.New("catalog returned an empty stream URL")
	// ErrEmptyID indicates that a lookup was made without an identifier.
	ErrEmptyID = errors.New("identifier cannot be empty")
)

// UnavailableError describes a failed catalog API call.
type UnavailableError struct {
	// Endpoint is the catalog endpoint that failed.
	Endpoint string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s endpoint returned HTTP %d: %v", ErrCatalogUnavailable, e.Endpoint, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: %s endpoint: %v", ErrCatalogUnavailable, e.Endpoint, e.Err)
}

// Unwrap lets errors.Is match both ErrCatalogUnavailable and the cause.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrCatalogUnavailable, e.Err}
}

// StatusCodeOf returns the HTTP status carried by an *UnavailableError in err's chain, or 0.
func StatusCodeOf(err error) int {
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.StatusCode
	}

	return 0
}
