package s2

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNotFound indicates the API confirmed the paper is absent (404).
	ErrNotFound = errors.New("paper not found")

	// ErrNetworkError indicates a transport-level failure.
	ErrNetworkError = errors.New("network error communicating with Semantic Scholar")

	// ErrInvalidResponse indicates an unexpected API payload.
	ErrInvalidResponse = errors.New("invalid response from Semantic Scholar")
)

// APIError is a terminal non-404 HTTP failure. It is deliberately a
// distinct type from ErrNotFound: a 500 does not confirm the paper is
// absent, and callers that want to retry later can tell the two apart.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Semantic Scholar API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Semantic Scholar API error (status %d)", e.StatusCode)
}

// IsNotFound reports whether err means the paper is confirmed absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAPIError reports whether err is a terminal non-404 API failure and
// returns it when so.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
