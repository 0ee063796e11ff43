package source

import (
	"errors"
	"fmt"
)

// Common errors returned by sources.
var (
	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("transport error")

	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")
)

// StatusError is a non-success response from an HTTP source.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsNotFound returns true if the error indicates a missing document.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 404
	}
	return false
}

// IsStatus returns the HTTP status carried by err, if any.
func IsStatus(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
