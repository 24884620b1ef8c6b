package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned when a request carries no URL
	ErrEmptyURL = errors.New("no URL provided")

	// ErrInvalidRequest is the parent of every RequestError
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDownloadInProgress is returned when a run is already active
	ErrDownloadInProgress = errors.New("a download is already in progress")

	// ErrDownloadCancelled is returned by a progress callback once the user cancelled
	ErrDownloadCancelled = errors.New("download cancelled by user")

	// ErrFetchIncomplete means the fetcher finished but reported failures for some items
	ErrFetchIncomplete = errors.New("fetch finished with errors")
)

// RequestError reports an invalid field of a request
type RequestError struct {
	Field string
	Value string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidRequest
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}
