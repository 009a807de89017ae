package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaNotFound is returned by MediaStore implementations when no
	// media exists under the requested key.
	ErrMediaNotFound = errors.New("media not found")

	// ErrUnsupportedTrait indicates a request for media from a trait the
	// device does not expose. This is caller misuse and always surfaced.
	ErrUnsupportedTrait = errors.New("unsupported trait")

	// ErrUnsupportedMedia indicates the trait exists but declares no media
	// generating capability.
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// FetchError describes a failed media download. The cache and store are left
// unmodified; callers may retry by requesting the media again.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("media fetch failed [%d]: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("media fetch failed: %s", e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError creates a FetchError for the descriptor URL.
func NewFetchError(url string, statusCode int, message string, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Message: message, Err: err}
}

// APIError describes a failed REST call against the device management API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error [%d] in %s: %s", e.StatusCode, e.Op, e.Message)
	}
	return fmt.Sprintf("api error in %s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }
