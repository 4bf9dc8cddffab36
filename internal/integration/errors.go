package integration

import (
	"errors"
	"fmt"

	"github.com/robalyx/embedder/internal/database/types/enum"
)

var (
	// ErrUnsupportedURL is returned when no integration matches a URL.
	ErrUnsupportedURL = errors.New("unsupported url")
	// ErrHandlerUnavailable is returned when the matching integration could not be constructed.
	ErrHandlerUnavailable = errors.New("integration unavailable")
	// ErrDisabled is returned by factories of integrations turned off in configuration.
	ErrDisabled = errors.New("integration disabled")
	// ErrNoClient is returned for integrations without a built-in client.
	ErrNoClient = errors.New("no client available")
	// ErrInvalidURL is returned when a matched URL does not have the expected shape.
	ErrInvalidURL = errors.New("invalid post url")
	// ErrCommentsUnsupported is returned by fetchers that cannot list comments.
	ErrCommentsUnsupported = errors.New("comments not supported")
	// ErrPostNotFound is returned when the platform reports the post as missing.
	ErrPostNotFound = errors.New("post not found")
)

// ConfigurationError describes why an integration client could not be constructed.
type ConfigurationError struct {
	Integration enum.Integration
	Err         error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Integration, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// StatusError is returned when a platform answers with an unexpected HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
