package embed

import (
	"errors"
	"fmt"

	"github.com/robalyx/embedder/internal/database/types/enum"
)

var (
	// ErrNotHandled is returned for URLs no available integration can handle.
	// Callers ignore these requests silently.
	ErrNotHandled = errors.New("not handled")

	// ErrNotAllowed is the parent of every admission rejection.
	ErrNotAllowed = errors.New("not allowed")
	// ErrQuotaExceeded is returned when the server used up its daily posts.
	ErrQuotaExceeded = fmt.Errorf("%w: daily post limit reached", ErrNotAllowed)
	// ErrMemberBanned is returned when the requesting member is banned on the server.
	ErrMemberBanned = fmt.Errorf("%w: member is banned", ErrNotAllowed)
	// ErrCommentLimit is returned when more comments are requested than allowed.
	ErrCommentLimit = fmt.Errorf("%w: too many comments requested", ErrNotAllowed)
	// ErrServerInactive is returned for servers that are inactive or blocked.
	ErrServerInactive = fmt.Errorf("%w: server is not active", ErrNotAllowed)
	// ErrIntegrationDisabled is returned when the server has not enabled the integration.
	ErrIntegrationDisabled = fmt.Errorf("%w: integration is disabled", ErrNotAllowed)
)

// IsNotHandled reports whether err means the URL should be ignored.
func IsNotHandled(err error) bool {
	return errors.Is(err, ErrNotHandled)
}

// IsNotAllowed reports whether err is an admission rejection.
func IsNotAllowed(err error) bool {
	return errors.Is(err, ErrNotAllowed)
}

// FetchError is returned when an integration client fails to fetch content.
type FetchError struct {
	Integration enum.Integration
	URL         string
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s post %s: %v", e.Integration, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RepositoryError is returned when the datastore fails during a request.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repositoryError(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}
