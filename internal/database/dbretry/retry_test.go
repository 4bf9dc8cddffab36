package dbretry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/embedder/internal/database/dbretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPermanent = errors.New("syntax error")

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsRetryableError(nil))
	assert.False(t, dbretry.IsRetryableError(errPermanent))
	assert.False(t, dbretry.IsRetryableError(context.Canceled))
	assert.True(t, dbretry.IsRetryableError(errors.New("read tcp: connection reset by peer")))
	assert.True(t, dbretry.IsRetryableError(errors.New("dial tcp: i/o timeout")))
}

func TestNoResultStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := dbretry.NoResult(t.Context(), func(context.Context) error {
		calls++
		return errPermanent
	})

	require.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, calls)
}

func TestOperationRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := dbretry.Operation(t.Context(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("write: broken pipe")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsUniqueViolation(nil))
	assert.False(t, dbretry.IsUniqueViolation(errPermanent))
}
