package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	}, 3, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesTransient(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503}
		}
		return nil
	}, 5, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsBudget(t *testing.T) {
	calls := 0
	cause := &StatusError{Code: 429}
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return cause
	}, 3, time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, 3, embErr.Attempts)
	assert.Equal(t, 429, embErr.StatusCode)
	assert.True(t, embErr.Transient)
	assert.ErrorIs(t, err, cause)
}

func TestRetryWithBackoff_StopsOnPermanent(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return &StatusError{Code: 401}
	}, 5, time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, 1, embErr.Attempts)
	assert.False(t, embErr.Transient)
}

func TestRetryWithBackoff_VectorCountMismatchNotRetried(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return fmt.Errorf("embed: %w", ErrVectorCountMismatch)
	}, 5, time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.False(t, embErr.Transient)
	assert.ErrorIs(t, err, ErrVectorCountMismatch)
}

func TestRetryWithBackoff_DelaysDouble(t *testing.T) {
	base := 20 * time.Millisecond
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 3 {
			return &StatusError{Code: 503}
		}
		return nil
	}, 5, base)
	require.NoError(t, err)
	require.Len(t, stamps, 3)

	// Timers never fire early, so the gaps bound the scheduled delays
	// from below: base before attempt 2, double that before attempt 3.
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), base)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*base)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return errors.New("should not run")
	}, 3, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithBackoff_InvalidBudget(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
