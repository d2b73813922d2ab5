package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/retry"
)

// fastConfig keeps backoff delays negligible in tests.
func fastConfig(maxAttempts int, isRetryable func(error) bool) retry.Config {
	return retry.Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		IsRetryable:  isRetryable,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(3, nil), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(3, func(error) bool { return true }), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	failure := errors.New("still broken")

	err := retry.Do(context.Background(), fastConfig(3, func(error) bool { return true }), func() error {
		calls++
		return failure
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, failure)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("bad request")

	err := retry.Do(context.Background(), fastConfig(5, func(error) bool { return false }), func() error {
		calls++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(3, nil), func() error {
		t.Fatal("fn should not run with cancelled context")
		return nil
	})

	assert.ErrorIs(t, err, retry.ErrContextCancelled)
}

func TestDefaultIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("i/o timeout"), true},
		{"rate limit", errors.New("Rate Limit exceeded"), true},
		{"server error", errors.New("api request failed with status 503"), true},
		{"bad input", errors.New("invalid URL"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.retryable, retry.DefaultIsRetryable(tt.err))
		})
	}
}
