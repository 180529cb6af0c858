package providers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_ExactAttemptBound(t *testing.T) {
	var (
		calls  int
		sleeps []time.Duration
	)

	policy := RetryPolicy{
		MaxRetries: 3,
		Delay:      5 * time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)

			return nil
		},
	}

	err := policy.Do(context.Background(), slog.Default(), "transcribe", func(context.Context) error {
		calls++

		return ErrRateLimited
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "3 retries means 4 total attempts")
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, sleeps)
	assert.True(t, IsRateLimitExhausted(err))
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestRetryPolicy_SucceedsAfterRateLimit(t *testing.T) {
	calls := 0

	policy := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Second,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}

	err := policy.Do(context.Background(), slog.Default(), "transcribe", func(context.Context) error {
		calls++
		if calls < 3 {
			return ErrRateLimited
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_NonRateLimitErrorIsTerminal(t *testing.T) {
	calls := 0
	terminal := errors.New("audio format rejected")

	policy := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Second,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}

	err := policy.Do(context.Background(), slog.Default(), "transcribe", func(context.Context) error {
		calls++

		return terminal
	})

	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls, "non-rate-limit errors are not retried")
	assert.False(t, IsRateLimitExhausted(err))
}

func TestRetryPolicy_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()

			return ctx.Err()
		},
	}

	err := policy.Do(ctx, slog.Default(), "transcribe", func(context.Context) error {
		return ErrRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicy_ZeroValueDoesNotRetry(t *testing.T) {
	calls := 0

	var policy RetryPolicy

	err := policy.Do(context.Background(), slog.Default(), "summarize", func(context.Context) error {
		calls++

		return ErrRateLimited
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsRateLimitExhausted(err))
}
