// Package providers defines the shared contract for external AI providers
// and the retry policy applied to their rate limiting.
package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRateLimited signals the provider rejected a call because of rate
// limiting. Calls failing with this error are retried; everything else is
// terminal for the attempt.
var ErrRateLimited = errors.New("provider rate limited")

// RateLimitExhaustedError reports that every attempt of a call was rejected
// with rate limiting. It still matches ErrRateLimited via errors.Is so
// callers can tell exhaustion apart from a generic provider failure.
type RateLimitExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("%s: provider still rate limited after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *RateLimitExhaustedError) Unwrap() error {
	return e.Err
}

// IsRateLimitExhausted checks whether an error is a rate limit that
// survived all retries.
func IsRateLimitExhausted(err error) bool {
	var target *RateLimitExhaustedError

	return errors.As(err, &target)
}

// RetryPolicy retries rate-limited calls with a fixed delay. The zero
// value does not retry.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// Sleep overrides the wait implementation. Tests inject a fake; nil
	// means a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is the pipeline's provider policy: 3 retries, 5
// seconds apart, 4 total attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Delay: 5 * time.Second}
}

// Do runs call, retrying only when the error matches ErrRateLimited. The
// last error is returned unchanged unless retries were exhausted on rate
// limiting, in which case it is wrapped in RateLimitExhaustedError.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, op string, call func(context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	attempts := p.MaxRetries + 1

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, ErrRateLimited) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		logger.WarnContext(ctx, "Provider rate limited, retrying",
			"op", op,
			"attempt", attempt,
			"delay", p.Delay)

		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}

	return &RateLimitExhaustedError{Op: op, Attempts: attempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
