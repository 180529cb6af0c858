// Package summarization wraps the external text-generation provider that
// turns a transcript into a short summary plus highlight strings.
package summarization

import (
	"context"
	"log/slog"

	"github.com/recapd/recapd/pkg/providers"
)

// Result is the provider's answer for one transcript.
type Result struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Client derives a summary and highlights from transcript text.
type Client interface {
	Summarize(ctx context.Context, transcript string) (*Result, error)
}

// Retrying wraps a Client with the same rate-limit retry policy the
// transcription step uses.
type Retrying struct {
	inner  Client
	policy providers.RetryPolicy
	logger *slog.Logger
}

// NewRetrying applies the default policy: 3 retries, 5 seconds apart.
func NewRetrying(inner Client, logger *slog.Logger) *Retrying {
	return NewRetryingWithPolicy(inner, providers.DefaultRetryPolicy(), logger)
}

// NewRetryingWithPolicy applies a custom policy.
func NewRetryingWithPolicy(inner Client, policy providers.RetryPolicy, logger *slog.Logger) *Retrying {
	return &Retrying{
		inner:  inner,
		policy: policy,
		logger: logger.With("module", "summarization"),
	}
}

func (r *Retrying) Summarize(ctx context.Context, transcript string) (*Result, error) {
	var result *Result

	err := r.policy.Do(ctx, r.logger, "summarize", func(ctx context.Context) error {
		var callErr error

		result, callErr = r.inner.Summarize(ctx, transcript)

		return callErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
