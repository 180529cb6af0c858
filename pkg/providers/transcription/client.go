// Package transcription wraps the external speech-to-text provider.
package transcription

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/recapd/recapd/pkg/providers"
)

// Client converts an audio byte stream into transcript text.
type Client interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// AudioSource opens a fresh audio stream. Retried attempts each open their
// own stream since a reader consumed by a failed attempt cannot be rewound.
type AudioSource func(ctx context.Context) (io.ReadCloser, error)

// Retrying drives a Client under the pipeline's rate-limit retry policy.
type Retrying struct {
	inner  Client
	policy providers.RetryPolicy
	logger *slog.Logger
}

// NewRetrying applies the default policy: 3 retries, 5 seconds apart.
func NewRetrying(inner Client, logger *slog.Logger) *Retrying {
	return NewRetryingWithPolicy(inner, providers.DefaultRetryPolicy(), logger)
}

// NewRetryingWithPolicy applies a custom policy. Tests use this to inject
// a fake sleep.
func NewRetryingWithPolicy(inner Client, policy providers.RetryPolicy, logger *slog.Logger) *Retrying {
	return &Retrying{
		inner:  inner,
		policy: policy,
		logger: logger.With("module", "transcription"),
	}
}

// Transcribe opens the source and calls the provider, retrying on rate
// limiting per the policy.
func (r *Retrying) Transcribe(ctx context.Context, source AudioSource) (string, error) {
	var transcript string

	err := r.policy.Do(ctx, r.logger, "transcribe", func(ctx context.Context) error {
		audio, err := source(ctx)
		if err != nil {
			return fmt.Errorf("failed to open audio source: %w", err)
		}

		defer func() { _ = audio.Close() }()

		transcript, err = r.inner.Transcribe(ctx, audio)

		return err
	})
	if err != nil {
		return "", err
	}

	return transcript, nil
}
