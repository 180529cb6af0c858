package transcription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/pkg/providers"
)

func stringSource(s string) AudioSource {
	return func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

func testPolicy(sleeps *int) providers.RetryPolicy {
	return providers.RetryPolicy{
		MaxRetries: 3,
		Delay:      5 * time.Second,
		Sleep: func(context.Context, time.Duration) error {
			*sleeps++

			return nil
		},
	}
}

type fakeClient struct {
	calls   atomic.Int32
	results []error
	text    string
}

func (f *fakeClient) Transcribe(_ context.Context, audio io.Reader) (string, error) {
	// Drain the stream the way a real upload would.
	_, _ = io.Copy(io.Discard, audio)

	n := int(f.calls.Add(1))
	if n <= len(f.results) && f.results[n-1] != nil {
		return "", f.results[n-1]
	}

	return f.text, nil
}

func TestRetrying_AlwaysRateLimited(t *testing.T) {
	sleeps := 0
	inner := &fakeClient{results: []error{
		providers.ErrRateLimited,
		providers.ErrRateLimited,
		providers.ErrRateLimited,
		providers.ErrRateLimited,
	}}

	client := NewRetryingWithPolicy(inner, testPolicy(&sleeps), slog.Default())

	_, err := client.Transcribe(context.Background(), stringSource("audio"))
	require.Error(t, err)
	assert.True(t, providers.IsRateLimitExhausted(err))
	assert.Equal(t, int32(4), inner.calls.Load(), "exactly 4 total attempts")
	assert.Equal(t, 3, sleeps, "a delay between every pair of attempts")
}

func TestRetrying_RecoversAfterRateLimit(t *testing.T) {
	sleeps := 0
	inner := &fakeClient{
		results: []error{providers.ErrRateLimited},
		text:    "we need to schedule a follow up",
	}

	client := NewRetryingWithPolicy(inner, testPolicy(&sleeps), slog.Default())

	transcript, err := client.Transcribe(context.Background(), stringSource("audio"))
	require.NoError(t, err)
	assert.Equal(t, "we need to schedule a follow up", transcript)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestRetrying_TerminalErrorNotRetried(t *testing.T) {
	sleeps := 0
	terminal := errors.New("unsupported codec")
	inner := &fakeClient{results: []error{terminal}}

	client := NewRetryingWithPolicy(inner, testPolicy(&sleeps), slog.Default())

	_, err := client.Transcribe(context.Background(), stringSource("audio"))
	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Zero(t, sleeps)
}

func TestRetrying_EachAttemptReopensSource(t *testing.T) {
	opens := 0
	source := func(context.Context) (io.ReadCloser, error) {
		opens++

		return io.NopCloser(strings.NewReader("audio")), nil
	}

	sleeps := 0
	inner := &fakeClient{
		results: []error{providers.ErrRateLimited, providers.ErrRateLimited},
		text:    "ok",
	}

	client := NewRetryingWithPolicy(inner, testPolicy(&sleeps), slog.Default())

	_, err := client.Transcribe(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 3, opens)
}

func TestHTTPClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "raw audio", string(data))

		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "hello from the meeting"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	transcript, err := client.Transcribe(context.Background(), strings.NewReader("raw audio"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the meeting", transcript)
}

func TestHTTPClient_RateLimitMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")

	_, err := client.Transcribe(context.Background(), strings.NewReader("audio"))
	assert.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestHTTPClient_ServerErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")

	_, err := client.Transcribe(context.Background(), strings.NewReader("audio"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, providers.ErrRateLimited))
	assert.Contains(t, err.Error(), "model crashed")
}
