package poller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/testutil"
)

// fakeServer serves /changes and /recordings from mutable state.
type fakeServer struct {
	mu         sync.Mutex
	seq        uint64
	recordings []*models.Recording
	server     *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/changes", func(w http.ResponseWriter, _ *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]uint64{"seq": fs.seq})
	})
	mux.HandleFunc("/recordings", func(w http.ResponseWriter, _ *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()

		_ = json.NewEncoder(w).Encode(fs.recordings)
	})

	fs.server = httptest.NewServer(mux)
	t.Cleanup(fs.server.Close)

	return fs
}

func (fs *fakeServer) set(seq uint64, recordings ...*models.Recording) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.seq = seq
	fs.recordings = recordings
}

func newPoller(baseURL string) *Poller {
	return New(Config{
		BaseURL:  baseURL,
		Interval: 5 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_StopsImmediatelyWhenNothingProcessing(t *testing.T) {
	fs := newFakeServer(t)
	fs.set(7, testutil.CreateTestRecording(testutil.WithProcessed("t", "s")))

	var calls int

	err := newPoller(fs.server.URL).Run(context.Background(), func(seq uint64, recordings []*models.Recording) {
		calls++

		assert.Equal(t, uint64(7), seq)
		assert.Len(t, recordings, 1)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_PollsUntilProcessingFinishes(t *testing.T) {
	fs := newFakeServer(t)
	inflight := testutil.CreateTestRecording()
	fs.set(1, inflight)

	var (
		mu   sync.Mutex
		seqs []uint64
	)

	done := make(chan error, 1)

	go func() {
		done <- newPoller(fs.server.URL).Run(context.Background(), func(seq uint64, _ []*models.Recording) {
			mu.Lock()
			defer mu.Unlock()

			seqs = append(seqs, seq)
		})
	}()

	// Let a few unchanged polls pass, then finish the recording.
	time.Sleep(30 * time.Millisecond)

	finished := testutil.CreateTestRecording(testutil.WithProcessed("t", "s"))
	finished.ID = inflight.ID
	fs.set(2, finished)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, seqs)
}

func TestRun_UnchangedSeqDoesNotRefresh(t *testing.T) {
	fs := newFakeServer(t)
	fs.set(3, testutil.CreateTestRecording())

	var calls int

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := newPoller(fs.server.URL).Run(ctx, func(_ uint64, _ []*models.Recording) {
		calls++
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestRun_ContextCancel(t *testing.T) {
	fs := newFakeServer(t)
	fs.set(1, testutil.CreateTestRecording())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- newPoller(fs.server.URL).Run(ctx, func(_ uint64, _ []*models.Recording) {})
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestRun_InitialFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newPoller(server.URL).Run(context.Background(), func(_ uint64, _ []*models.Recording) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
