// Package poller implements the client-side refresh loop: a fixed
// interval poll of the change sequence that runs only while some
// recording is still processing.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/recapd/recapd/pkg/models"
)

// DefaultInterval is the poll cadence used when none is configured.
const DefaultInterval = 5 * time.Second

// OnChange is invoked whenever the change sequence moved, with the fresh
// recordings list.
type OnChange func(seq uint64, recordings []*models.Recording)

// Config configures a Poller. BaseURL is required.
type Config struct {
	BaseURL    string
	Interval   time.Duration
	HTTPClient *http.Client
}

// Poller polls GET /changes and refreshes the recordings list on change.
// The loop exits on its own once no known recording is processing.
type Poller struct {
	baseURL  string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// New creates a poller.
func New(cfg Config, logger *slog.Logger) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Poller{
		baseURL:  cfg.BaseURL,
		interval: interval,
		client:   client,
		logger:   logger.With("module", "poller"),
	}
}

type changesResponse struct {
	Seq uint64 `json:"seq"`
}

// Run polls until the context is cancelled or no recording is processing
// anymore. The callback fires once per observed change, including the
// initial state.
func (p *Poller) Run(ctx context.Context, onChange OnChange) error {
	lastSeq, err := p.fetchSeq(ctx)
	if err != nil {
		return err
	}

	recordings, err := p.fetchRecordings(ctx)
	if err != nil {
		return err
	}

	onChange(lastSeq, recordings)

	if !anyProcessing(recordings) {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		seq, err := p.fetchSeq(ctx)
		if err != nil {
			p.logger.Warn("Change poll failed", "error", err)

			continue
		}

		if seq != lastSeq {
			recordings, err = p.fetchRecordings(ctx)
			if err != nil {
				p.logger.Warn("Recordings refresh failed", "error", err)

				continue
			}

			lastSeq = seq

			onChange(seq, recordings)
		}

		if !anyProcessing(recordings) {
			return nil
		}
	}
}

func (p *Poller) fetchSeq(ctx context.Context) (uint64, error) {
	var changes changesResponse
	if err := p.getJSON(ctx, "/changes", &changes); err != nil {
		return 0, err
	}

	return changes.Seq, nil
}

func (p *Poller) fetchRecordings(ctx context.Context) ([]*models.Recording, error) {
	var recordings []*models.Recording
	if err := p.getJSON(ctx, "/recordings", &recordings); err != nil {
		return nil, err
	}

	return recordings, nil
}

func (p *Poller) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}

func anyProcessing(recordings []*models.Recording) bool {
	for _, rec := range recordings {
		if rec.Status == models.RecordingStatusProcessing {
			return true
		}
	}

	return false
}
