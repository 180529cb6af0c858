package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recapd/recapd/pkg/eventbus"
	"github.com/recapd/recapd/pkg/events"
	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

// Recording handles recording-related business operations that live
// outside the processing pipeline: listing, archival and deletion.
type Recording struct {
	persistence persistence.Persistence
	bus         eventbus.EventBus
	logger      *slog.Logger
	now         func() time.Time
}

// NewRecording creates a new recording service.
func NewRecording(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *Recording {
	return &Recording{
		persistence: p,
		bus:         bus,
		logger:      logger.With("module", "recording_service"),
		now:         time.Now,
	}
}

// List returns all live recordings, most recent first.
func (s *Recording) List(ctx context.Context) ([]*models.Recording, error) {
	return s.persistence.Recordings().List(ctx)
}

// Get returns one live recording.
func (s *Recording) Get(ctx context.Context, id string) (*models.Recording, error) {
	return s.persistence.Recordings().GetByID(ctx, id)
}

// ListArchived returns all archive snapshots, most recently archived first.
func (s *Recording) ListArchived(ctx context.Context) ([]*models.ArchivedRecording, error) {
	return s.persistence.Archive().List(ctx)
}

// Archive snapshots the recording and deletes the live row. Actions that
// reference the recording are kept; their meeting reference dangles and
// the snapshot carries the original id for resolution.
func (s *Recording) Archive(ctx context.Context, id string) (*models.ArchivedRecording, error) {
	rec, err := s.persistence.Recordings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := models.Snapshot(uuid.New().String(), rec, s.now().UTC())

	if err := s.persistence.Archive().Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := s.persistence.Recordings().Delete(ctx, id); err != nil && !persistence.IsRecordingNotFound(err) {
		return nil, fmt.Errorf("failed to delete recording after snapshot: %w", err)
	}

	s.publish(ctx, id, events.RecordingArchived{
		BaseEvent: events.BaseEvent{
			ID:          s.bus.GenerateID(),
			Type:        events.RecordingArchivedEvent,
			Timestamp:   s.now().UTC(),
			RecordingID: id,
		},
		SnapshotID: snap.ID,
	})

	s.logger.Info("Recording archived", "recording_id", id, "snapshot_id", snap.ID)

	return snap, nil
}

// Delete removes the recording and every action attached to it. Pipeline
// writes racing this delete become no-ops.
func (s *Recording) Delete(ctx context.Context, id string) error {
	if err := s.persistence.Recordings().Delete(ctx, id); err != nil {
		return err
	}

	if err := s.persistence.Actions().DeleteByMeeting(ctx, id); err != nil {
		return fmt.Errorf("failed to delete actions of recording %s: %w", id, err)
	}

	s.logger.Info("Recording deleted", "recording_id", id)

	return nil
}

func (s *Recording) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := s.bus.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
