// Package persistence provides the data storage abstraction layer for
// recordings, actions and archive snapshots.
package persistence

import (
	"context"

	"github.com/recapd/recapd/pkg/models"
)

// Persistence aggregates the repositories of one storage backend.
//
// Every successful write through any repository bumps the backend's change
// sequence, the lightweight signal polling clients use to detect that
// anything changed at all.
type Persistence interface {
	Recordings() RecordingRepository
	Actions() ActionRepository
	Archive() ArchiveRepository

	// ChangeSeq returns the current change sequence. It is monotonically
	// increasing and never resets while the backend lives.
	ChangeSeq(ctx context.Context) (uint64, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// RecordingRepository stores live recordings. The pipeline orchestrator is
// the only writer of a recording's transcript/summary/highlights/status.
type RecordingRepository interface {
	Create(ctx context.Context, rec *models.Recording) error
	GetByID(ctx context.Context, id string) (*models.Recording, error)
	// List returns all live recordings, most recent first.
	List(ctx context.Context) ([]*models.Recording, error)
	// Update overwrites an existing recording. Returns ErrRecordingNotFound
	// when the recording no longer exists, so in-flight pipeline writes
	// after a delete degrade to no-ops at the caller.
	Update(ctx context.Context, rec *models.Recording) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// ListActionsOptions filters action listings. Nil/zero fields do not filter.
type ListActionsOptions struct {
	Status          *models.ActionStatus
	MeetingID       string
	IncludeArchived bool
}

// ActionRepository stores actions.
type ActionRepository interface {
	Create(ctx context.Context, action *models.Action) error
	GetByID(ctx context.Context, id string) (*models.Action, error)
	// List returns actions matching opts, most recent first.
	List(ctx context.Context, opts ListActionsOptions) ([]*models.Action, error)
	Update(ctx context.Context, action *models.Action) error
	Delete(ctx context.Context, id string) error
	// DeleteByMeeting removes every action owned by the given recording.
	DeleteByMeeting(ctx context.Context, meetingID string) error
}

// ArchiveRepository stores immutable recording snapshots. Snapshots are
// written once and never updated.
type ArchiveRepository interface {
	Save(ctx context.Context, snap *models.ArchivedRecording) error
	GetByID(ctx context.Context, id string) (*models.ArchivedRecording, error)
	// List returns all snapshots, most recently archived first.
	List(ctx context.Context) ([]*models.ArchivedRecording, error)
}
