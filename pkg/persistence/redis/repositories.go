package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

// RecordingRepository stores recordings as JSON under recapd:recording:<id>.
type RecordingRepository struct {
	p *Persistence
}

func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	exists, err := r.Exists(ctx, rec.ID)
	if err != nil {
		return err
	}

	if exists {
		return persistence.NewRecordingError("Create", rec.ID, persistence.ErrRecordingExists)
	}

	return r.write(ctx, "Create", rec)
}

func (r *RecordingRepository) GetByID(ctx context.Context, id string) (*models.Recording, error) {
	data, err := r.p.client.Get(ctx, recordingKeyPrefix+id).Bytes()
	if err == goredis.Nil {
		return nil, persistence.NewRecordingError("GetByID", id, persistence.ErrRecordingNotFound)
	}

	if err != nil {
		return nil, persistence.NewRecordingError("GetByID", id, err)
	}

	var rec models.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, persistence.NewRecordingError("GetByID", id, err)
	}

	return &rec, nil
}

func (r *RecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	ids, err := r.p.client.SMembers(ctx, recordingIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recording ids: %w", err)
	}

	recordings := make([]*models.Recording, 0, len(ids))

	for _, id := range ids {
		rec, err := r.GetByID(ctx, id)
		if err != nil {
			// Index entry without a document means a concurrent delete.
			if persistence.IsRecordingNotFound(err) {
				continue
			}

			return nil, err
		}

		recordings = append(recordings, rec)
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].CreatedAt.After(recordings[j].CreatedAt)
	})

	return recordings, nil
}

func (r *RecordingRepository) Update(ctx context.Context, rec *models.Recording) error {
	exists, err := r.Exists(ctx, rec.ID)
	if err != nil {
		return err
	}

	if !exists {
		return persistence.NewRecordingError("Update", rec.ID, persistence.ErrRecordingNotFound)
	}

	return r.write(ctx, "Update", rec)
}

func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.p.client.Del(ctx, recordingKeyPrefix+id).Result()
	if err != nil {
		return persistence.NewRecordingError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewRecordingError("Delete", id, persistence.ErrRecordingNotFound)
	}

	if err := r.p.client.SRem(ctx, recordingIndexKey, id).Err(); err != nil {
		return persistence.NewRecordingError("Delete", id, err)
	}

	return r.p.bump(ctx)
}

func (r *RecordingRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.p.client.Exists(ctx, recordingKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check recording %s: %w", id, err)
	}

	return n > 0, nil
}

func (r *RecordingRepository) write(ctx context.Context, op string, rec *models.Recording) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return persistence.NewRecordingError(op, rec.ID, err)
	}

	pipe := r.p.client.TxPipeline()
	pipe.Set(ctx, recordingKeyPrefix+rec.ID, data, 0)
	pipe.SAdd(ctx, recordingIndexKey, rec.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewRecordingError(op, rec.ID, err)
	}

	return r.p.bump(ctx)
}

// ActionRepository stores actions as JSON under recapd:action:<id>.
type ActionRepository struct {
	p *Persistence
}

func (r *ActionRepository) Create(ctx context.Context, action *models.Action) error {
	n, err := r.p.client.Exists(ctx, actionKeyPrefix+action.ID).Result()
	if err != nil {
		return persistence.NewActionError("Create", action.ID, err)
	}

	if n > 0 {
		return persistence.NewActionError("Create", action.ID, persistence.ErrActionExists)
	}

	return r.write(ctx, "Create", action)
}

func (r *ActionRepository) GetByID(ctx context.Context, id string) (*models.Action, error) {
	data, err := r.p.client.Get(ctx, actionKeyPrefix+id).Bytes()
	if err == goredis.Nil {
		return nil, persistence.NewActionError("GetByID", id, persistence.ErrActionNotFound)
	}

	if err != nil {
		return nil, persistence.NewActionError("GetByID", id, err)
	}

	var action models.Action
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, persistence.NewActionError("GetByID", id, err)
	}

	return &action, nil
}

func (r *ActionRepository) List(ctx context.Context, opts persistence.ListActionsOptions) ([]*models.Action, error) {
	ids, err := r.p.client.SMembers(ctx, actionIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list action ids: %w", err)
	}

	actions := make([]*models.Action, 0, len(ids))

	for _, id := range ids {
		action, err := r.GetByID(ctx, id)
		if err != nil {
			if persistence.IsActionNotFound(err) {
				continue
			}

			return nil, err
		}

		if !matches(action, opts) {
			continue
		}

		actions = append(actions, action)
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].CreatedAt.After(actions[j].CreatedAt)
	})

	return actions, nil
}

func (r *ActionRepository) Update(ctx context.Context, action *models.Action) error {
	n, err := r.p.client.Exists(ctx, actionKeyPrefix+action.ID).Result()
	if err != nil {
		return persistence.NewActionError("Update", action.ID, err)
	}

	if n == 0 {
		return persistence.NewActionError("Update", action.ID, persistence.ErrActionNotFound)
	}

	return r.write(ctx, "Update", action)
}

func (r *ActionRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.p.client.Del(ctx, actionKeyPrefix+id).Result()
	if err != nil {
		return persistence.NewActionError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewActionError("Delete", id, persistence.ErrActionNotFound)
	}

	if err := r.p.client.SRem(ctx, actionIndexKey, id).Err(); err != nil {
		return persistence.NewActionError("Delete", id, err)
	}

	return r.p.bump(ctx)
}

func (r *ActionRepository) DeleteByMeeting(ctx context.Context, meetingID string) error {
	actions, err := r.List(ctx, persistence.ListActionsOptions{
		MeetingID:       meetingID,
		IncludeArchived: true,
	})
	if err != nil {
		return err
	}

	for _, action := range actions {
		if err := r.Delete(ctx, action.ID); err != nil && !persistence.IsActionNotFound(err) {
			return err
		}
	}

	return nil
}

func (r *ActionRepository) write(ctx context.Context, op string, action *models.Action) error {
	data, err := json.Marshal(action)
	if err != nil {
		return persistence.NewActionError(op, action.ID, err)
	}

	pipe := r.p.client.TxPipeline()
	pipe.Set(ctx, actionKeyPrefix+action.ID, data, 0)
	pipe.SAdd(ctx, actionIndexKey, action.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewActionError(op, action.ID, err)
	}

	return r.p.bump(ctx)
}

func matches(action *models.Action, opts persistence.ListActionsOptions) bool {
	if !opts.IncludeArchived && action.Archived {
		return false
	}

	if opts.Status != nil && action.Status != *opts.Status {
		return false
	}

	if opts.MeetingID != "" && action.MeetingID != opts.MeetingID {
		return false
	}

	return true
}

// ArchiveRepository stores snapshots as JSON under recapd:archive:<id>.
type ArchiveRepository struct {
	p *Persistence
}

func (r *ArchiveRepository) Save(ctx context.Context, snap *models.ArchivedRecording) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}

	pipe := r.p.client.TxPipeline()
	pipe.Set(ctx, archiveKeyPrefix+snap.ID, data, 0)
	pipe.SAdd(ctx, archiveIndexKey, snap.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}

	return r.p.bump(ctx)
}

func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchivedRecording, error) {
	data, err := r.p.client.Get(ctx, archiveKeyPrefix+id).Bytes()
	if err == goredis.Nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	var snap models.ArchivedRecording
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}

	return &snap, nil
}

func (r *ArchiveRepository) List(ctx context.Context) ([]*models.ArchivedRecording, error) {
	ids, err := r.p.client.SMembers(ctx, archiveIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot ids: %w", err)
	}

	snaps := make([]*models.ArchivedRecording, 0, len(ids))

	for _, id := range ids {
		snap, err := r.GetByID(ctx, id)
		if err != nil {
			if persistence.IsSnapshotNotFound(err) {
				continue
			}

			return nil, err
		}

		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ArchivedAt.After(snaps[j].ArchivedAt)
	})

	return snaps, nil
}
