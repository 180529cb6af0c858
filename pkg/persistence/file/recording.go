package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

const recordingsDir = "recordings"

// RecordingRepository stores recordings as JSON files under
// root/recordings/<id>.json.
type RecordingRepository struct {
	p *Persistence
}

func (r *RecordingRepository) path(id string) string {
	return filepath.Join(r.p.root, recordingsDir, id+".json")
}

func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	exists, err := r.Exists(ctx, rec.ID)
	if err != nil {
		return err
	}

	if exists {
		return persistence.NewRecordingError("Create", rec.ID, persistence.ErrRecordingExists)
	}

	return r.write("Create", rec)
}

func (r *RecordingRepository) GetByID(_ context.Context, id string) (*models.Recording, error) {
	data, err := os.ReadFile(r.path(id))
	if os.IsNotExist(err) {
		return nil, persistence.NewRecordingError("GetByID", id, persistence.ErrRecordingNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read recording %s: %w", id, err)
	}

	var rec models.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode recording %s: %w", id, err)
	}

	return &rec, nil
}

func (r *RecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	dir := filepath.Join(r.p.root, recordingsDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.Recording{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list recording files: %w", err)
	}

	recordings := make([]*models.Recording, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		rec, err := r.GetByID(ctx, id)
		if err != nil {
			// A file deleted between glob and read is not an error.
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

	return r.write("Update", rec)
}

func (r *RecordingRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if os.IsNotExist(err) {
		return persistence.NewRecordingError("Delete", id, persistence.ErrRecordingNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", id, err)
	}

	return r.p.bump()
}

func (r *RecordingRepository) Exists(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(r.path(id))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to stat recording %s: %w", id, err)
	}

	return true, nil
}

func (r *RecordingRepository) write(op string, rec *models.Recording) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return persistence.NewRecordingError(op, rec.ID, err)
	}

	if err := writeAtomic(r.path(rec.ID), data); err != nil {
		return persistence.NewRecordingError(op, rec.ID, err)
	}

	return r.p.bump()
}
