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

const archiveDir = "archive"

// ArchiveRepository stores immutable recording snapshots under
// root/archive/<id>.json.
type ArchiveRepository struct {
	p *Persistence
}

func (r *ArchiveRepository) path(id string) string {
	return filepath.Join(r.p.root, archiveDir, id+".json")
}

func (r *ArchiveRepository) Save(_ context.Context, snap *models.ArchivedRecording) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}

	if err := writeAtomic(r.path(snap.ID), data); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}

	return r.p.bump()
}

func (r *ArchiveRepository) GetByID(_ context.Context, id string) (*models.ArchivedRecording, error) {
	data, err := os.ReadFile(r.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot %s: %w", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}

	var snap models.ArchivedRecording
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}

	return &snap, nil
}

func (r *ArchiveRepository) List(ctx context.Context) ([]*models.ArchivedRecording, error) {
	dir := filepath.Join(r.p.root, archiveDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.ArchivedRecording{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot files: %w", err)
	}

	snaps := make([]*models.ArchivedRecording, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

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
