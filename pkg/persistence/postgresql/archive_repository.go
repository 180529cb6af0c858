package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

const archiveColumns = `id, recording_id, title, duration_seconds, transcript,
	highlights, created_at, archived_at`

// ArchiveRepository stores recording snapshots in the archived_recordings
// table. Rows are insert-only.
type ArchiveRepository struct {
	db *sql.DB
}

func (r *ArchiveRepository) Save(ctx context.Context, snap *models.ArchivedRecording) error {
	highlights, err := marshalHighlights(snap.Highlights)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO archived_recordings (`+archiveColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		snap.ID, snap.RecordingID, snap.Title, snap.DurationSeconds,
		snap.Transcript, highlights, snap.CreatedAt, snap.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}

	return bumpSeq(ctx, r.db)
}

func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchivedRecording, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+archiveColumns+" FROM archived_recordings WHERE id = $1", id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", id, persistence.ErrSnapshotNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	return snap, nil
}

func (r *ArchiveRepository) List(ctx context.Context) ([]*models.ArchivedRecording, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+archiveColumns+" FROM archived_recordings ORDER BY archived_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snaps := make([]*models.ArchivedRecording, 0)

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

func scanSnapshot(row rowScanner) (*models.ArchivedRecording, error) {
	var (
		snap       models.ArchivedRecording
		highlights []byte
	)

	err := row.Scan(
		&snap.ID, &snap.RecordingID, &snap.Title, &snap.DurationSeconds,
		&snap.Transcript, &highlights, &snap.CreatedAt, &snap.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &snap.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights: %w", err)
		}
	}

	return &snap, nil
}
