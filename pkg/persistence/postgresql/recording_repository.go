package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

const recordingColumns = `id, title, duration_seconds, audio_ref, transcript, summary,
	highlights, status, error, created_at, updated_at`

// RecordingRepository stores recordings in the recordings table.
type RecordingRepository struct {
	db *sql.DB
}

func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	highlights, err := marshalHighlights(rec.Highlights)
	if err != nil {
		return persistence.NewRecordingError("Create", rec.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recordings (`+recordingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Title, rec.DurationSeconds, rec.AudioRef, rec.Transcript, rec.Summary,
		highlights, rec.Status, rec.Error, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return persistence.NewRecordingError("Create", rec.ID, persistence.ErrRecordingExists)
		}

		return persistence.NewRecordingError("Create", rec.ID, err)
	}

	return bumpSeq(ctx, r.db)
}

func (r *RecordingRepository) GetByID(ctx context.Context, id string) (*models.Recording, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordingColumns+" FROM recordings WHERE id = $1", id)

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewRecordingError("GetByID", id, persistence.ErrRecordingNotFound)
	}

	if err != nil {
		return nil, persistence.NewRecordingError("GetByID", id, err)
	}

	return rec, nil
}

func (r *RecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordingColumns+" FROM recordings ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recordings := make([]*models.Recording, 0)

	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}

		recordings = append(recordings, rec)
	}

	return recordings, rows.Err()
}

func (r *RecordingRepository) Update(ctx context.Context, rec *models.Recording) error {
	highlights, err := marshalHighlights(rec.Highlights)
	if err != nil {
		return persistence.NewRecordingError("Update", rec.ID, err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE recordings
		SET title = $2, duration_seconds = $3, audio_ref = $4, transcript = $5,
			summary = $6, highlights = $7, status = $8, error = $9, updated_at = $10
		WHERE id = $1`,
		rec.ID, rec.Title, rec.DurationSeconds, rec.AudioRef, rec.Transcript,
		rec.Summary, highlights, rec.Status, rec.Error, rec.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRecordingError("Update", rec.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRecordingError("Update", rec.ID, err)
	}

	if affected == 0 {
		return persistence.NewRecordingError("Update", rec.ID, persistence.ErrRecordingNotFound)
	}

	return bumpSeq(ctx, r.db)
}

func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM recordings WHERE id = $1", id)
	if err != nil {
		return persistence.NewRecordingError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRecordingError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewRecordingError("Delete", id, persistence.ErrRecordingNotFound)
	}

	return bumpSeq(ctx, r.db)
}

func (r *RecordingRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM recordings WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recording %s: %w", id, err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*models.Recording, error) {
	var (
		rec        models.Recording
		highlights []byte
	)

	err := row.Scan(
		&rec.ID, &rec.Title, &rec.DurationSeconds, &rec.AudioRef, &rec.Transcript,
		&rec.Summary, &highlights, &rec.Status, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &rec.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights: %w", err)
		}
	}

	return &rec, nil
}

func marshalHighlights(highlights []string) ([]byte, error) {
	if highlights == nil {
		return nil, nil
	}

	data, err := json.Marshal(highlights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode highlights: %w", err)
	}

	return data, nil
}
