package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

const actionColumns = `id, title, notes, meeting_id, due_date, priority, status,
	has_been_opened, archived, completed_at, created_at, updated_at`

// ActionRepository stores actions in the actions table.
type ActionRepository struct {
	db *sql.DB
}

func (r *ActionRepository) Create(ctx context.Context, action *models.Action) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actions (`+actionColumns+`)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)`,
		action.ID, action.Title, action.Notes, action.MeetingID, action.DueDate,
		action.Priority, action.Status, action.HasBeenOpened, action.Archived,
		action.CompletedAt, action.CreatedAt, action.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return persistence.NewActionError("Create", action.ID, persistence.ErrActionExists)
		}

		return persistence.NewActionError("Create", action.ID, err)
	}

	return bumpSeq(ctx, r.db)
}

func (r *ActionRepository) GetByID(ctx context.Context, id string) (*models.Action, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+actionColumns+" FROM actions WHERE id = $1", id)

	action, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewActionError("GetByID", id, persistence.ErrActionNotFound)
	}

	if err != nil {
		return nil, persistence.NewActionError("GetByID", id, err)
	}

	return action, nil
}

func (r *ActionRepository) List(ctx context.Context, opts persistence.ListActionsOptions) ([]*models.Action, error) {
	query := "SELECT " + actionColumns + " FROM actions WHERE 1=1"
	args := make([]any, 0, 3)

	if !opts.IncludeArchived {
		query += " AND archived = false"
	}

	if opts.Status != nil {
		args = append(args, *opts.Status)
		query += " AND status = $" + strconv.Itoa(len(args))
	}

	if opts.MeetingID != "" {
		args = append(args, opts.MeetingID)
		query += " AND meeting_id = $" + strconv.Itoa(len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actions := make([]*models.Action, 0)

	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		actions = append(actions, action)
	}

	return actions, rows.Err()
}

func (r *ActionRepository) Update(ctx context.Context, action *models.Action) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE actions
		SET title = $2, notes = $3, meeting_id = NULLIF($4, ''), due_date = $5,
			priority = $6, status = $7, has_been_opened = $8, archived = $9,
			completed_at = $10, updated_at = $11
		WHERE id = $1`,
		action.ID, action.Title, action.Notes, action.MeetingID, action.DueDate,
		action.Priority, action.Status, action.HasBeenOpened, action.Archived,
		action.CompletedAt, action.UpdatedAt,
	)
	if err != nil {
		return persistence.NewActionError("Update", action.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewActionError("Update", action.ID, err)
	}

	if affected == 0 {
		return persistence.NewActionError("Update", action.ID, persistence.ErrActionNotFound)
	}

	return bumpSeq(ctx, r.db)
}

func (r *ActionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM actions WHERE id = $1", id)
	if err != nil {
		return persistence.NewActionError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewActionError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewActionError("Delete", id, persistence.ErrActionNotFound)
	}

	return bumpSeq(ctx, r.db)
}

func (r *ActionRepository) DeleteByMeeting(ctx context.Context, meetingID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM actions WHERE meeting_id = $1", meetingID)
	if err != nil {
		return fmt.Errorf("failed to delete actions for meeting %s: %w", meetingID, err)
	}

	return bumpSeq(ctx, r.db)
}

func scanAction(row rowScanner) (*models.Action, error) {
	var (
		action    models.Action
		meetingID sql.NullString
	)

	err := row.Scan(
		&action.ID, &action.Title, &action.Notes, &meetingID, &action.DueDate,
		&action.Priority, &action.Status, &action.HasBeenOpened, &action.Archived,
		&action.CompletedAt, &action.CreatedAt, &action.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	action.MeetingID = meetingID.String

	return &action, nil
}
