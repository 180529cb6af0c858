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

const actionsDir = "actions"

// ActionRepository stores actions as JSON files under root/actions/<id>.json.
type ActionRepository struct {
	p *Persistence
}

func (r *ActionRepository) path(id string) string {
	return filepath.Join(r.p.root, actionsDir, id+".json")
}

func (r *ActionRepository) Create(_ context.Context, action *models.Action) error {
	if _, err := os.Stat(r.path(action.ID)); err == nil {
		return persistence.NewActionError("Create", action.ID, persistence.ErrActionExists)
	}

	return r.write("Create", action)
}

func (r *ActionRepository) GetByID(_ context.Context, id string) (*models.Action, error) {
	data, err := os.ReadFile(r.path(id))
	if os.IsNotExist(err) {
		return nil, persistence.NewActionError("GetByID", id, persistence.ErrActionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read action %s: %w", id, err)
	}

	var action models.Action
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("failed to decode action %s: %w", id, err)
	}

	return &action, nil
}

func (r *ActionRepository) List(ctx context.Context, opts persistence.ListActionsOptions) ([]*models.Action, error) {
	dir := filepath.Join(r.p.root, actionsDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.Action{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list action files: %w", err)
	}

	actions := make([]*models.Action, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

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

func (r *ActionRepository) Update(_ context.Context, action *models.Action) error {
	if _, err := os.Stat(r.path(action.ID)); os.IsNotExist(err) {
		return persistence.NewActionError("Update", action.ID, persistence.ErrActionNotFound)
	}

	return r.write("Update", action)
}

func (r *ActionRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if os.IsNotExist(err) {
		return persistence.NewActionError("Delete", id, persistence.ErrActionNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete action %s: %w", id, err)
	}

	return r.p.bump()
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

func (r *ActionRepository) write(op string, action *models.Action) error {
	data, err := json.MarshalIndent(action, "", "  ")
	if err != nil {
		return persistence.NewActionError(op, action.ID, err)
	}

	if err := writeAtomic(r.path(action.ID), data); err != nil {
		return persistence.NewActionError(op, action.ID, err)
	}

	return r.p.bump()
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
