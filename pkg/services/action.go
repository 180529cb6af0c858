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

// Action handles the action item lifecycle. Each public method is a
// named operation and writes its own field group atomically; concurrent
// edits of the same action are last-write-wins at that granularity.
type Action struct {
	persistence persistence.Persistence
	bus         eventbus.EventBus
	logger      *slog.Logger
	now         func() time.Time
}

// NewAction creates a new action service.
func NewAction(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *Action {
	return &Action{
		persistence: p,
		bus:         bus,
		logger:      logger.With("module", "action_service"),
		now:         time.Now,
	}
}

// CreateActionRequest represents the request to create an action by hand.
type CreateActionRequest struct {
	Title     string
	Notes     string
	MeetingID string
	DueDate   *time.Time
	Priority  models.ActionPriority
}

// Create stores a user-created action. Unlike extractor output it starts
// as pending: the user has self-evidently seen it.
func (s *Action) Create(ctx context.Context, req CreateActionRequest) (*models.Action, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	if !validPriority(priority) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	now := s.now().UTC()

	dueDate := now.Add(models.DefaultDueIn)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	action := &models.Action{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Notes:     req.Notes,
		MeetingID: req.MeetingID,
		DueDate:   dueDate,
		Priority:  priority,
		Status:    models.ActionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persistence.Actions().Create(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}

	s.publish(ctx, action.MeetingID, events.ActionCreated{
		BaseEvent: events.BaseEvent{
			ID:          s.bus.GenerateID(),
			Type:        events.ActionCreatedEvent,
			Timestamp:   now,
			RecordingID: action.MeetingID,
		},
		ActionID: action.ID,
		Title:    action.Title,
		Priority: action.Priority,
		Source:   "user",
	})

	return action, nil
}

// Get returns one action.
func (s *Action) Get(ctx context.Context, id string) (*models.Action, error) {
	return s.persistence.Actions().GetByID(ctx, id)
}

// List returns actions matching the filter, most recent first.
func (s *Action) List(ctx context.Context, opts persistence.ListActionsOptions) ([]*models.Action, error) {
	return s.persistence.Actions().List(ctx, opts)
}

// MarkReviewed records that the user opened the action. Unreviewed
// actions move to pending; the call is idempotent for everything else.
func (s *Action) MarkReviewed(ctx context.Context, id string) (*models.Action, error) {
	return s.mutate(ctx, id, func(action *models.Action) {
		action.HasBeenOpened = true

		if action.Status == models.ActionStatusNotReviewed {
			action.Status = models.ActionStatusPending
		}
	})
}

// Complete marks the action done. Completing an already completed action
// keeps the original completion time.
func (s *Action) Complete(ctx context.Context, id string) (*models.Action, error) {
	return s.mutate(ctx, id, func(action *models.Action) {
		if action.Status == models.ActionStatusCompleted {
			return
		}

		completedAt := s.now().UTC()
		action.Status = models.ActionStatusCompleted
		action.CompletedAt = &completedAt
	})
}

// Reopen puts a completed action back into pending, clearing its
// completion time and forcing it out of the archive.
func (s *Action) Reopen(ctx context.Context, id string) (*models.Action, error) {
	action, err := s.persistence.Actions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if action.Status != models.ActionStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCompleted, action.Status)
	}

	return s.mutate(ctx, id, func(action *models.Action) {
		action.Status = models.ActionStatusPending
		action.CompletedAt = nil
		action.Archived = false
	})
}

// Archive moves the action into the archived set. The four fields it
// touches change together; an already completed action keeps its original
// completion time. Afterwards the write is verified by read-back with one
// automatic retry. A still-unverified archive is reported to the caller
// and logged, leaving the last write in place.
func (s *Action) Archive(ctx context.Context, id string) (*models.Action, error) {
	archive := func() (*models.Action, error) {
		return s.mutate(ctx, id, func(action *models.Action) {
			if action.CompletedAt == nil {
				completedAt := s.now().UTC()
				action.CompletedAt = &completedAt
			}

			action.Archived = true
			action.Status = models.ActionStatusCompleted
			action.HasBeenOpened = true
		})
	}

	if _, err := archive(); err != nil {
		return nil, err
	}

	verified, err := s.verifyArchived(ctx, id)
	if err != nil {
		return nil, err
	}

	if verified != nil {
		s.publishArchived(ctx, verified)

		return verified, nil
	}

	s.logger.Warn("Archive read-back failed, retrying once", "action_id", id)

	if _, err := archive(); err != nil {
		return nil, err
	}

	verified, err = s.verifyArchived(ctx, id)
	if err != nil {
		return nil, err
	}

	if verified == nil {
		s.logger.Error("Archive could not be verified after retry", "action_id", id)

		return nil, fmt.Errorf("action %s: %w", id, ErrArchiveVerification)
	}

	s.publishArchived(ctx, verified)

	return verified, nil
}

// verifyArchived reads the action back and returns it only when the
// archived flag stuck.
func (s *Action) verifyArchived(ctx context.Context, id string) (*models.Action, error) {
	action, err := s.persistence.Actions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !action.Archived {
		return nil, nil
	}

	return action, nil
}

// SaveNotes updates title and notes only. Status, archived and
// completion time are never touched here, whatever state the action is in.
func (s *Action) SaveNotes(ctx context.Context, id, title, notes string) (*models.Action, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	return s.mutate(ctx, id, func(action *models.Action) {
		action.Title = title
		action.Notes = notes
	})
}

// UpdateActionRequest represents a general field update. Nil fields are
// left unchanged; Status moves only when explicitly carried.
type UpdateActionRequest struct {
	Title    *string
	Notes    *string
	DueDate  *time.Time
	Priority *models.ActionPriority
	Status   *models.ActionStatus
}

func (r UpdateActionRequest) validate() error {
	if r.Title != nil && *r.Title == "" {
		return ErrTitleRequired
	}

	if r.Priority != nil && !validPriority(*r.Priority) {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *r.Priority)
	}

	if r.Status != nil && !validStatus(*r.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *r.Status)
	}

	return nil
}

// Update applies a general field update.
func (s *Action) Update(ctx context.Context, id string, req UpdateActionRequest) (*models.Action, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(action *models.Action) {
		applyUpdate(action, req, s.now().UTC())
	})
}

// Delete removes the action irreversibly.
func (s *Action) Delete(ctx context.Context, id string) error {
	return s.persistence.Actions().Delete(ctx, id)
}

// BatchItem is the per-id outcome of a batch update.
type BatchItem struct {
	ID     string
	Action *models.Action
	Err    error
}

// BatchUpdate applies the same update to each id independently. A
// missing or failing id shows up in its item; it never aborts the rest.
func (s *Action) BatchUpdate(ctx context.Context, ids []string, req UpdateActionRequest) ([]BatchItem, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(ids))

	for _, id := range ids {
		action, err := s.mutate(ctx, id, func(action *models.Action) {
			applyUpdate(action, req, s.now().UTC())
		})

		items = append(items, BatchItem{ID: id, Action: action, Err: err})
	}

	return items, nil
}

func applyUpdate(action *models.Action, req UpdateActionRequest, now time.Time) {
	if req.Title != nil {
		action.Title = *req.Title
	}

	if req.Notes != nil {
		action.Notes = *req.Notes
	}

	if req.DueDate != nil {
		action.DueDate = *req.DueDate
	}

	if req.Priority != nil {
		action.Priority = *req.Priority
	}

	if req.Status != nil && *req.Status != action.Status {
		action.Status = *req.Status

		if *req.Status == models.ActionStatusCompleted {
			action.CompletedAt = &now
		} else {
			// Archived actions are always completed; moving out of
			// completed moves out of the archive too.
			action.CompletedAt = nil
			action.Archived = false
		}
	}
}

// mutate loads, mutates and stores the action as one named operation.
func (s *Action) mutate(ctx context.Context, id string, fn func(*models.Action)) (*models.Action, error) {
	action, err := s.persistence.Actions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fn(action)
	action.UpdatedAt = s.now().UTC()

	if err := s.persistence.Actions().Update(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to update action: %w", err)
	}

	return action, nil
}

func (s *Action) publishArchived(ctx context.Context, action *models.Action) {
	s.publish(ctx, action.MeetingID, events.ActionArchived{
		BaseEvent: events.BaseEvent{
			ID:          s.bus.GenerateID(),
			Type:        events.ActionArchivedEvent,
			Timestamp:   s.now().UTC(),
			RecordingID: action.MeetingID,
		},
		ActionID: action.ID,
	})
}

func (s *Action) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := s.bus.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func validPriority(p models.ActionPriority) bool {
	switch p {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return true
	default:
		return false
	}
}

func validStatus(s models.ActionStatus) bool {
	switch s {
	case models.ActionStatusNotReviewed, models.ActionStatusPending, models.ActionStatusCompleted:
		return true
	default:
		return false
	}
}
