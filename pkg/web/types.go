// Package web provides the HTTP gateway for recordings and actions. All
// reads are side-effect free; polling clients drive their refresh off
// GET /changes.
package web

import (
	"time"

	"github.com/recapd/recapd/pkg/models"
)

// CreateActionRequest represents the request body for creating an action
// by hand.
type CreateActionRequest struct {
	Title     string     `json:"title"                validate:"required,min=1"`
	Notes     string     `json:"notes,omitempty"`
	MeetingID string     `json:"meeting_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  string     `json:"priority,omitempty"   validate:"omitempty,oneof=high medium low"`
}

// UpdateActionRequest represents a partial action update. Nil fields are
// left unchanged; status moves only when the request carries one.
type UpdateActionRequest struct {
	Title    *string    `json:"title,omitempty"    validate:"omitempty,min=1"`
	Notes    *string    `json:"notes,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority *string    `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
	Status   *string    `json:"status,omitempty"   validate:"omitempty,oneof=not_reviewed pending completed"`
}

// SaveNotesRequest represents the request body for the notes-only update.
type SaveNotesRequest struct {
	Title string `json:"title" validate:"required,min=1"`
	Notes string `json:"notes"`
}

// BatchUpdateRequest applies the same update to several actions at once.
type BatchUpdateRequest struct {
	IDs     []string            `json:"ids"     validate:"required,min=1"`
	Updates UpdateActionRequest `json:"updates"`
}

// ActionResponse is the client-facing view of an action. Status is the
// derived display status, so pending actions that have been opened read
// as in_progress.
type ActionResponse struct {
	ID            string                     `json:"id"`
	Title         string                     `json:"title"`
	Notes         string                     `json:"notes,omitempty"`
	MeetingID     string                     `json:"meeting_id,omitempty"`
	DueDate       time.Time                  `json:"due_date"`
	Priority      models.ActionPriority      `json:"priority"`
	Status        models.ActionDisplayStatus `json:"status"`
	HasBeenOpened bool                       `json:"has_been_opened"`
	Archived      bool                       `json:"archived"`
	CompletedAt   *time.Time                 `json:"completed_at,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// TransformActionResponse builds the client view of an action.
func TransformActionResponse(action *models.Action) ActionResponse {
	return ActionResponse{
		ID:            action.ID,
		Title:         action.Title,
		Notes:         action.Notes,
		MeetingID:     action.MeetingID,
		DueDate:       action.DueDate,
		Priority:      action.Priority,
		Status:        action.DisplayStatus(),
		HasBeenOpened: action.HasBeenOpened,
		Archived:      action.Archived,
		CompletedAt:   action.CompletedAt,
		CreatedAt:     action.CreatedAt,
		UpdatedAt:     action.UpdatedAt,
	}
}

// TransformActionResponses builds the client view of an action list.
func TransformActionResponses(actions []*models.Action) []ActionResponse {
	responses := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		responses = append(responses, TransformActionResponse(action))
	}

	return responses
}

// BatchItemResponse is the per-id outcome of a batch update.
type BatchItemResponse struct {
	ID     string          `json:"id"`
	Action *ActionResponse `json:"action,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// IngestResponse acknowledges an upload that is now processing.
type IngestResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ChangesResponse carries the change sequence polled by clients.
type ChangesResponse struct {
	Seq uint64 `json:"seq"`
}
