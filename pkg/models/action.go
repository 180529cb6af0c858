package models

import "time"

// ActionStatus represents the stored lifecycle state of an action.
type ActionStatus string

const (
	ActionStatusNotReviewed ActionStatus = "not_reviewed" // Extractor-created, untouched
	ActionStatusPending     ActionStatus = "pending"
	ActionStatusCompleted   ActionStatus = "completed"
)

// ActionDisplayStatus is the status as presented to clients. It adds
// in_progress, which is derived from pending + HasBeenOpened and is never
// stored.
type ActionDisplayStatus string

const (
	DisplayStatusNotReviewed ActionDisplayStatus = "not_reviewed"
	DisplayStatusPending     ActionDisplayStatus = "pending"
	DisplayStatusInProgress  ActionDisplayStatus = "in_progress"
	DisplayStatusCompleted   ActionDisplayStatus = "completed"
)

// ActionPriority classifies how urgent an action is.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// DefaultDueIn is the due date offset applied when an action is created
// without an explicit due date.
const DefaultDueIn = 7 * 24 * time.Hour

// Action is a discrete task derived from, or manually attached to, a
// recording.
//
// Invariant: Archived implies Status == completed and CompletedAt set.
type Action struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"       validate:"required,min=1"`
	Notes         string         `json:"notes,omitempty"`
	MeetingID     string         `json:"meeting_id,omitempty"` // Owning recording; may dangle after the recording is archived
	DueDate       time.Time      `json:"due_date"`
	Priority      ActionPriority `json:"priority"    validate:"required,oneof=high medium low"`
	Status        ActionStatus   `json:"status"      validate:"required,oneof=not_reviewed pending completed"`
	HasBeenOpened bool           `json:"has_been_opened"`
	Archived      bool           `json:"archived"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DisplayStatus derives the client-facing status. Pending actions that
// have been opened read as in_progress; nothing extra is stored.
func (a *Action) DisplayStatus() ActionDisplayStatus {
	if a.Status == ActionStatusPending && a.HasBeenOpened {
		return DisplayStatusInProgress
	}

	return ActionDisplayStatus(a.Status)
}
