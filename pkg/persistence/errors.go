// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRecordingNotFound indicates a recording was not found by the given identifier.
	ErrRecordingNotFound = errors.New("recording not found")

	// ErrActionNotFound indicates an action was not found by the given identifier.
	ErrActionNotFound = errors.New("action not found")

	// ErrSnapshotNotFound indicates an archived recording snapshot was not found.
	ErrSnapshotNotFound = errors.New("archived recording not found")

	// ErrRecordingExists indicates a recording with the same identifier already exists.
	ErrRecordingExists = errors.New("recording already exists")

	// ErrActionExists indicates an action with the same identifier already exists.
	ErrActionExists = errors.New("action already exists")
)

// RecordingError wraps recording-related errors with operation context.
type RecordingError struct {
	Op          string // Operation being performed (e.g., "GetByID", "Update", "Delete")
	RecordingID string
	Err         error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("%s operation failed for recording %s: %v", e.Op, e.RecordingID, e.Err)
}

func (e *RecordingError) Unwrap() error {
	return e.Err
}

func (e *RecordingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecordingError creates a new recording error with context.
func NewRecordingError(op, recordingID string, err error) *RecordingError {
	return &RecordingError{
		Op:          op,
		RecordingID: recordingID,
		Err:         err,
	}
}

// ActionError wraps action-related errors with operation context.
type ActionError struct {
	Op       string
	ActionID string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s operation failed for action %s: %v", e.Op, e.ActionID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func (e *ActionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewActionError creates a new action error with context.
func NewActionError(op, actionID string, err error) *ActionError {
	return &ActionError{
		Op:       op,
		ActionID: actionID,
		Err:      err,
	}
}

// IsRecordingNotFound checks if an error indicates a recording was not found.
func IsRecordingNotFound(err error) bool {
	return errors.Is(err, ErrRecordingNotFound)
}

// IsActionNotFound checks if an error indicates an action was not found.
func IsActionNotFound(err error) bool {
	return errors.Is(err, ErrActionNotFound)
}

// IsSnapshotNotFound checks if an error indicates an archive snapshot was not found.
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return IsRecordingNotFound(err) || IsActionNotFound(err) || IsSnapshotNotFound(err)
}
