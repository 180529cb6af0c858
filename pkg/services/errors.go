// Package services provides the business operations on recordings and
// actions, plus standardized error types for the web layer to map.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidStatus   = errors.New("invalid action status")
	ErrInvalidPriority = errors.New("invalid action priority")
	ErrTitleRequired   = errors.New("title is required")
	ErrNoIDs           = errors.New("at least one id is required")

	// State machine conflicts (409 Conflict).
	ErrNotCompleted = errors.New("action is not completed")
)

// ErrArchiveVerification indicates an archive write could not be
// confirmed by read-back even after a retry (500-class).
var ErrArchiveVerification = errors.New("archive could not be verified")

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrNoIDs)
}

// IsConflictError checks if an error is a state machine conflict that
// should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrNotCompleted)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
