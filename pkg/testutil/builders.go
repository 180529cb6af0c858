// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/recapd/recapd/pkg/models"
)

// CreateTestRecording creates a test Recording with default values that
// can be overridden.
func CreateTestRecording(overrides ...func(*models.Recording)) *models.Recording {
	now := time.Now().UTC()
	rec := &models.Recording{
		ID:              uuid.New().String(),
		Title:           "Weekly Sync",
		DurationSeconds: 900,
		AudioRef:        "file://test-audio",
		Status:          models.RecordingStatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, override := range overrides {
		override(rec)
	}

	return rec
}

// WithProcessed fills in transcript, summary and highlights and marks
// the recording processed.
func WithProcessed(transcript, summary string, highlights ...string) func(*models.Recording) {
	return func(r *models.Recording) {
		r.Transcript = &transcript
		r.Summary = &summary
		r.Highlights = highlights
		r.Status = models.RecordingStatusProcessed
	}
}

// WithFailed marks the recording failed with the given reason.
func WithFailed(reason string) func(*models.Recording) {
	return func(r *models.Recording) {
		r.Status = models.RecordingStatusFailed
		r.Error = &reason
	}
}

// CreateTestAction creates a test Action with default values that can be
// overridden.
func CreateTestAction(overrides ...func(*models.Action)) *models.Action {
	now := time.Now().UTC()
	action := &models.Action{
		ID:        uuid.New().String(),
		Title:     "Send the minutes",
		DueDate:   now.Add(models.DefaultDueIn),
		Priority:  models.PriorityMedium,
		Status:    models.ActionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(action)
	}

	return action
}

// WithMeeting attaches the action to a recording.
func WithMeeting(meetingID string) func(*models.Action) {
	return func(a *models.Action) {
		a.MeetingID = meetingID
	}
}

// WithStatus sets the stored status.
func WithStatus(status models.ActionStatus) func(*models.Action) {
	return func(a *models.Action) {
		a.Status = status
	}
}

// WithCompleted marks the action completed at the given time.
func WithCompleted(at time.Time) func(*models.Action) {
	return func(a *models.Action) {
		a.Status = models.ActionStatusCompleted
		a.CompletedAt = &at
	}
}
