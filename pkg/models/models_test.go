package models

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecording_Validation_Valid(t *testing.T) {
	rec := &Recording{
		ID:              "rec-123",
		Title:           "Weekly sync",
		DurationSeconds: 120,
		Status:          RecordingStatusProcessing,
	}

	validate := validator.New()
	assert.NoError(t, validate.Struct(rec))
}

func TestRecording_Validation_MissingTitle(t *testing.T) {
	rec := &Recording{
		ID:              "rec-123",
		DurationSeconds: 120,
		Status:          RecordingStatusProcessing,
	}

	validate := validator.New()
	err := validate.Struct(rec)
	require.Error(t, err)

	var found bool

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	for _, fieldErr := range validationErrors {
		if fieldErr.Field() == "Title" && fieldErr.Tag() == "required" {
			found = true

			break
		}
	}

	assert.True(t, found, "Should have validation error for required Title field")
}

func TestRecording_Validation_MissingDuration(t *testing.T) {
	rec := &Recording{
		ID:     "rec-123",
		Title:  "Weekly sync",
		Status: RecordingStatusProcessing,
	}

	validate := validator.New()
	assert.Error(t, validate.Struct(rec))
}

func TestRecording_Terminal(t *testing.T) {
	testCases := []struct {
		status   RecordingStatus
		terminal bool
	}{
		{RecordingStatusProcessing, false},
		{RecordingStatusProcessed, true},
		{RecordingStatusFailed, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			rec := &Recording{Status: tc.status}
			assert.Equal(t, tc.terminal, rec.Terminal())
		})
	}
}

func TestAction_Validation_InvalidPriority(t *testing.T) {
	action := &Action{
		ID:       "act-1",
		Title:    "Follow up with the vendor",
		Priority: "critical",
		Status:   ActionStatusPending,
	}

	validate := validator.New()
	assert.Error(t, validate.Struct(action))
}

func TestAction_DisplayStatus(t *testing.T) {
	testCases := []struct {
		name    string
		status  ActionStatus
		opened  bool
		display ActionDisplayStatus
	}{
		{"not reviewed", ActionStatusNotReviewed, false, DisplayStatusNotReviewed},
		{"pending unopened", ActionStatusPending, false, DisplayStatusPending},
		{"pending opened reads as in progress", ActionStatusPending, true, DisplayStatusInProgress},
		{"completed", ActionStatusCompleted, true, DisplayStatusCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			action := &Action{Status: tc.status, HasBeenOpened: tc.opened}
			assert.Equal(t, tc.display, action.DisplayStatus())
		})
	}
}

func TestSnapshot_CopiesRecordingFields(t *testing.T) {
	transcript := "we agreed on the rollout plan"
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	archivedAt := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)

	rec := &Recording{
		ID:              "rec-9",
		Title:           "Rollout planning",
		DurationSeconds: 1800,
		Transcript:      &transcript,
		Highlights:      []string{"rollout plan agreed"},
		Status:          RecordingStatusProcessed,
		CreatedAt:       created,
	}

	snap := Snapshot("snap-1", rec, archivedAt)

	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, "rec-9", snap.RecordingID)
	assert.Equal(t, "Rollout planning", snap.Title)
	assert.Equal(t, 1800, snap.DurationSeconds)
	require.NotNil(t, snap.Transcript)
	assert.Equal(t, transcript, *snap.Transcript)
	assert.Equal(t, []string{"rollout plan agreed"}, snap.Highlights)
	assert.Equal(t, created, snap.CreatedAt)
	assert.Equal(t, archivedAt, snap.ArchivedAt)
}
