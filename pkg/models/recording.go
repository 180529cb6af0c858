// Package models defines the core domain models for the recording-to-insights pipeline.
package models

import "time"

// RecordingStatus represents the processing state of a recording.
type RecordingStatus string

const (
	RecordingStatusProcessing RecordingStatus = "processing" // Pipeline still running
	RecordingStatusProcessed  RecordingStatus = "processed"  // Terminal, insights available
	RecordingStatusFailed     RecordingStatus = "failed"     // Terminal, Error populated
)

// Recording is an uploaded audio artifact together with everything the
// pipeline has derived from it so far. Transcript, summary and highlights
// fill in as the background task progresses; readers must treat any prefix
// of that sequence as a valid state.
type Recording struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"                 validate:"required,min=1"`
	DurationSeconds int             `json:"duration_seconds"      validate:"required,min=1"`
	AudioRef        string          `json:"audio_ref"` // Weak reference into the artifact store
	Transcript      *string         `json:"transcript,omitempty"`
	Summary         *string         `json:"summary,omitempty"`
	Highlights      []string        `json:"highlights,omitempty"`
	Status          RecordingStatus `json:"status"                validate:"required"`
	Error           *string         `json:"error,omitempty"` // Only meaningful when Status is failed
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Terminal reports whether the recording has left the processing state.
// Status never reverts once this is true.
func (r *Recording) Terminal() bool {
	return r.Status == RecordingStatusProcessed || r.Status == RecordingStatusFailed
}
