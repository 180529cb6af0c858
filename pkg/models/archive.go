package models

import "time"

// ArchivedRecording is an immutable snapshot of a recording taken at the
// moment of archival. The live recording is destroyed once the snapshot
// exists; the snapshot is never mutated afterwards.
type ArchivedRecording struct {
	ID              string    `json:"id"`
	RecordingID     string    `json:"recording_id"` // ID of the recording this snapshot was taken from
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds"`
	Transcript      *string   `json:"transcript,omitempty"`
	Highlights      []string  `json:"highlights,omitempty"`
	CreatedAt       time.Time `json:"created_at"`  // Creation time of the original recording
	ArchivedAt      time.Time `json:"archived_at"`
}

// Snapshot builds an archive snapshot of the given recording.
func Snapshot(id string, rec *Recording, now time.Time) *ArchivedRecording {
	return &ArchivedRecording{
		ID:              id,
		RecordingID:     rec.ID,
		Title:           rec.Title,
		DurationSeconds: rec.DurationSeconds,
		Transcript:      rec.Transcript,
		Highlights:      rec.Highlights,
		CreatedAt:       rec.CreatedAt,
		ArchivedAt:      now,
	}
}
