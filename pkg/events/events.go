// Package events defines event types and structures for recording and
// action lifecycle notifications.
package events

import (
	"time"

	"github.com/recapd/recapd/pkg/models"
)

type EventType string

// Topic is the single bus topic all lifecycle events flow through.
const Topic = "recapd.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Recording lifecycle events.
	RecordingQueuedEvent      EventType = "recording.queued"
	RecordingTranscribedEvent EventType = "recording.transcribed"
	RecordingSummarizedEvent  EventType = "recording.summarized"
	RecordingProcessedEvent   EventType = "recording.processed"
	RecordingFailedEvent      EventType = "recording.failed"
	RecordingArchivedEvent    EventType = "recording.archived"

	// Action lifecycle events.
	ActionCreatedEvent  EventType = "action.created"
	ActionArchivedEvent EventType = "action.archived"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	RecordingID string         `json:"recording_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type RecordingQueued struct {
	BaseEvent

	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	AudioRef        string `json:"audio_ref"`
}

func (e RecordingQueued) GetType() EventType {
	return RecordingQueuedEvent
}

type RecordingTranscribed struct {
	BaseEvent

	TranscriptChars int `json:"transcript_chars"`
}

func (e RecordingTranscribed) GetType() EventType {
	return RecordingTranscribedEvent
}

type RecordingSummarized struct {
	BaseEvent

	HighlightCount int `json:"highlight_count"`
}

func (e RecordingSummarized) GetType() EventType {
	return RecordingSummarizedEvent
}

type RecordingProcessed struct {
	BaseEvent

	ActionCount int           `json:"action_count"`
	Duration    time.Duration `json:"duration"`
}

func (e RecordingProcessed) GetType() EventType {
	return RecordingProcessedEvent
}

type RecordingFailed struct {
	BaseEvent

	Error    string        `json:"error"`
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

func (e RecordingFailed) GetType() EventType {
	return RecordingFailedEvent
}

type RecordingArchived struct {
	BaseEvent

	SnapshotID string `json:"snapshot_id"`
}

func (e RecordingArchived) GetType() EventType {
	return RecordingArchivedEvent
}

type ActionCreated struct {
	BaseEvent

	ActionID string                `json:"action_id"`
	Title    string                `json:"title"`
	Priority models.ActionPriority `json:"priority"`
	Source   string                `json:"source"`
}

func (e ActionCreated) GetType() EventType {
	return ActionCreatedEvent
}

type ActionArchived struct {
	BaseEvent

	ActionID string `json:"action_id"`
}

func (e ActionArchived) GetType() EventType {
	return ActionArchivedEvent
}
