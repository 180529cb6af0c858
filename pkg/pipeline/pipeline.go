// Package pipeline orchestrates the asynchronous journey of a recording:
// audio ingest, transcription, summarization and action extraction.
//
// Ingest is synchronous and cheap; everything provider-facing runs in a
// background task. A recording is written incrementally as stages finish,
// so readers always see a valid prefix of transcript, summary, actions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/recapd/recapd/pkg/artifacts"
	"github.com/recapd/recapd/pkg/eventbus"
	"github.com/recapd/recapd/pkg/events"
	"github.com/recapd/recapd/pkg/extractor"
	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/providers"
	"github.com/recapd/recapd/pkg/providers/summarization"
	"github.com/recapd/recapd/pkg/providers/transcription"
)

// Transcriber converts an audio stream into text. The source is invoked
// once per attempt so retries always read a fresh stream.
type Transcriber interface {
	Transcribe(ctx context.Context, source transcription.AudioSource) (string, error)
}

// Pipeline runs the ingest-to-insights flow for recordings.
type Pipeline struct {
	persistence persistence.Persistence
	artifacts   artifacts.Store
	transcriber Transcriber
	summarizer  summarization.Client
	bus         eventbus.EventBus
	logger      *slog.Logger
	validator   *validator.Validate
	now         func() time.Time

	mu       sync.Mutex
	inflight map[string]*Task
}

// New creates a pipeline. All collaborators are required.
func New(
	p persistence.Persistence,
	store artifacts.Store,
	transcriber Transcriber,
	summarizer summarization.Client,
	bus eventbus.EventBus,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		persistence: p,
		artifacts:   store,
		transcriber: transcriber,
		summarizer:  summarizer,
		bus:         bus,
		logger:      logger.With("module", "pipeline"),
		validator:   validator.New(),
		now:         time.Now,
		inflight:    make(map[string]*Task),
	}
}

// IngestRequest carries one uploaded recording.
type IngestRequest struct {
	Title           string
	DurationSeconds int
	Audio           io.Reader
}

var ErrNoAudio = errors.New("audio stream is required")

// Ingest validates the upload, persists the audio and the recording row,
// and schedules background processing. It returns as soon as the
// recording exists with status processing; no row is created when any
// step fails.
func (pl *Pipeline) Ingest(ctx context.Context, req IngestRequest) (string, error) {
	if req.Audio == nil {
		return "", ErrNoAudio
	}

	rec := &models.Recording{
		ID:              uuid.New().String(),
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		Status:          models.RecordingStatusProcessing,
		CreatedAt:       pl.now().UTC(),
		UpdatedAt:       pl.now().UTC(),
	}

	if err := pl.validator.Struct(rec); err != nil {
		return "", fmt.Errorf("invalid recording: %w", err)
	}

	ref, err := pl.artifacts.Put(ctx, rec.ID, req.Audio)
	if err != nil {
		return "", fmt.Errorf("failed to store audio: %w", err)
	}

	if err := pl.artifacts.Verify(ctx, ref); err != nil {
		pl.discardArtifact(ctx, ref)

		return "", fmt.Errorf("stored audio is not readable: %w", err)
	}

	rec.AudioRef = ref

	if err := pl.persistence.Recordings().Create(ctx, rec); err != nil {
		pl.discardArtifact(ctx, ref)

		return "", fmt.Errorf("failed to create recording: %w", err)
	}

	pl.publish(ctx, rec.ID, events.RecordingQueued{
		BaseEvent:       pl.baseEvent(events.RecordingQueuedEvent, rec.ID),
		Title:           rec.Title,
		DurationSeconds: rec.DurationSeconds,
		AudioRef:        rec.AudioRef,
	})

	pl.Start(rec.ID)

	return rec.ID, nil
}

// Start schedules background processing for the recording. At most one
// task runs per recording: starting an id that is already in flight
// returns the existing task.
func (pl *Pipeline) Start(recordingID string) *Task {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if task, ok := pl.inflight[recordingID]; ok {
		return task
	}

	task := newTask(recordingID)
	pl.inflight[recordingID] = task

	go pl.run(task)

	return task
}

func (pl *Pipeline) run(task *Task) {
	// Tasks outlive the ingest request, so they carry their own context.
	ctx := context.Background()

	err := pl.process(ctx, task.RecordingID)

	pl.mu.Lock()
	delete(pl.inflight, task.RecordingID)
	pl.mu.Unlock()

	task.finish(err)
}

func (pl *Pipeline) process(ctx context.Context, recordingID string) error {
	logger := pl.logger.With("recording_id", recordingID)
	started := pl.now()

	rec, err := pl.persistence.Recordings().GetByID(ctx, recordingID)
	if err != nil {
		if persistence.IsRecordingNotFound(err) {
			logger.Info("Recording disappeared before processing started")

			return nil
		}

		return fmt.Errorf("failed to load recording: %w", err)
	}

	// Status never reverts once terminal, so a rescheduled task for an
	// already finished recording has nothing to do.
	if rec.Terminal() {
		return nil
	}

	source := func(ctx context.Context) (io.ReadCloser, error) {
		return pl.artifacts.Open(ctx, rec.AudioRef)
	}

	transcript, err := pl.transcriber.Transcribe(ctx, source)
	if err != nil {
		return pl.fail(ctx, logger, recordingID, "transcription", started, err)
	}

	alive, err := pl.updateRecording(ctx, recordingID, func(r *models.Recording) {
		r.Transcript = &transcript
	})
	if err != nil {
		return err
	}

	if !alive {
		logger.Info("Recording deleted mid-flight, dropping transcript")

		return nil
	}

	pl.publish(ctx, recordingID, events.RecordingTranscribed{
		BaseEvent:       pl.baseEvent(events.RecordingTranscribedEvent, recordingID),
		TranscriptChars: len(transcript),
	})

	result, err := pl.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return pl.fail(ctx, logger, recordingID, "summarization", started, err)
	}

	alive, err = pl.updateRecording(ctx, recordingID, func(r *models.Recording) {
		r.Summary = &result.Summary
		r.Highlights = result.Highlights
	})
	if err != nil {
		return err
	}

	if !alive {
		logger.Info("Recording deleted mid-flight, dropping summary")

		return nil
	}

	pl.publish(ctx, recordingID, events.RecordingSummarized{
		BaseEvent:      pl.baseEvent(events.RecordingSummarizedEvent, recordingID),
		HighlightCount: len(result.Highlights),
	})

	created, err := pl.createActions(ctx, logger, recordingID, transcript)
	if err != nil {
		return err
	}

	if created < 0 {
		return nil
	}

	alive, err = pl.updateRecording(ctx, recordingID, func(r *models.Recording) {
		r.Status = models.RecordingStatusProcessed
		r.Error = nil
	})
	if err != nil {
		return err
	}

	if !alive {
		return nil
	}

	pl.publish(ctx, recordingID, events.RecordingProcessed{
		BaseEvent:   pl.baseEvent(events.RecordingProcessedEvent, recordingID),
		ActionCount: created,
		Duration:    pl.now().Sub(started),
	})

	logger.Info("Recording processed", "actions", created)

	return nil
}

// createActions turns extractor candidates into stored actions. It
// returns -1 when the recording was deleted mid-flight.
func (pl *Pipeline) createActions(ctx context.Context, logger *slog.Logger, recordingID, transcript string) (int, error) {
	candidates := extractor.Extract(transcript)
	created := 0

	for _, candidate := range candidates {
		exists, err := pl.persistence.Recordings().Exists(ctx, recordingID)
		if err != nil {
			return 0, fmt.Errorf("failed to check recording: %w", err)
		}

		if !exists {
			logger.Info("Recording deleted mid-flight, dropping extracted actions")

			return -1, nil
		}

		now := pl.now().UTC()
		action := &models.Action{
			ID:        uuid.New().String(),
			Title:     candidate.Title,
			MeetingID: recordingID,
			DueDate:   now.Add(models.DefaultDueIn),
			Priority:  candidate.Priority,
			Status:    models.ActionStatusNotReviewed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := pl.persistence.Actions().Create(ctx, action); err != nil {
			return 0, fmt.Errorf("failed to create action: %w", err)
		}

		created++

		pl.publish(ctx, recordingID, events.ActionCreated{
			BaseEvent: pl.baseEvent(events.ActionCreatedEvent, recordingID),
			ActionID:  action.ID,
			Title:     action.Title,
			Priority:  action.Priority,
			Source:    "extractor",
		})
	}

	return created, nil
}

// fail marks the recording failed with a human-readable reason,
// preserving whatever the earlier stages already wrote.
func (pl *Pipeline) fail(ctx context.Context, logger *slog.Logger, recordingID, stage string, started time.Time, cause error) error {
	message := failureMessage(stage, cause)

	alive, err := pl.updateRecording(ctx, recordingID, func(r *models.Recording) {
		r.Status = models.RecordingStatusFailed
		r.Error = &message
	})
	if err != nil {
		return err
	}

	if !alive {
		logger.Info("Recording deleted mid-flight, dropping failure", "stage", stage)

		return nil
	}

	pl.publish(ctx, recordingID, events.RecordingFailed{
		BaseEvent: pl.baseEvent(events.RecordingFailedEvent, recordingID),
		Error:     message,
		Stage:     stage,
		Duration:  pl.now().Sub(started),
	})

	logger.Error("Recording processing failed", "stage", stage, "error", cause)

	return fmt.Errorf("%s: %w", stage, cause)
}

func failureMessage(stage string, cause error) string {
	if providers.IsRateLimitExhausted(cause) {
		return fmt.Sprintf("%s provider rate limit exhausted: %v", stage, cause)
	}

	return fmt.Sprintf("%s failed: %v", stage, cause)
}

// updateRecording applies mutate to the stored recording. It reports
// alive=false without error when the recording no longer exists, making
// writes after a delete silent no-ops.
func (pl *Pipeline) updateRecording(ctx context.Context, recordingID string, mutate func(*models.Recording)) (bool, error) {
	rec, err := pl.persistence.Recordings().GetByID(ctx, recordingID)
	if err != nil {
		if persistence.IsRecordingNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to load recording: %w", err)
	}

	mutate(rec)
	rec.UpdatedAt = pl.now().UTC()

	if err := pl.persistence.Recordings().Update(ctx, rec); err != nil {
		if persistence.IsRecordingNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to update recording: %w", err)
	}

	return true, nil
}

func (pl *Pipeline) baseEvent(eventType events.EventType, recordingID string) events.BaseEvent {
	return events.BaseEvent{
		ID:          pl.bus.GenerateID(),
		Type:        eventType,
		Timestamp:   pl.now().UTC(),
		RecordingID: recordingID,
	}
}

// publish sends a lifecycle event. Delivery problems are logged, never
// allowed to fail the pipeline itself.
func (pl *Pipeline) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := pl.bus.Publish(ctx, key, event); err != nil {
		pl.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (pl *Pipeline) discardArtifact(ctx context.Context, ref string) {
	if err := pl.artifacts.Delete(ctx, ref); err != nil && !errors.Is(err, artifacts.ErrArtifactNotFound) {
		pl.logger.Warn("Failed to discard artifact", "ref", ref, "error", err)
	}
}
