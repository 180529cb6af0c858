package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/pipeline"
	"github.com/recapd/recapd/pkg/services"
)

type APIHandlers struct {
	recordingService *services.Recording
	actionService    *services.Action
	pipeline         *pipeline.Pipeline
	persistence      persistence.Persistence
	validator        *validator.Validate
}

func NewAPIHandlers(
	recordingService *services.Recording,
	actionService *services.Action,
	pl *pipeline.Pipeline,
	p persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		recordingService: recordingService,
		actionService:    actionService,
		pipeline:         pl,
		persistence:      p,
		validator:        validate,
	}
}

// CreateRecording accepts a multipart upload (title, duration_seconds,
// audio) and answers as soon as the recording is queued.
func (h *APIHandlers) CreateRecording(c fiber.Ctx) error {
	title := c.FormValue("title")
	if title == "" {
		return badRequest(c, "title is required")
	}

	duration, err := strconv.Atoi(c.FormValue("duration_seconds"))
	if err != nil || duration < 1 {
		return badRequest(c, "duration_seconds must be a positive integer")
	}

	header, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "audio file is required")
	}

	audio, err := header.Open()
	if err != nil {
		return badRequest(c, "audio file is not readable")
	}

	defer func() { _ = audio.Close() }()

	id, err := h.pipeline.Ingest(c.Context(), pipeline.IngestRequest{
		Title:           title,
		DurationSeconds: duration,
		Audio:           audio,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		ID:     id,
		Status: string(models.RecordingStatusProcessing),
	})
}

func (h *APIHandlers) GetRecordings(c fiber.Ctx) error {
	recordings, err := h.recordingService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(recordings)
}

func (h *APIHandlers) GetArchivedRecordings(c fiber.Ctx) error {
	archived, err := h.recordingService.ListArchived(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(archived)
}

func (h *APIHandlers) GetRecording(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "recording id is required")
	}

	rec, err := h.recordingService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rec)
}

func (h *APIHandlers) ArchiveRecording(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "recording id is required")
	}

	snap, err := h.recordingService.Archive(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snap)
}

func (h *APIHandlers) DeleteRecording(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "recording id is required")
	}

	if err := h.recordingService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateAction(c fiber.Ctx) error {
	var req CreateActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c, "create_action")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	action, err := h.actionService.Create(c.Context(), services.CreateActionRequest{
		Title:     req.Title,
		Notes:     req.Notes,
		MeetingID: req.MeetingID,
		DueDate:   req.DueDate,
		Priority:  models.ActionPriority(req.Priority),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformActionResponse(action))
}

func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	opts := persistence.ListActionsOptions{
		MeetingID: c.Query("meeting_id"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ActionStatus(statusStr)
		opts.Status = &status
	}

	if includeStr := c.Query("include_archived"); includeStr != "" {
		include, err := strconv.ParseBool(includeStr)
		if err != nil {
			return badRequest(c, "include_archived must be a boolean")
		}

		opts.IncludeArchived = include
	}

	actions, err := h.actionService.List(c.Context(), opts)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TransformActionResponses(actions))
}

func (h *APIHandlers) GetAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "action id is required")
	}

	action, err := h.actionService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformActionResponse(action))
}

func (h *APIHandlers) UpdateAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "action id is required")
	}

	var req UpdateActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c, "update_action")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	action, err := h.actionService.Update(c.Context(), id, toServiceUpdate(req))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformActionResponse(action))
}

func (h *APIHandlers) SaveActionNotes(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "action id is required")
	}

	var req SaveNotesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c, "save_action_notes")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	action, err := h.actionService.SaveNotes(c.Context(), id, req.Title, req.Notes)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformActionResponse(action))
}

func (h *APIHandlers) lifecycle(c fiber.Ctx, op func(ctx fiber.Ctx, id string) (*models.Action, error)) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "action id is required")
	}

	action, err := op(c, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformActionResponse(action))
}

func (h *APIHandlers) ReviewAction(c fiber.Ctx) error {
	return h.lifecycle(c, func(c fiber.Ctx, id string) (*models.Action, error) {
		return h.actionService.MarkReviewed(c.Context(), id)
	})
}

func (h *APIHandlers) CompleteAction(c fiber.Ctx) error {
	return h.lifecycle(c, func(c fiber.Ctx, id string) (*models.Action, error) {
		return h.actionService.Complete(c.Context(), id)
	})
}

func (h *APIHandlers) ReopenAction(c fiber.Ctx) error {
	return h.lifecycle(c, func(c fiber.Ctx, id string) (*models.Action, error) {
		return h.actionService.Reopen(c.Context(), id)
	})
}

func (h *APIHandlers) ArchiveAction(c fiber.Ctx) error {
	return h.lifecycle(c, func(c fiber.Ctx, id string) (*models.Action, error) {
		return h.actionService.Archive(c.Context(), id)
	})
}

func (h *APIHandlers) DeleteAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "action id is required")
	}

	if err := h.actionService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) BatchUpdateActions(c fiber.Ctx) error {
	var req BatchUpdateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c, "batch_update_actions")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.actionService.BatchUpdate(c.Context(), req.IDs, toServiceUpdate(req.Updates))
	if err != nil {
		return handleServiceError(c, err)
	}

	responses := make([]BatchItemResponse, 0, len(items))

	for _, item := range items {
		response := BatchItemResponse{ID: item.ID}

		if item.Err != nil {
			response.Error = item.Err.Error()
		} else {
			action := TransformActionResponse(item.Action)
			response.Action = &action
		}

		responses = append(responses, response)
	}

	return c.JSON(responses)
}

// GetChanges answers the lightweight poll: one monotonically increasing
// number bumped by every recording or action write.
func (h *APIHandlers) GetChanges(c fiber.Ctx) error {
	seq, err := h.persistence.ChangeSeq(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(ChangesResponse{Seq: seq})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK
	detail := "ok"

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
		detail = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"persistence": detail,
		},
		"timestamp": time.Now().UTC(),
	})
}

func toServiceUpdate(req UpdateActionRequest) services.UpdateActionRequest {
	update := services.UpdateActionRequest{
		Title:   req.Title,
		Notes:   req.Notes,
		DueDate: req.DueDate,
	}

	if req.Priority != nil {
		priority := models.ActionPriority(*req.Priority)
		update.Priority = &priority
	}

	if req.Status != nil {
		status := models.ActionStatus(*req.Status)
		update.Status = &status
	}

	return update
}
