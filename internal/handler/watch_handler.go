package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// WatchHandler manages video watch tracking endpoints.
type WatchHandler struct {
	service service.WatchService
	logger  zerolog.Logger
}

// NewWatchHandler builds a watch handler instance.
func NewWatchHandler(service service.WatchService, logger zerolog.Logger) *WatchHandler {
	return &WatchHandler{
		service: service,
		logger:  logger.With().Str("component", "watch_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *WatchHandler) Register(router fiber.Router) {
	router.Post("/watch", h.update)
	router.Post("/watch/complete", h.complete)
	router.Get("/watch/completed", h.listCompleted)
	router.Delete("/watch", h.reset)
}

func (h *WatchHandler) update(c *fiber.Ctx) error {
	var payload dto.WatchUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.RecordWatch(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "watch progress updated", record)
}

func (h *WatchHandler) complete(c *fiber.Ctx) error {
	var payload dto.MarkCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.MarkComplete(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "video marked complete", record)
}

func (h *WatchHandler) listCompleted(c *fiber.Ctx) error {
	studentRef := c.Query("student_id")
	courseID := c.Query("course_id")

	videos, err := h.service.ListCompleted(c.Context(), studentRef, courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "completed videos retrieved", videos)
}

func (h *WatchHandler) reset(c *fiber.Ctx) error {
	studentRef := c.Query("student_id")
	courseID := c.Query("course_id")

	deleted, err := h.service.Reset(c.Context(), studentRef, courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "watch records reset", fiber.Map{"deleted": deleted})
}

func (h *WatchHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation) || isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIdentityNotFound):
		// Unknown subject resolves to zero eligible students, not a failure.
		return utils.SendSuccess(c, "no matching student identity", nil)
	case errors.Is(err, service.ErrPersistence):
		requestLogger(h.logger, c).Error().Err(err).Msg("persistence failure")
		return utils.SendError(c, fiber.StatusInternalServerError, "persistence failure")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
