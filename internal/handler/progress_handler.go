package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// ProgressHandler manages course progress endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler builds a progress handler instance.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Post("/courses/:courseId/students/:studentRef/recompute", h.recompute)
	router.Get("/courses/:courseId/students/:studentRef", h.get)
	router.Put("/courses/:courseId/students/:studentRef", h.push)
}

func (h *ProgressHandler) recompute(c *fiber.Ctx) error {
	breakdown, err := h.service.Recompute(c.Context(), c.Params("courseId"), c.Params("studentRef"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress recomputed", breakdown)
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	progress, err := h.service.Get(c.Context(), c.Params("courseId"), c.Params("studentRef"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) push(c *fiber.Ctx) error {
	var payload dto.ProgressPushRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.service.SetProgress(c.Context(), c.Params("courseId"), c.Params("studentRef"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress updated", progress)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation) || isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrProgressNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "progress not found")
	case errors.Is(err, service.ErrIdentityNotFound):
		return utils.SendSuccess(c, "no matching student identity", nil)
	case errors.Is(err, service.ErrPersistence):
		requestLogger(h.logger, c).Error().Err(err).Msg("persistence failure")
		return utils.SendError(c, fiber.StatusInternalServerError, "persistence failure")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
