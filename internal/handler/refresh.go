package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/creatorlens/creatorlens-go/internal/middleware"
	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/service"
)

type RefreshHandler struct {
	refresh *service.RefreshService
	poller  *service.Poller
}

func NewRefreshHandler(refresh *service.RefreshService, poller *service.Poller) *RefreshHandler {
	return &RefreshHandler{refresh: refresh, poller: poller}
}

// Enqueue handles POST /api/youtube/refresh
// Manual trigger: dedups against an in-flight job but applies no cooldown.
func (h *RefreshHandler) Enqueue(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	job, deduped, err := h.refresh.Enqueue(c.Context(), userID, service.EnqueueOptions{
		ReuseRunning: true,
		Trigger:      model.TriggerManual,
	})
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to enqueue refresh")
	}

	return c.Status(fiber.StatusAccepted).JSON(model.EnqueueResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Deduped: deduped,
	})
}

// Status handles GET /api/youtube/refresh/:jobId
// With ?wait=true the request blocks until the job reaches a terminal state
// or the poller's timeout elapses, whichever comes first.
func (h *RefreshHandler) Status(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	jobID, msg := middleware.ValidateJobID(c.Params("jobId"))
	if msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", msg)
	}

	if fiber.Query[bool](c, "wait") {
		job, err := h.poller.Wait(c.Context(), userID, jobID)
		if err != nil && !errors.Is(err, service.ErrPollTimeout) {
			if job == nil {
				return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No such refresh job")
			}
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch job")
		}
		return c.JSON(job)
	}

	job, err := h.refresh.Status(c.Context(), userID, jobID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch job")
	}
	if job == nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No such refresh job")
	}

	return c.JSON(job)
}
