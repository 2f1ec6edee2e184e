package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/creatorlens/creatorlens-go/internal/middleware"
	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/service"
)

type SummaryHandler struct {
	summaries *service.SummaryService
}

func NewSummaryHandler(summaries *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Get handles GET /api/youtube/summary
// Always answers immediately from the cache; a stale cache additionally
// queues a background refresh, reported in the autoRefresh field.
func (h *SummaryHandler) Get(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	resp, err := h.summaries.GetSummary(c.Context(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch summary")
	}

	if resp.CacheStatus == model.CacheReady {
		Metrics.SummaryCacheHits.Inc()
	} else {
		Metrics.SummaryCacheMisses.Inc()
	}

	return c.JSON(resp)
}
