package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/creatorlens/creatorlens-go/internal/middleware"
	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/repository"
	"github.com/creatorlens/creatorlens-go/internal/service"
)

type ConnectionsHandler struct {
	conns     *repository.ConnectionRepo
	summaries *service.SummaryService
}

func NewConnectionsHandler(conns *repository.ConnectionRepo, summaries *service.SummaryService) *ConnectionsHandler {
	return &ConnectionsHandler{conns: conns, summaries: summaries}
}

// List handles GET /api/youtube/connections
func (h *ConnectionsHandler) List(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	conns, err := h.conns.ListByUser(c.Context(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list connections")
	}

	infos := make([]model.ConnectionInfo, 0, len(conns))
	for _, conn := range conns {
		infos = append(infos, model.ConnectionInfo{
			ChannelID:   conn.ChannelID,
			ChannelName: conn.ChannelName,
		})
	}

	return c.JSON(model.ConnectionsResponse{Count: len(infos), Connections: infos})
}

type disconnectRequest struct {
	ChannelNames []string `json:"channelNames"`
}

// Disconnect handles POST /api/youtube/disconnect
// Removes the named connections (or all of them when the list is empty) and
// invalidates the cached summary.
func (h *ConnectionsHandler) Disconnect(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req disconnectRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		}
	}

	names, msg := middleware.ValidateChannelNames(req.ChannelNames)
	if msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", msg)
	}

	removed, err := h.conns.DeleteByUser(c.Context(), userID, names)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to disconnect")
	}

	if err := h.summaries.Invalidate(c.Context(), userID); err != nil {
		middleware.Logger.Warn().Err(err).Msg("summary invalidation after disconnect failed")
	}

	return c.JSON(fiber.Map{"removed": removed})
}
