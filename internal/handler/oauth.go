package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/creatorlens/creatorlens-go/internal/middleware"
	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/repository"
	"github.com/creatorlens/creatorlens-go/internal/service"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
	"github.com/creatorlens/creatorlens-go/pkg/hash"
)

// channelInfoAPI is the Data API slice the callback needs to identify the
// channel behind a fresh token.
type channelInfoAPI interface {
	MyChannel(ctx context.Context, token string) (*youtube.ChannelStats, error)
}

type OAuthHandler struct {
	tokens      *service.TokenService
	data        channelInfoAPI
	conns       *repository.ConnectionRepo
	stateSecret string
}

func NewOAuthHandler(tokens *service.TokenService, data channelInfoAPI, conns *repository.ConnectionRepo, stateSecret string) *OAuthHandler {
	return &OAuthHandler{tokens: tokens, data: data, conns: conns, stateSecret: stateSecret}
}

// Connect handles GET /api/youtube/connect
// Returns the Google consent URL with a signed state binding the flow to the
// session user.
func (h *OAuthHandler) Connect(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	state := hash.SignState(userID, h.stateSecret)
	return c.JSON(fiber.Map{"authUrl": h.tokens.AuthCodeURL(state)})
}

// Callback handles GET /api/youtube/callback?code=...&state=...
// Exchanges the authorization code, identifies the channel behind the new
// token and upserts the connection.
func (h *OAuthHandler) Callback(c fiber.Ctx) error {
	state := fiber.Query[string](c, "state")
	userID, ok := hash.VerifyState(state, h.stateSecret)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_STATE", "OAuth state is missing or invalid")
	}

	code := fiber.Query[string](c, "code")
	if code == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_PARAM", "code query parameter is required")
	}

	tok, err := h.tokens.Exchange(c.Context(), code)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "EXCHANGE_FAILED", "Authorization code exchange failed")
	}

	stats, err := h.data.MyChannel(c.Context(), tok.AccessToken)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "CHANNEL_LOOKUP_FAILED", "Could not identify the linked channel")
	}

	conn := &model.Connection{
		UserID:       userID,
		ChannelID:    stats.ChannelID,
		ChannelName:  stats.Title,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		conn.ExpiresAt = tok.Expiry.UnixMilli()
	}

	if err := h.conns.Upsert(c.Context(), conn); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store connection")
	}

	return c.JSON(fiber.Map{
		"connected": true,
		"channel": model.ConnectionInfo{
			ChannelID:   conn.ChannelID,
			ChannelName: conn.ChannelName,
		},
	})
}
