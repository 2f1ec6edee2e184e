package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/creatorlens/creatorlens-go/internal/handler"
	"github.com/creatorlens/creatorlens-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Connections *handler.ConnectionsHandler
	Refresh     *handler.RefreshHandler
	Summary     *handler.SummaryHandler
	OAuth       *handler.OAuthHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (no auth)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	// OAuth callback arrives from Google without a session cookie; the signed
	// state parameter carries the user binding instead.
	oauthLimit := middleware.NewOAuthRateLimiter().Handler()
	app.Get("/api/youtube/callback", h.OAuth.Callback, oauthLimit)

	// Session-scoped API routes
	api := app.Group("/api/youtube", middleware.NewSession())

	api.Get("/connect", h.OAuth.Connect, oauthLimit)
	api.Get("/connections", h.Connections.List, middleware.NewConnectionsRateLimiter().Handler())
	api.Post("/disconnect", h.Connections.Disconnect, middleware.NewDisconnectRateLimiter().Handler())

	api.Post("/refresh", h.Refresh.Enqueue, middleware.NewRefreshRateLimiter().Handler())
	api.Get("/refresh/:jobId", h.Refresh.Status, middleware.NewJobStatusRateLimiter().Handler())

	api.Get("/summary", h.Summary.Get, middleware.NewSummaryRateLimiter().Handler())
}
