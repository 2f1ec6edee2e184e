package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// SessionCookie is the cookie carrying the dashboard session's user id.
// Issuance lives in the login service; this backend only consumes it.
const SessionCookie = "cl_session"

// userIDKey is the Locals key the session middleware stores the user id under.
const userIDKey = "userID"

// NewSession returns a middleware that resolves the requesting user from the
// session cookie (or the X-User-ID header, used by internal tooling and
// tests). Requests without either are rejected before any handler runs.
func NewSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID := c.Cookies(SessionCookie)
		if userID == "" {
			userID = c.Get("X-User-ID")
		}
		if userID == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Sign in to access YouTube analytics")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by the session middleware.
func UserID(c fiber.Ctx) string {
	if v, ok := c.Locals(userIDKey).(string); ok {
		return v
	}
	return ""
}
