package middleware

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/models"
	"meetingroom/pkg/auth"
)

// SessionValidator checks a bearer token against the stored shared session
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.UserSession, error)
}

// SessionAuthMiddleware requires a valid shared-login token.
// Supports both Authorization header and query parameter (for WebSocket connections).
// A nil validator means the shared login is disabled and every request passes.
func SessionAuthMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessions == nil {
			return c.Next()
		}

		token := extractRequestToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid authorization token",
			})
		}

		session, err := sessions.Validate(c.UserContext(), token)
		if err != nil {
			log.Printf("❌ [AUTH] Token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals("session_id", session.ID)
		return c.Next()
	}
}

func extractRequestToken(c *fiber.Ctx) string {
	// 1. Try Authorization header first
	if authHeader := c.Get("Authorization"); authHeader != "" {
		if token, err := auth.ExtractToken(authHeader); err == nil {
			return token
		}
	}

	// 2. Try query parameter (for WebSocket connections)
	return c.Query("token")
}
