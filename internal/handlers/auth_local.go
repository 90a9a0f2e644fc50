package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/models"
	"meetingroom/internal/services"
	"meetingroom/pkg/auth"
)

// LocalAuthHandler handles the shared desk login
type LocalAuthHandler struct {
	sessions *services.SessionService
}

// NewLocalAuthHandler creates a new local auth handler
func NewLocalAuthHandler(sessions *services.SessionService) *LocalAuthHandler {
	return &LocalAuthHandler{sessions: sessions}
}

// Login checks the shared credential and starts a session
// POST /api/auth/login
func (h *LocalAuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.sessions.Login(c.UserContext(), &req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid username or password",
		})
	}
	if err != nil {
		log.Printf("❌ [AUTH] Login failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start session",
		})
	}

	return c.JSON(resp)
}

// Session returns the stored session if the caller's token matches it
// GET /api/auth/session
func (h *LocalAuthHandler) Session(c *fiber.Ctx) error {
	token, err := auth.ExtractToken(c.Get("Authorization"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing or invalid authorization token",
		})
	}

	session, err := h.sessions.Validate(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	return c.JSON(session)
}

// Logout clears the stored session
// POST /api/auth/logout
func (h *LocalAuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		log.Printf("❌ [AUTH] Logout failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear session",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
