package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/services"
)

// PasswordHandler exposes the two-digit password pool
type PasswordHandler struct {
	meetings *services.MeetingService
}

// NewPasswordHandler creates a password handler
func NewPasswordHandler(meetings *services.MeetingService) *PasswordHandler {
	return &PasswordHandler{meetings: meetings}
}

// Generate returns a password no current meeting holds
// POST /api/passwords/generate
func (h *PasswordHandler) Generate(c *fiber.Ctx) error {
	password, err := h.meetings.GeneratePassword(h.meetings.Now())
	if errors.Is(err, services.ErrPoolExhausted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "All meeting passwords are in use",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate password",
		})
	}

	return c.JSON(fiber.Map{
		"password": password,
	})
}

// Pool reports how many passwords are in use and free
// GET /api/passwords/pool
func (h *PasswordHandler) Pool(c *fiber.Ctx) error {
	return c.JSON(h.meetings.PoolStats(h.meetings.Now()))
}
