package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	meetings  *services.MeetingService
	hub       *services.FeedHub
	hasRemote bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(meetings *services.MeetingService, hub *services.FeedHub, hasRemote bool) *HealthHandler {
	return &HealthHandler{
		meetings:  meetings,
		hub:       hub,
		hasRemote: hasRemote,
	}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	active, past := h.meetings.Counts()
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"active_meetings": active,
		"past_meetings":   past,
		"connections":     h.hub.Count(),
		"remote_storage":  h.hasRemote,
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}
