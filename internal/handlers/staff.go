package handlers

import (
	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/services"
)

// StaffHandler serves staff directory lookups
type StaffHandler struct {
	staff *services.StaffDirectory
}

// NewStaffHandler creates a staff handler
func NewStaffHandler(staff *services.StaffDirectory) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// Search finds staff by code, name or title
// GET /api/staff?q=
func (h *StaffHandler) Search(c *fiber.Ctx) error {
	results := h.staff.Search(c.Query("q"))
	return c.JSON(fiber.Map{
		"staff": results,
		"total": len(results),
	})
}

// Get returns the entry for an exact staff code
// GET /api/staff/:code
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	entry, ok := h.staff.FindByCode(c.Params("code"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Staff not found",
		})
	}
	return c.JSON(entry)
}
