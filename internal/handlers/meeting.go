package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/logging"
	"meetingroom/internal/models"
	"meetingroom/internal/services"
)

// MeetingHandler serves the booking API
type MeetingHandler struct {
	meetings *services.MeetingService
	limiter  *services.AttemptLimiter
	metrics  *services.Metrics
	loc      *time.Location
}

// NewMeetingHandler creates a meeting handler. metrics may be nil.
func NewMeetingHandler(meetings *services.MeetingService, limiter *services.AttemptLimiter, metrics *services.Metrics, loc *time.Location) *MeetingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MeetingHandler{
		meetings: meetings,
		limiter:  limiter,
		metrics:  metrics,
		loc:      loc,
	}
}

// OnChange is registered as an engine listener. It drops password attempt
// limiters of meetings that left the active collection, whether by delete or sweep.
func (h *MeetingHandler) OnChange(cs services.ChangeSet) {
	if !cs.Active {
		return
	}
	active := h.meetings.Active()
	ids := make(map[string]struct{}, len(active))
	for _, m := range active {
		ids[m.ID] = struct{}{}
	}
	h.limiter.Retain(ids)
}

// Current returns meetings that have not ended, grouped by start date ascending
// GET /api/meetings/current
func (h *MeetingHandler) Current(c *fiber.Ctx) error {
	now := h.meetings.Now()
	current := services.CurrentResponses(h.meetings.Current(now))

	return c.JSON(fiber.Map{
		"groups": services.GroupByStartDate(current, true, h.loc),
		"total":  len(current),
	})
}

// Past returns the history grouped by start date, newest first
// GET /api/meetings/past
func (h *MeetingHandler) Past(c *fiber.Ctx) error {
	past := services.PastResponses(h.meetings.Past())

	return c.JSON(fiber.Map{
		"groups": services.GroupByStartDate(past, false, h.loc),
		"total":  len(past),
	})
}

// ExportPast downloads the history as an XLSX workbook
// GET /api/meetings/past/export
func (h *MeetingHandler) ExportPast(c *fiber.Ctx) error {
	data, err := services.ExportHistory(h.meetings.Past(), h.loc)
	if err != nil {
		log.Printf("❌ [EXPORT] Failed to export history: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export meeting history",
		})
	}

	filename := fmt.Sprintf("meeting-history-%s.xlsx", h.meetings.Now().In(h.loc).Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// Get returns one active meeting
// GET /api/meetings/:id
func (h *MeetingHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	meeting, ok := h.meetings.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}
	return c.JSON(meeting.ToResponse())
}

// Create books a meeting
// POST /api/meetings
func (h *MeetingHandler) Create(c *fiber.Ctx) error {
	var req models.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	meeting, err := h.meetings.Create(&req)
	if err != nil {
		return h.writeError(c, err)
	}

	h.metrics.RecordMeetingCreated()
	return c.Status(fiber.StatusCreated).JSON(meeting.ToResponse())
}

// Update edits the content of an active meeting; requires its password
// PUT /api/meetings/:id
func (h *MeetingHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.MeetingPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.authorize(id, req.MeetingPassword); err != nil {
		return h.writeError(c, err)
	}

	meeting, err := h.meetings.Update(id, &models.UpdateMeetingRequest{Content: req.Content})
	if err != nil {
		return h.writeError(c, err)
	}
	if meeting == nil {
		// Removed between the password check and the update
		return h.writeError(c, services.ErrMeetingNotFound)
	}

	return c.JSON(meeting.ToResponse())
}

// Delete moves an active meeting to history; requires its password
// DELETE /api/meetings/:id
func (h *MeetingHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	password := c.Get("X-Meeting-Password")
	if password == "" && len(c.Body()) > 0 {
		var req models.MeetingPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		password = req.MeetingPassword
	}

	if err := h.authorize(id, password); err != nil {
		return h.writeError(c, err)
	}

	if err := h.meetings.Delete(id); err != nil {
		return h.writeError(c, err)
	}
	h.limiter.Forget(id)
	h.metrics.RecordArchived(string(models.StatusDeleted), 1)

	return c.JSON(fiber.Map{
		"message": "Meeting moved to history",
		"id":      id,
	})
}

// authorize checks the meeting password under the per-meeting attempt limit
func (h *MeetingHandler) authorize(id, password string) error {
	if _, ok := h.meetings.Get(id); !ok {
		return fmt.Errorf("%w: %s", services.ErrMeetingNotFound, id)
	}

	if !h.limiter.Allow(id) {
		h.metrics.RecordPasswordAttempt("limited")
		logging.WithMeeting(id).Warn("password attempts rate limited")
		return services.ErrTooManyAttempts
	}

	if err := h.meetings.CheckPassword(id, password); err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			h.metrics.RecordPasswordAttempt("wrong")
			logging.WithMeeting(id).Info("wrong meeting password")
		}
		return err
	}

	h.metrics.RecordPasswordAttempt("ok")
	return nil
}

func (h *MeetingHandler) writeError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, services.ErrMeetingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	case errors.Is(err, services.ErrWrongPassword):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Incorrect meeting password",
		})
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many password attempts. Please wait before trying again.",
		})
	default:
		log.Printf("❌ [MEETINGS] Request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
