package models

import (
	"time"
)

// RoomType identifies one of the bookable rooms
type RoomType string

const (
	RoomLarge RoomType = "large"
	RoomSmall RoomType = "small"
)

// Valid reports whether the room is one of the known rooms
func (r RoomType) Valid() bool {
	return r == RoomLarge || r == RoomSmall
}

// DisplayName returns the label shown on the room board
func (r RoomType) DisplayName() string {
	if r == RoomLarge {
		return "Phòng họp lớn"
	}
	return "Phòng họp bé"
}

// MeetingStatus is the terminal state of a historical meeting
type MeetingStatus string

const (
	StatusCompleted MeetingStatus = "completed"
	StatusDeleted   MeetingStatus = "deleted"
)

// Meeting is an active booking
type Meeting struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Room            RoomType  `json:"room"`
	Content         string    `json:"content"`
	StaffCode       string    `json:"staff_code"`
	Team            TeamType  `json:"team"`
	MeetingPassword string    `json:"meeting_password"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Snapshot of the directory entry taken at creation time
	Staff *Staff `json:"staff,omitempty"`
}

// HistoricalMeeting is the archived form of a meeting that expired or was deleted
type HistoricalMeeting struct {
	Meeting
	Status        MeetingStatus `json:"status"`
	MovedToPastAt time.Time     `json:"moved_to_past_at"`
}

// IsExpired reports whether the meeting ended strictly before now
func (m *Meeting) IsExpired(now time.Time) bool {
	return m.EndTime.Before(now)
}

// Archive produces the historical record for this meeting
func (m *Meeting) Archive(status MeetingStatus, at time.Time) HistoricalMeeting {
	return HistoricalMeeting{
		Meeting:       *m,
		Status:        status,
		MovedToPastAt: at,
	}
}

// CreateMeetingRequest is the submission payload for a new booking
type CreateMeetingRequest struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Room            RoomType   `json:"room"`
	Content         string     `json:"content"`
	StaffCode       string     `json:"staff_code"`
	Team            TeamType   `json:"team"`
	MeetingPassword string     `json:"meeting_password"`
}

// UpdateMeetingRequest carries the editable fields of an active meeting.
// Only content is editable today.
type UpdateMeetingRequest struct {
	Content *string `json:"content,omitempty"`
}

// MeetingPasswordRequest is sent with password-gated edit and delete calls
type MeetingPasswordRequest struct {
	MeetingPassword string  `json:"meeting_password"`
	Content         *string `json:"content,omitempty"`
}

// MeetingResponse is the public view of a meeting; it never carries the password
type MeetingResponse struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Room      RoomType  `json:"room"`
	RoomName  string    `json:"room_name"`
	Content   string    `json:"content"`
	StaffCode string    `json:"staff_code"`
	Team      TeamType  `json:"team"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Staff     *Staff    `json:"staff,omitempty"`

	Status        MeetingStatus `json:"status,omitempty"`
	MovedToPastAt *time.Time    `json:"moved_to_past_at,omitempty"`
}

// ToResponse converts a Meeting to MeetingResponse
func (m *Meeting) ToResponse() *MeetingResponse {
	return &MeetingResponse{
		ID:        m.ID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Room:      m.Room,
		RoomName:  m.Room.DisplayName(),
		Content:   m.Content,
		StaffCode: m.StaffCode,
		Team:      m.Team,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Staff:     m.Staff,
	}
}

// ToResponse converts a HistoricalMeeting to MeetingResponse
func (h *HistoricalMeeting) ToResponse() *MeetingResponse {
	resp := h.Meeting.ToResponse()
	resp.Status = h.Status
	movedAt := h.MovedToPastAt
	resp.MovedToPastAt = &movedAt
	return resp
}

// MeetingDateGroup is a set of meetings sharing a start date (YYYY-MM-DD in the display timezone)
type MeetingDateGroup struct {
	Date     string             `json:"date"`
	Meetings []*MeetingResponse `json:"meetings"`
}
