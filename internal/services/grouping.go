package services

import (
	"sort"
	"time"

	"meetingroom/internal/models"
)

const dateLayout = "2006-01-02"

// GroupByStartDate sorts meetings by start time and buckets them by calendar
// date in loc. Groups and their members follow the same direction.
func GroupByStartDate(meetings []*models.MeetingResponse, ascending bool, loc *time.Location) []*models.MeetingDateGroup {
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]*models.MeetingResponse, len(meetings))
	copy(sorted, meetings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	groups := []*models.MeetingDateGroup{}
	var current *models.MeetingDateGroup
	for _, m := range sorted {
		date := m.StartTime.In(loc).Format(dateLayout)
		if current == nil || current.Date != date {
			current = &models.MeetingDateGroup{Date: date}
			groups = append(groups, current)
		}
		current.Meetings = append(current.Meetings, m)
	}
	return groups
}

// CurrentResponses converts active meetings to responses
func CurrentResponses(meetings []models.Meeting) []*models.MeetingResponse {
	out := make([]*models.MeetingResponse, 0, len(meetings))
	for i := range meetings {
		out = append(out, meetings[i].ToResponse())
	}
	return out
}

// PastResponses converts historical meetings to responses
func PastResponses(past []models.HistoricalMeeting) []*models.MeetingResponse {
	out := make([]*models.MeetingResponse, 0, len(past))
	for i := range past {
		out = append(out, past[i].ToResponse())
	}
	return out
}
