package services

import (
	"testing"
	"time"

	"meetingroom/internal/models"
)

func TestGroupByStartDate(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	meetings := []*models.MeetingResponse{
		{ID: "b", StartTime: ts("2025-01-01T09:00:00Z")},
		{ID: "a", StartTime: ts("2025-01-01T02:00:00Z")},
		// 18:00Z is the next morning in UTC+7
		{ID: "c", StartTime: ts("2025-01-01T18:00:00Z")},
	}

	asc := GroupByStartDate(meetings, true, hcm)
	if len(asc) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(asc))
	}
	if asc[0].Date != "2025-01-01" || asc[1].Date != "2025-01-02" {
		t.Errorf("Unexpected dates %s, %s", asc[0].Date, asc[1].Date)
	}
	if asc[0].Meetings[0].ID != "a" || asc[0].Meetings[1].ID != "b" {
		t.Errorf("Expected ascending order within the day")
	}

	desc := GroupByStartDate(meetings, false, time.UTC)
	if len(desc) != 1 || desc[0].Meetings[0].ID != "c" || desc[0].Meetings[2].ID != "a" {
		t.Errorf("Expected a single UTC day in descending order, got %+v", desc)
	}

	if got := GroupByStartDate(nil, true, nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty groups, got %v", got)
	}
}
