package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"meetingroom/internal/models"
)

func TestExportHistory(t *testing.T) {
	m1 := models.Meeting{
		ID: "h1", StartTime: ts("2025-01-01T02:00:00Z"), EndTime: ts("2025-01-01T03:00:00Z"),
		Room: models.RoomLarge, Team: models.TeamSquad3, StaffCode: "NV001", Content: "Kickoff",
		Staff: &models.Staff{StaffCode: "NV001", Name: "Nguyen Van An"},
	}
	m2 := models.Meeting{
		ID: "h2", StartTime: ts("2025-01-02T02:00:00Z"), EndTime: ts("2025-01-02T03:00:00Z"),
		Room: models.RoomSmall, Team: models.TeamKyThuat, StaffCode: "NV002", Content: "Retro",
	}
	past := []models.HistoricalMeeting{
		m1.Archive(models.StatusCompleted, ts("2025-01-01T03:01:00Z")),
		m2.Archive(models.StatusDeleted, ts("2025-01-02T02:30:00Z")),
	}

	data, err := ExportHistory(past, time.FixedZone("ICT", 7*3600))
	if err != nil {
		t.Fatalf("ExportHistory failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || len(rows[0]) != len(HistoryExportHeader) {
		t.Errorf("Unexpected header %v", rows[0])
	}

	// Newest first, rendered in the display timezone
	if rows[1][0] != "2025-01-02" || rows[1][1] != "09:00" || rows[1][8] != "deleted" {
		t.Errorf("Unexpected first row %v", rows[1])
	}
	if rows[2][6] != "Nguyen Van An" || rows[2][7] != "Kickoff" {
		t.Errorf("Unexpected second row %v", rows[2])
	}
}
