package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"meetingroom/internal/models"
)

const historySheet = "Meeting History"

// HistoryExportHeader is the column order of the history workbook
var HistoryExportHeader = []string{
	"Date", "Start", "End", "Room", "Team", "Staff Code", "Staff Name", "Content", "Status", "Moved To History",
}

// ExportHistory renders historical meetings, newest first, as an XLSX workbook
func ExportHistory(past []models.HistoricalMeeting, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range HistoryExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(historySheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{12, 8, 8, 18, 10, 12, 24, 48, 11, 20}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(historySheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	groups := GroupByStartDate(PastResponses(past), false, loc)
	row := 2
	for _, group := range groups {
		for _, m := range group.Meetings {
			staffName := ""
			if m.Staff != nil {
				staffName = m.Staff.Name
			}
			movedAt := ""
			if m.MovedToPastAt != nil {
				movedAt = m.MovedToPastAt.In(loc).Format("2006-01-02 15:04")
			}

			values := []interface{}{
				group.Date,
				m.StartTime.In(loc).Format("15:04"),
				m.EndTime.In(loc).Format("15:04"),
				m.RoomName,
				string(m.Team),
				m.StaffCode,
				staffName,
				m.Content,
				string(m.Status),
				movedAt,
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
