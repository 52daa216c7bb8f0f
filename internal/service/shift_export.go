package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/slugify"
)

const exportSheet = "Assignments"

var exportHeader = []string{"Date", "Weekday", "Block", "Start", "End", "Duration (min)"}

// ExportAssignments renders the pattern's assignments as an .xlsx calendar,
// one row per working day. It returns the file and a suggested name.
func (s *shiftService) ExportAssignments(ctx context.Context, caller Caller, id string, q *dto.AssignmentRangeQuery) (*bytes.Buffer, string, error) {
	if err := s.authorize(caller, policy.ViewShiftPattern); err != nil {
		return nil, "", err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, "", err
	}
	window, rows, err := s.assignments(ctx, pattern, q)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", ErrExportGenerateFailed
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "B", 14)
	f.SetColWidth(exportSheet, "C", "C", 8)
	f.SetColWidth(exportSheet, "D", "E", 10)
	f.SetColWidth(exportSheet, "F", "F", 16)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title
	f.SetCellValue(exportSheet, "A1", fmt.Sprintf("%s: %s to %s", pattern.Name, window[0], window[1]))
	lastCol := colName(len(exportHeader) - 1)
	f.MergeCell(exportSheet, "A1", lastCol+"1")
	f.SetCellStyle(exportSheet, "A1", "A1", headerStyle)

	// header
	for i, h := range exportHeader {
		f.SetCellValue(exportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(exportSheet, "A2", lastCol+"2", headerStyle)

	// data
	for i, a := range rows {
		r := i + 3
		f.SetCellValue(exportSheet, cell("A", r), a.Date)
		f.SetCellValue(exportSheet, cell("B", r), a.Weekday)
		f.SetCellValue(exportSheet, cell("C", r), a.Order)
		f.SetCellValue(exportSheet, cell("D", r), a.StartTime)
		f.SetCellValue(exportSheet, cell("E", r), a.EndTime)
		f.SetCellValue(exportSheet, cell("F", r), a.DurationMinutes)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write export failed", zap.String("pattern_id", id), zap.Error(err))
		return nil, "", ErrExportGenerateFailed
	}

	filename := fmt.Sprintf("shift-assignments-%s.xlsx", slugify.Make(pattern.Name))
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
