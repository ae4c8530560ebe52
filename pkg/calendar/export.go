package calendar

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSchedule = "Schedule"
	sheetWarnings = "Warnings"
)

var exportHeaders = []string{"Date", "Time", "Type", "Title", "Location", "Status", "Shaykh", "Case"}

// WriteXLSX writes the schedule as a workbook: one row per event in display
// order, plus a Warnings sheet when a source failed.
func (s *Schedule) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSchedule); err != nil {
		return err
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetSchedule, cell, h)
	}
	f.SetCellStyle(sheetSchedule, "A1", "H1", bold)
	f.SetColWidth(sheetSchedule, "A", "C", 14)
	f.SetColWidth(sheetSchedule, "D", "D", 40)
	f.SetColWidth(sheetSchedule, "E", "H", 20)

	row := 2
	for _, e := range s.Events() {
		values := []any{e.Date, e.Time, string(e.Source), e.Title, e.Location, e.Badge.Label, e.Shaykh, e.ShortParentID}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetSchedule, cell, v)
		}
		row++
	}

	if len(s.Warnings) > 0 {
		if _, err := f.NewSheet(sheetWarnings); err != nil {
			return err
		}
		for i, msg := range s.Warnings {
			f.SetCellValue(sheetWarnings, fmt.Sprintf("A%d", i+1), msg)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// ExportName is the download file name of the schedule workbook.
func (s *Schedule) ExportName() string {
	return fmt.Sprintf("schedule-%s-%s.xlsx", s.From, s.To)
}
