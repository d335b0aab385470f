package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// XLSXExporter renders each timetable as a day-by-slot sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render creates a workbook with one sheet per timetable.
func (e *XLSXExporter) Render(timetables []Timetable) ([]byte, error) {
	if len(timetables) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one timetable")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	used := map[string]int{"Sheet1": 1}
	for i, tt := range timetables {
		sheet := sheetName(tt.Title, i, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeTimetableSheet(f, sheet, tt, headerStyle, cellStyle); err != nil {
			return nil, err
		}
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTimetableSheet(f *excelize.File, sheet string, tt Timetable, headerStyle, cellStyle int) error {
	days := tt.DayLabels()
	lastCol, _ := excelize.ColumnNumberToName(len(days) + 1)

	if err := f.SetCellValue(sheet, "A1", tt.Title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	if err := f.SetCellValue(sheet, "A2", "Time"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, day := range days {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		if err := f.SetCellValue(sheet, cell, day); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	rows := tt.Rows()
	for r, row := range rows {
		rowNum := r + 3
		label, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellValue(sheet, label, row.String()); err != nil {
			return fmt.Errorf("write slot label: %w", err)
		}
		for d := range days {
			cell, _ := excelize.CoordinatesToCellName(d+2, rowNum)
			if err := f.SetCellValue(sheet, cell, tt.Cell(d, row)); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(days)+1, len(rows)+2)
		if err := f.SetCellStyle(sheet, "A3", end, cellStyle); err != nil {
			return fmt.Errorf("style cells: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

func sheetName(title string, index int, used map[string]int) string {
	name := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")").Replace(title)
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Timetable %d", index+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if n, ok := used[name]; ok {
		used[name] = n + 1
		suffix := fmt.Sprintf(" (%d)", n+1)
		if len(name)+len(suffix) > maxSheetName {
			name = name[:maxSheetName-len(suffix)]
		}
		name += suffix
	}
	used[name]++
	return name
}
