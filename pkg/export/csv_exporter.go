package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders timetables as one CSV row per placed class.
type CSVExporter struct {
	// Comma overrides the field delimiter; zero means ','.
	Comma rune
}

// NewCSVExporter builds a comma-delimited exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes RowHeaders followed by the flattened timetables.
func (e *CSVExporter) Render(timetables []Timetable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if e.Comma != 0 {
		w.Comma = e.Comma
	}

	if err := w.Write(RowHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Flatten(timetables) {
		if err := w.Write(row.Record()); err != nil {
			return nil, fmt.Errorf("write csv row for %s: %w", row.Section, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
