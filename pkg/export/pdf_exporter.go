package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth   = 277.0
	pdfHeaderWidth = 27.0
	pdfRowHeight   = 16.0
)

// PDFExporter renders each timetable as a landscape grid on its own page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with one page per timetable.
func (e *PDFExporter) Render(timetables []Timetable) ([]byte, error) {
	if len(timetables) == 0 {
		return nil, fmt.Errorf("pdf requires at least one timetable")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, tt := range timetables {
		pdf.AddPage()
		if tt.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, tr(strings.ToUpper(tt.Title)), "", 1, "C", false, 0, "")
			pdf.Ln(3)
		}

		days := tt.DayLabels()
		colWidth := (pdfPageWidth - pdfHeaderWidth) / float64(len(days))

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(pdfHeaderWidth, 8, "Time", "1", 0, "C", true, 0, "")
		for _, day := range days {
			pdf.CellFormat(colWidth, 8, tr(day), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Arial", "", 8)
		for _, row := range tt.Rows() {
			x, y := pdf.GetXY()
			pdf.CellFormat(pdfHeaderWidth, pdfRowHeight, row.String(), "1", 0, "C", false, 0, "")
			for i := range days {
				cx := x + pdfHeaderWidth + float64(i)*colWidth
				pdf.Rect(cx, y, colWidth, pdfRowHeight, "D")
				pdf.SetXY(cx, y+1)
				pdf.MultiCell(colWidth, 4, tr(tt.Cell(i, row)), "", "C", false)
			}
			pdf.SetXY(x, y+pdfRowHeight)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
