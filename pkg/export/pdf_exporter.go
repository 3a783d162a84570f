package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 277.0 // A4 landscape minus margins

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the dataset title and a weighted-width table.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := columnWidths(data.Columns)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range data.Columns {
		pdf.CellFormat(widths[i], 8, tr(col.Label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], 7, tr(truncate(row[col.Key], widths[i])), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		total += w
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = pageWidth * w / total
	}
	return widths
}

// truncate keeps cell text within roughly two characters per millimetre.
func truncate(value string, width float64) string {
	limit := int(width * 0.55)
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
