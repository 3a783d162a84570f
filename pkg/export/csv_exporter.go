package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVExporter writes datasets as RFC 4180 CSV with a header row of labels.
// Non-numeric cells that a spreadsheet would evaluate as formulas are
// prefixed with a single quote.
type CSVExporter struct {
	comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{comma: ','}
}

// Render returns the encoded dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the dataset to w.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if err := data.validate(); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = e.comma

	record := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		record[i] = col.Label
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for n, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = neutralize(row[col.Key])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func neutralize(value string) string {
	if value == "" || !strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	return "'" + value
}
