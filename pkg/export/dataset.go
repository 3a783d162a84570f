package export

import "fmt"

// Column describes one exported field; Width is a relative weight used by
// the PDF renderer.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

// Format enumerates supported export encodings.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// ParseFormat validates a user-supplied format string.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	return nil
}
