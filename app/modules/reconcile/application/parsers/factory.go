package parsers

import (
	"fmt"
	"strings"
)

// SheetRow is one candidate pairing read from a legacy pairing sheet. Line is
// the 1-based physical line in the source file, kept so every downstream
// report can point the operator back at the row.
type SheetRow struct {
	Line    int
	AffName string
	NegName string
}

// Parser reads a two-column pairing sheet (column A = aff, column B = neg).
type Parser interface {
	Parse(data []byte) ([]SheetRow, error)
}

// ParserFactory creates parsers by filename.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}

// rowsFromRecords converts raw sheet records to pairing rows. The first
// non-blank record is treated as a header and skipped; blank rows are
// skipped; any remaining row must carry both team names.
func rowsFromRecords(records [][]string, lines []int) ([]SheetRow, error) {
	var rows []SheetRow
	headerSeen := false

	for i, record := range records {
		aff, neg := cell(record, 0), cell(record, 1)
		if aff == "" && neg == "" {
			continue
		}

		if !headerSeen {
			headerSeen = true
			continue
		}

		if aff == "" || neg == "" {
			return nil, fmt.Errorf("line %d: pairing row needs both an aff and a neg name", lines[i])
		}

		rows = append(rows, SheetRow{Line: lines[i], AffName: aff, NegName: neg})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no pairing rows found")
	}
	return rows, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
