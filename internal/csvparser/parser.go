// =============================================================================
// Deal Pipeline - CSV Parser Module
// =============================================================================
//
// This module parses delimited text files into a single row table.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, tab, semicolon)
//   - Multi-line headers merged into one header row
//   - Empty cells read as null
//   - Blank lines skipped
//   - Per-column converters applied while each cell is read
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\uFEFF"

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how a CSV file is read.
type Settings struct {
	// Delimiter is the field separator. Accepts a single character or one of
	// the names "tab", "pipe", "semicolon".
	Delimiter string

	// HeaderRows is the number of rows merged into the header.
	HeaderRows int

	// TrimLeadingSpace trims leading white space in a field.
	TrimLeadingSpace bool
}

// DefaultSettings returns comma-separated, single-header settings.
func DefaultSettings() Settings {
	return Settings{
		Delimiter:  ",",
		HeaderRows: 1,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table.
func Parse(filePath string, settings Settings, converters types.Converters) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, settings, converters)
}

// ParseReader reads CSV content from r into a table.
//
// PARSING PROCESS:
//   1. Read all records
//   2. Merge header rows
//   3. Convert data records to rows, numbering them from RowNoOffset
func ParseReader(r io.Reader, settings Settings, converters types.Converters) (*types.Table, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	table := types.NewTable(headers...)
	for _, record := range allRows[settings.HeaderRows:] {
		if isRowEmpty(record) {
			continue
		}
		fields := make(map[string]types.Value, len(headers))
		for i, header := range headers {
			value := types.Null()
			if i < len(record) && record[i] != "" {
				value = types.String(record[i])
			}
			fields[header] = converters.Apply(header, value)
		}
		table.Rows = append(table.Rows, types.Row{
			No:     len(table.Rows) + types.RowNoOffset,
			Fields: fields,
		})
	}

	table.LiftRowNo()
	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Short rows are padded with nulls instead of failing the read.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = settings.TrimLeadingSpace
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Non-empty values of each column are joined with a space.
//
//   Row 1: "Deal", "", "Company", ""
//   Row 2: "Name", "D1", "Id", "Name"
//   Result: "Deal Name", "D1", "Company Id", "Name"
func extractHeaders(allRows [][]string, settings Settings) ([]string, error) {
	if settings.HeaderRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if settings.HeaderRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				value := strings.TrimSpace(allRows[row][col])
				if value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
