// =============================================================================
// Deal Pipeline - Spreadsheet Parser
// =============================================================================
//
// This module parses spreadsheet workbooks into one table per sheet.
//
// SUPPORTED CONTAINERS:
//   - Zip-based workbooks (.xlsx, .xlsm) read with excelize
//   - Legacy BIFF workbooks (.xls) read with extrame/xls
//
// SHEET LAYOUT:
//   The first non-empty row of each sheet is the header row. Every row
//   after it is a data row; fully blank rows are skipped. Cell values are
//   read as raw text so numeric cells keep their stored precision, and empty
//   cells read as null.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

var (
	zipMagic = []byte("PK")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads every sheet of a workbook, in workbook order.
func Parse(path string, converters types.Converters) ([]*types.Table, error) {
	head, err := readHead(path, 4)
	if err != nil {
		return nil, err
	}

	var sheets []rawSheet
	switch {
	case bytes.HasPrefix(head, zipMagic):
		sheets, err = readWorkbook(path)
	case bytes.HasPrefix(head, cfbMagic):
		sheets, err = readLegacyWorkbook(path)
	default:
		return nil, fmt.Errorf("file is not a recognised workbook")
	}
	if err != nil {
		return nil, err
	}

	tables := make([]*types.Table, 0, len(sheets))
	for _, sheet := range sheets {
		tables = append(tables, buildTable(sheet, converters))
	}
	return tables, nil
}

// rawSheet is a sheet as a grid of cell text.
type rawSheet struct {
	name string
	rows [][]string
}

// readWorkbook loads a zip-based workbook.
func readWorkbook(path string) ([]rawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []rawSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", name, err)
		}
		sheets = append(sheets, rawSheet{name: name, rows: rows})
	}
	return sheets, nil
}

// readLegacyWorkbook loads a BIFF workbook.
func readLegacyWorkbook(path string) ([]rawSheet, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	var sheets []rawSheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := rawSheet{name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := legacyRow(ws, r)
			if row == nil {
				sheet.rows = append(sheet.rows, nil)
				continue
			}
			// LastCol is the BIFF "last column + 1" field, so the final
			// cell read here is usually empty.
			cells := make([]string, 0, row.LastCol()+1)
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			sheet.rows = append(sheet.rows, trimTrailing(cells))
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// legacyRow returns row r of a BIFF sheet, or nil when the sheet holds no
// record for it. WorkSheet.Row dereferences the missing row.
func legacyRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

// trimTrailing drops empty cells at the end of a row.
func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

// buildTable converts a cell grid to a table.
func buildTable(sheet rawSheet, converters types.Converters) *types.Table {
	start := 0
	for start < len(sheet.rows) && isRowEmpty(sheet.rows[start]) {
		start++
	}
	if start == len(sheet.rows) {
		t := types.NewTable()
		t.Name = sheet.name
		return t
	}

	headers := cleanHeaders(sheet.rows[start])
	table := types.NewTable(headers...)
	table.Name = sheet.name

	for _, record := range sheet.rows[start+1:] {
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
	return table
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readHead returns up to n bytes from the start of the file.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	return buf[:read], nil
}

// cleanHeaders trims headers and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
