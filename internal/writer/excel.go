package writer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// wrapColumnWidth is the width of the word-wrapped column, in characters.
const wrapColumnWidth = 55

// ExcelWriter writes the table to a single sheet of a new workbook.
type ExcelWriter struct {
	// SheetName defaults to "Sheet1".
	SheetName string

	// WrapColumn, when present in the table, is word-wrapped in red.
	WrapColumn string
}

// Write implements Writer. The destination must have an .xlsx style
// extension.
func (w *ExcelWriter) Write(table *types.Table, destination string) error {
	if err := ensureParent(destination); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if w.SheetName != "" && w.SheetName != sheet {
		if err := f.SetSheetName(sheet, w.SheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = w.SheetName
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = cellValue(row.Get(col))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.No, err)
		}
	}

	if idx := table.ColumnIndex(w.WrapColumn); w.WrapColumn != "" && idx >= 0 {
		if err := wrapColumn(f, sheet, idx+1); err != nil {
			return err
		}
	}

	if err := f.SaveAs(destination); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// wrapColumn word-wraps a 1-based column in red and widens it.
func wrapColumn(f *excelize.File, sheet string, col int) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Font:      &excelize.Font{Color: "FF0000"},
	})
	if err != nil {
		return fmt.Errorf("failed to create wrap style: %w", err)
	}

	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, name, style); err != nil {
		return fmt.Errorf("failed to style column %s: %w", name, err)
	}
	if err := f.SetColWidth(sheet, name, name, wrapColumnWidth); err != nil {
		return fmt.Errorf("failed to size column %s: %w", name, err)
	}
	return nil
}

// cellValue maps a value to what excelize stores natively. Decimals are
// written as text to keep every digit.
func cellValue(v types.Value) any {
	switch v.Kind() {
	case types.KindNull:
		return nil
	case types.KindDecimal:
		return v.String()
	default:
		return v.Interface()
	}
}
