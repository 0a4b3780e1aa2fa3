package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// CSVWriter writes a header row followed by one record per row.
type CSVWriter struct {
	// Delimiter defaults to a comma.
	Delimiter rune
}

// Write implements Writer.
func (w *CSVWriter) Write(table *types.Table, destination string) error {
	if err := ensureParent(destination); err != nil {
		return err
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if w.Delimiter != 0 {
		cw.Comma = w.Delimiter
	}

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = row.Get(col).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.No, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return f.Close()
}
