// =============================================================================
// Deal Pipeline - Error Report
// =============================================================================
//
// This module renders validation failures into a per-row error table.
//
// REPORT PROCESS:
//   1. Group failures by row index, keeping evaluation order
//   2. Resolve each index to its source row, which carries the RowNo
//   3. Emit the failing rows; rows without failures are left out
//
// The report has the columns RowNo, the source columns, then Errors, where
// Errors holds the row's messages separated by newlines. Table-level
// failures (missing or misplaced columns) have no row, so their messages
// head the Errors cell of every reported row.
//
// =============================================================================

package report

import (
	"strings"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
	"github.com/ginjaninja78/deal-pipeline/internal/validation"
)

// ErrorsColumn is the name of the rendered messages column.
const ErrorsColumn = "Errors"

// Render builds the error table for a source table and its failures.
func Render(table *types.Table, failures []validation.Failure) *types.Table {
	var tableMessages []string
	rowMessages := make(map[int][]string)
	for _, f := range failures {
		if f.Index == nil {
			tableMessages = append(tableMessages, f.Message)
			continue
		}
		if *f.Index < 0 || *f.Index >= len(table.Rows) {
			continue
		}
		rowMessages[*f.Index] = append(rowMessages[*f.Index], f.Message)
	}

	// A RowNo the parser left among the data columns is replaced by the
	// report's own.
	var sourceColumns []string
	for _, col := range table.Columns {
		if col != types.RowNoColumn {
			sourceColumns = append(sourceColumns, col)
		}
	}

	columns := append([]string{types.RowNoColumn}, sourceColumns...)
	columns = append(columns, ErrorsColumn)
	out := types.NewTable(columns...)
	out.Name = table.Name

	for i, row := range table.Rows {
		messages, failed := rowMessages[i]
		if !failed && len(tableMessages) == 0 {
			continue
		}

		fields := make(map[string]types.Value, len(columns))
		fields[types.RowNoColumn] = types.Int(int64(row.No))
		for _, col := range sourceColumns {
			fields[col] = row.Get(col)
		}
		all := append(append([]string(nil), tableMessages...), messages...)
		fields[ErrorsColumn] = types.String(strings.Join(all, "\n"))

		out.Rows = append(out.Rows, types.Row{No: row.No, Fields: fields})
	}

	return out
}
