// =============================================================================
// Deal Pipeline - Shared Types
// =============================================================================
//
// This package contains the in-memory table model shared by every stage of
// the pipeline. Types defined here are used by:
//   - reader (and the per-format parsers)
//   - lookups
//   - validation
//   - converter
//   - report
//   - writer
//
// CELL MODEL:
//   A cell holds exactly one Value. Value is a closed sum type over the
//   scalar kinds a source file can produce at any stage of the pipeline:
//   null, string, integer, float, boolean, timestamp and decimal.
//   Conversions between kinds are explicit (see value.go).
//
// =============================================================================

package types

// RowNoOffset converts a 0-based data row index into the 1-based RowNo
// shown to users: one header row plus 1-based numbering.
const RowNoOffset = 2

// RowNoColumn is the column name used when RowNo is materialized in a table.
const RowNoColumn = "RowNo"

// =============================================================================
// ROW AND TABLE
// =============================================================================

// Row is a single record of a Table.
type Row struct {
	// No is the stable RowNo of the record in its source file.
	No int

	// Fields maps column name to cell value. A column missing from the map
	// reads as null.
	Fields map[string]Value
}

// Get returns the value of a column, or Null when the column is absent.
func (r Row) Get(column string) Value {
	if v, ok := r.Fields[column]; ok {
		return v
	}
	return Null()
}

// Table is an ordered collection of uniform rows.
type Table struct {
	// Name is the sheet or section name the table was read from.
	Name string

	// Columns is the ordered column set.
	Columns []string

	// Rows contains the data rows in source order.
	Rows []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the column is part of the table's column set.
func (t *Table) HasColumn(column string) bool {
	return t.ColumnIndex(column) >= 0
}

// ColumnIndex returns the position of the column, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Append adds a row built from values in column order. RowNo is assigned
// from the row's position.
func (t *Table) Append(values ...Value) {
	fields := make(map[string]Value, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(values) {
			fields[col] = values[i]
		} else {
			fields[col] = Null()
		}
	}
	t.Rows = append(t.Rows, Row{No: len(t.Rows) + RowNoOffset, Fields: fields})
}

// Column returns every value of a column in row order.
func (t *Table) Column(column string) []Value {
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Get(column)
	}
	return values
}

// Values returns the row's values in the table's column order.
func (t *Table) Values(row Row) []Value {
	values := make([]Value, len(t.Columns))
	for i, col := range t.Columns {
		values[i] = row.Get(col)
	}
	return values
}

// Clone returns a deep copy of the table. Values are immutable, so only the
// containers are copied.
func (t *Table) Clone() *Table {
	out := &Table{
		Name:    t.Name,
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		fields := make(map[string]Value, len(row.Fields))
		for k, v := range row.Fields {
			fields[k] = v
		}
		out.Rows[i] = Row{No: row.No, Fields: fields}
	}
	return out
}

// LiftRowNo removes a leading RowNo column and stores its values as row
// metadata. Rows whose RowNo cannot be read as an integer keep their
// positional number.
func (t *Table) LiftRowNo() {
	if len(t.Columns) == 0 || t.Columns[0] != RowNoColumn {
		return
	}
	t.Columns = t.Columns[1:]
	for i := range t.Rows {
		if n, err := t.Rows[i].Get(RowNoColumn).Int64(); err == nil {
			t.Rows[i].No = int(n)
		}
		delete(t.Rows[i].Fields, RowNoColumn)
	}
}
