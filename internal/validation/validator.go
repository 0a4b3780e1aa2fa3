// =============================================================================
// Deal Pipeline - Validation Engine
// =============================================================================
//
// This module validates a row table against a Schema.
//
// VALIDATION STRATEGY:
//   Validation is exhaustive, never fail-fast:
//   1. Table-level: missing, undeclared and out-of-order columns
//   2. Cell-level: every declared column present in the table is checked on
//      every row, and every violated rule produces its own Failure
//
//   Within one cell the rules are layered. A null or empty cell in a
//   required column is reported once as not_nullable. A value that does not
//   have (or cannot be coerced to) the declared type is reported once as a
//   type failure. Only a non-null, well-typed value goes on to the column's
//   checks, each of which is evaluated independently.
//
// ERROR HANDLING:
//   Failures are data, not errors. The caller routes a failed Result to the
//   error report; nothing here returns an error.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// =============================================================================
// FAILURES AND RESULT
// =============================================================================

// Failure is one violated rule.
type Failure struct {
	// Column is the column the rule applies to.
	Column string

	// Check is the name of the violated rule.
	Check string

	// Kind is the variant of the violated rule.
	Kind CheckKind

	// Index is the 0-based row position, nil for table-level failures.
	Index *int

	// Value is the offending cell value (null for table-level failures).
	Value types.Value

	// Message is the rendered, human-readable description.
	Message string
}

// Error implements the error interface.
func (f Failure) Error() string {
	if f.Index == nil {
		return fmt.Sprintf("[%s] %s", f.Check, f.Message)
	}
	return fmt.Sprintf("[%s] row %d: %s", f.Check, *f.Index+types.RowNoOffset, f.Message)
}

// Result is the outcome of a validation: either a coerced table or a
// non-empty list of failures, never both.
type Result struct {
	// Valid is true when no rule was violated.
	Valid bool

	// Table is the coerced table, set only when Valid.
	Table *types.Table

	// Failures lists every violation in evaluation order, set only when
	// not Valid.
	Failures []Failure
}

// CountByCheck tallies failures per check name.
func (r Result) CountByCheck() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Failures {
		counts[f.Check]++
	}
	return counts
}

// FailedRows returns the number of distinct rows with at least one failure.
func (r Result) FailedRows() int {
	rows := make(map[int]struct{})
	for _, f := range r.Failures {
		if f.Index != nil {
			rows[*f.Index] = struct{}{}
		}
	}
	return len(rows)
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks a deal table against DealSchema.
func Validate(table *types.Table, ls lookups.LookupSet) Result {
	return DealSchema().Validate(table, ls)
}

// Validate checks a table against the schema using the given lookups.
// The input table is not modified.
func (s *Schema) Validate(table *types.Table, ls lookups.LookupSet) Result {
	failures := s.validateColumns(table)
	bound := s.bind(ls)

	var present []int
	for i, col := range s.Columns {
		if table.HasColumn(col.Name) {
			present = append(present, i)
		}
	}

	valid := types.NewTable()
	valid.Name = table.Name
	for _, ci := range present {
		valid.Columns = append(valid.Columns, s.Columns[ci].Name)
	}

	for index, row := range table.Rows {
		out := types.Row{No: row.No, Fields: make(map[string]types.Value, len(present))}
		for _, ci := range present {
			col := s.Columns[ci]
			value, cellFailures := validateCell(col, bound[ci], row.Get(col.Name), index)
			failures = append(failures, cellFailures...)
			out.Fields[col.Name] = value
		}
		valid.Rows = append(valid.Rows, out)
	}

	if len(failures) > 0 {
		return Result{Failures: failures}
	}
	return Result{Valid: true, Table: valid}
}

// validateColumns runs the table-level presence, strictness and order
// checks.
func (s *Schema) validateColumns(table *types.Table) []Failure {
	var failures []Failure

	for _, col := range s.Columns {
		if !table.HasColumn(col.Name) {
			failures = append(failures, tableFailure(col.Name, CheckColumnInDataFrame))
		}
	}

	if s.Strict {
		for _, name := range table.Columns {
			if s.columnIndex(name) < 0 {
				failures = append(failures, tableFailure(name, CheckColumnInSchema))
			}
		}
	}

	if s.Ordered {
		last := -1
		for _, name := range table.Columns {
			idx := s.columnIndex(name)
			if idx < 0 {
				continue
			}
			if idx < last {
				failures = append(failures, tableFailure(name, CheckColumnOrdered))
				continue
			}
			last = idx
		}
	}

	return failures
}

func tableFailure(column, check string) Failure {
	bc := boundCheck{Check: Check{Name: check, Kind: KindStructural}}
	return Failure{
		Column:  column,
		Check:   check,
		Kind:    KindStructural,
		Value:   types.Null(),
		Message: render(column, bc, types.Null()),
	}
}

// =============================================================================
// CELL VALIDATION
// =============================================================================

// boundCheck is a Check resolved against one run's lookups.
type boundCheck struct {
	Check
	set     map[string]struct{}
	allowed []string
	dtype   DType
}

func (s *Schema) bind(ls lookups.LookupSet) [][]boundCheck {
	bound := make([][]boundCheck, len(s.Columns))
	for i, col := range s.Columns {
		for _, c := range col.Checks {
			bc := boundCheck{Check: c, dtype: col.Type}
			if c.Kind == KindMembership {
				bc.set, bc.allowed = c.allowedSet(ls)
			}
			bound[i] = append(bound[i], bc)
		}
	}
	return bound
}

// validateCell returns the coerced value and the failures of one cell.
func validateCell(col Column, checks []boundCheck, value types.Value, index int) (types.Value, []Failure) {
	if isMissing(value) {
		if col.Nullable {
			return types.Null(), nil
		}
		bc := boundCheck{Check: Check{Name: CheckNotNullable, Kind: KindStructural}}
		return value, []Failure{cellFailure(col.Name, bc, value, index)}
	}

	coerced, ok := coerce(col, value)
	if !ok {
		bc := boundCheck{Check: Check{Name: typeCheckName(col), Kind: KindType}, dtype: col.Type}
		return value, []Failure{cellFailure(col.Name, bc, value, index)}
	}

	var failures []Failure
	for _, bc := range checks {
		if !bc.passes(coerced) {
			failures = append(failures, cellFailure(col.Name, bc, coerced, index))
		}
	}
	return coerced, failures
}

// isMissing treats null and the empty string alike, so a blank cell is
// reported the same way whichever parser produced it.
func isMissing(value types.Value) bool {
	if value.IsNull() {
		return true
	}
	s, ok := value.Str()
	return ok && s == ""
}

func cellFailure(column string, bc boundCheck, value types.Value, index int) Failure {
	i := index
	return Failure{
		Column:  column,
		Check:   bc.Name,
		Kind:    bc.Kind,
		Index:   &i,
		Value:   value,
		Message: render(column, bc, value),
	}
}

func typeCheckName(col Column) string {
	if col.Coerce {
		return fmt.Sprintf("coerce_dtype('%s')", col.Type)
	}
	return fmt.Sprintf("dtype('%s')", col.Type)
}

// coerce converts a non-null value to the column's declared type.
func coerce(col Column, value types.Value) (types.Value, bool) {
	switch col.Type {
	case DTypeInt32:
		if !col.Coerce && value.Kind() != types.KindInt {
			return value, false
		}
		i, err := value.Int64()
		if err != nil || !fitsInt32(i) {
			return value, false
		}
		return types.Int(i), true
	default:
		if !col.Coerce {
			return value, value.Kind() == types.KindString
		}
		return types.String(coercedText(value)), true
	}
}

// coercedText renders a value for a str column. Floats are written in
// positional notation so large measures do not turn into exponent text.
func coercedText(value types.Value) string {
	if value.Kind() == types.KindFloat {
		f, _ := value.Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return value.String()
}

func fitsInt32(i int64) bool {
	return i >= math.MinInt32 && i <= math.MaxInt32
}

// passes evaluates the check against a coerced, non-null value.
func (bc boundCheck) passes(value types.Value) bool {
	switch bc.Kind {
	case KindStructural:
		if bc.Name != CheckStrLength {
			return true
		}
		s, ok := value.Str()
		if !ok {
			return false
		}
		n := utf8.RuneCountInString(s)
		return n >= bc.MinLen && (bc.MaxLen == 0 || n <= bc.MaxLen)
	case KindMembership:
		_, ok := bc.set[value.String()]
		return ok
	case KindPredicate:
		return bc.Predicate != nil && bc.Predicate(value)
	default:
		return true
	}
}
