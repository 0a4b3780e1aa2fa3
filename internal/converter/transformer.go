// =============================================================================
// Deal Pipeline - Transformer Module
// =============================================================================
//
// This module turns a validated deal table into the canonical output table.
//
// PER-ROW OPERATIONS:
//   - D1..D5        : exact decimals built from the validated numeric text;
//                     null stays null
//   - IsActive      : "Yes" -> true, "No" -> false
//   - CompanyName   : looked up from the run's companies
//   - RowHash       : MD5 of the row's validated values as one CSV record
//   - AsOfDate      : the run start, identical for every row
//   - ProcessIdentifier : the run id
//   - RowNo         : renumbered densely from the header offset
//
// OUTPUT COLUMNS:
//   RowNo, DealName, D1..D5, IsActive, CountryCode, CurrencyCode, CompanyId,
//   CompanyName, AsOfDate, ProcessIdentifier, RowHash
//
// PRECONDITION:
//   The table has passed validation. A value that validation should have
//   rejected is a TransformInvariantError, never silently repaired.
//
// =============================================================================

package converter

import (
	"bytes"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
	"github.com/ginjaninja78/deal-pipeline/internal/validation"
)

// Output-only column names.
const (
	ColumnCompanyName       = "CompanyName"
	ColumnAsOfDate          = "AsOfDate"
	ColumnProcessIdentifier = "ProcessIdentifier"
	ColumnRowHash           = "RowHash"
)

// InputColumns is the canonical order of the validated input columns.
var InputColumns = validation.DealSchema().ColumnNames()

// OutputColumns is the canonical order of the output columns.
var OutputColumns = append(append([]string{types.RowNoColumn}, InputColumns...),
	ColumnCompanyName, ColumnAsOfDate, ColumnProcessIdentifier, ColumnRowHash)

// =============================================================================
// ERRORS
// =============================================================================

// ErrTransformInvariant is matched (errors.Is) by every TransformInvariantError.
var ErrTransformInvariant = errors.New("transform invariant violated")

// TransformInvariantError reports a value that validation should have
// rejected reaching the transform.
type TransformInvariantError struct {
	RowNo  int
	Column string
	Value  types.Value
	Reason string
}

func (e *TransformInvariantError) Error() string {
	return fmt.Sprintf("row %d, column '%s': %s (value: '%s')", e.RowNo, e.Column, e.Reason, e.Value.String())
}

func (e *TransformInvariantError) Is(target error) bool { return target == ErrTransformInvariant }

// =============================================================================
// TRANSFORM
// =============================================================================

// Transform builds the output table. The input table is not modified.
func Transform(table *types.Table, runID string, asOf time.Time, ls lookups.LookupSet) (*types.Table, error) {
	out := types.NewTable(OutputColumns...)
	out.Name = table.Name
	out.Rows = make([]types.Row, 0, len(table.Rows))

	processID := types.String(runID)
	asOfDate := types.Time(asOf)

	for i, row := range table.Rows {
		rowNo := i + types.RowNoOffset
		fields := make(map[string]types.Value, len(OutputColumns))
		fields[types.RowNoColumn] = types.Int(int64(rowNo))

		for _, col := range InputColumns {
			fields[col] = row.Get(col)
		}

		for _, col := range validation.DecimalColumns {
			d, err := toDecimal(row.Get(col))
			if err != nil {
				return nil, &TransformInvariantError{RowNo: rowNo, Column: col, Value: row.Get(col), Reason: err.Error()}
			}
			fields[col] = d
		}

		active, err := toBool(row.Get(validation.ColumnIsActive))
		if err != nil {
			return nil, &TransformInvariantError{RowNo: rowNo, Column: validation.ColumnIsActive, Value: row.Get(validation.ColumnIsActive), Reason: err.Error()}
		}
		fields[validation.ColumnIsActive] = active

		name, err := companyName(row.Get(validation.ColumnCompanyID), ls)
		if err != nil {
			return nil, &TransformInvariantError{RowNo: rowNo, Column: validation.ColumnCompanyID, Value: row.Get(validation.ColumnCompanyID), Reason: err.Error()}
		}
		fields[ColumnCompanyName] = name

		hash, err := RowHash(row)
		if err != nil {
			return nil, fmt.Errorf("failed to hash row %d: %w", rowNo, err)
		}
		fields[ColumnRowHash] = types.String(hash)
		fields[ColumnAsOfDate] = asOfDate
		fields[ColumnProcessIdentifier] = processID

		out.Rows = append(out.Rows, types.Row{No: rowNo, Fields: fields})
	}

	return out, nil
}

// toDecimal converts a validated measure to an exact decimal. Text is read
// digit for digit; a float source keeps its shortest round-trip value.
func toDecimal(v types.Value) (types.Value, error) {
	if v.IsNull() {
		return types.Null(), nil
	}
	d, err := v.Decimal()
	if err != nil {
		return types.Null(), err
	}
	return types.Decimal(d), nil
}

func toBool(v types.Value) (types.Value, error) {
	s, _ := v.Str()
	switch {
	case v.Kind() == types.KindString && s == "Yes":
		return types.Bool(true), nil
	case v.Kind() == types.KindString && s == "No":
		return types.Bool(false), nil
	default:
		return types.Null(), fmt.Errorf("expected \"Yes\" or \"No\"")
	}
}

func companyName(v types.Value, ls lookups.LookupSet) (types.Value, error) {
	id, err := v.Int64()
	if err != nil {
		return types.Null(), err
	}
	name, ok := ls.CompanyName(int32(id))
	if !ok || int64(int32(id)) != id {
		return types.Null(), fmt.Errorf("company is not in lookups")
	}
	return types.String(name), nil
}

// RowHash returns the lowercase hex MD5 of the row's validated input values,
// written as one CSV record in canonical column order. Null is written as an
// empty field.
func RowHash(row types.Row) (string, error) {
	record := make([]string, len(InputColumns))
	for i, col := range InputColumns {
		record[i] = row.Get(col).String()
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(record); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	sum := md5.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
