// =============================================================================
// Deal Pipeline - Row Schema
// =============================================================================
//
// This module declares the column contract deal tables are validated
// against. The contract is data: an ordered list of column descriptors, each
// carrying its declared type, nullability and a list of checks. One engine
// (validator.go) evaluates every descriptor the same way.
//
// CHECK KINDS:
//   - structural : not-null, string length, column presence and order
//   - membership : value must belong to a fixed or lookup-provided set
//   - type       : value must have, or coerce to, the declared type
//   - predicate  : value must satisfy a named custom function
//
// DEAL COLUMNS:
//   | Column       | Type  | Coerce | Nullable | Checks                    |
//   |--------------|-------|--------|----------|---------------------------|
//   | DealName     | str   | no     | no       | str_length(min=1)         |
//   | D1           | str   | yes    | no       | is_numeric                |
//   | D2..D5       | str   | yes    | yes      | is_numeric                |
//   | IsActive     | str   | no     | no       | isin(Yes, No)             |
//   | CountryCode  | str   | yes    | no       | str_length(3), countries  |
//   | CurrencyCode | str   | yes    | no       | str_length(3), currencies |
//   | CompanyId    | int32 | yes    | no       | companies                 |
//
// =============================================================================

package validation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// Deal input column names, in declared order.
const (
	ColumnDealName     = "DealName"
	ColumnD1           = "D1"
	ColumnD2           = "D2"
	ColumnD3           = "D3"
	ColumnD4           = "D4"
	ColumnD5           = "D5"
	ColumnIsActive     = "IsActive"
	ColumnCountryCode  = "CountryCode"
	ColumnCurrencyCode = "CurrencyCode"
	ColumnCompanyID    = "CompanyId"
)

// DecimalColumns are the measure columns holding numeric text.
var DecimalColumns = []string{ColumnD1, ColumnD2, ColumnD3, ColumnD4, ColumnD5}

// =============================================================================
// CHECKS
// =============================================================================

// CheckKind tags the variant of a Check.
type CheckKind int

const (
	KindStructural CheckKind = iota
	KindMembership
	KindType
	KindPredicate
)

func (k CheckKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindMembership:
		return "membership"
	case KindType:
		return "type"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Check names used in failures.
const (
	CheckNotNullable       = "not_nullable"
	CheckStrLength         = "str_length"
	CheckColumnInDataFrame = "column_in_dataframe"
	CheckColumnInSchema    = "column_in_schema"
	CheckColumnOrdered     = "column_ordered"
	CheckIsIn              = "isin"
	CheckIsNumeric         = "is_numeric"
)

// Check is one element-wise rule. Only the fields of its Kind are set.
type Check struct {
	Name string
	Kind CheckKind

	// structural: string length bounds; MaxLen 0 means unbounded
	MinLen int
	MaxLen int

	// membership: a fixed set, or a set drawn from the run's lookups
	Values  []string
	Allowed func(lookups.LookupSet) []string

	// predicate
	Description string
	Predicate   func(types.Value) bool
}

// StrLength checks the length of a string value in characters.
func StrLength(min, max int) Check {
	return Check{Name: CheckStrLength, Kind: KindStructural, MinLen: min, MaxLen: max}
}

// IsIn checks membership in a fixed, case-sensitive set.
func IsIn(values ...string) Check {
	return Check{Name: CheckIsIn, Kind: KindMembership, Values: values}
}

// InLookup checks membership in a set taken from the run's lookups.
func InLookup(name string, allowed func(lookups.LookupSet) []string) Check {
	return Check{Name: name, Kind: KindMembership, Allowed: allowed}
}

// Predicate checks a custom condition. description completes the sentence
// "value must ...".
func Predicate(name, description string, fn func(types.Value) bool) Check {
	return Check{Name: name, Kind: KindPredicate, Description: description, Predicate: fn}
}

// IsNumeric reports whether the value's text parses as a decimal number.
func IsNumeric(v types.Value) bool {
	if v.IsNull() {
		return false
	}
	_, err := decimal.NewFromString(strings.TrimSpace(v.String()))
	return err == nil
}

// =============================================================================
// COLUMNS AND SCHEMA
// =============================================================================

// DType is a declared column type.
type DType int

const (
	DTypeString DType = iota
	DTypeInt32
)

func (d DType) String() string {
	if d == DTypeInt32 {
		return "int32"
	}
	return "str"
}

// Kind returns the value kind a validated cell of this type holds.
func (d DType) Kind() types.Kind {
	if d == DTypeInt32 {
		return types.KindInt
	}
	return types.KindString
}

// Column describes one declared column.
type Column struct {
	Name     string
	Type     DType
	Coerce   bool
	Nullable bool
	Checks   []Check
}

// Schema is an ordered column contract.
type Schema struct {
	Columns []Column

	// Strict rejects columns that are not declared.
	Strict bool

	// Ordered requires declared columns to appear in declared order.
	Ordered bool
}

// ColumnNames returns the declared column names in order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

func (s *Schema) columnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// DealSchema returns the contract for deal input tables.
func DealSchema() *Schema {
	numeric := Predicate(CheckIsNumeric, "be numeric", IsNumeric)
	measure := func(name string, nullable bool) Column {
		return Column{Name: name, Type: DTypeString, Coerce: true, Nullable: nullable, Checks: []Check{numeric}}
	}

	return &Schema{
		Strict:  true,
		Ordered: true,
		Columns: []Column{
			{Name: ColumnDealName, Type: DTypeString, Checks: []Check{StrLength(1, 0)}},
			measure(ColumnD1, false),
			measure(ColumnD2, true),
			measure(ColumnD3, true),
			measure(ColumnD4, true),
			measure(ColumnD5, true),
			{Name: ColumnIsActive, Type: DTypeString, Checks: []Check{IsIn("Yes", "No")}},
			{Name: ColumnCountryCode, Type: DTypeString, Coerce: true, Checks: []Check{
				StrLength(3, 3),
				InLookup("check_country_in_lookups", lookups.LookupSet.Countries),
			}},
			{Name: ColumnCurrencyCode, Type: DTypeString, Coerce: true, Checks: []Check{
				StrLength(3, 3),
				InLookup("check_currency_in_lookups", lookups.LookupSet.Currencies),
			}},
			{Name: ColumnCompanyID, Type: DTypeInt32, Coerce: true, Checks: []Check{
				InLookup("check_company_in_lookups", companyIDs),
			}},
		},
	}
}

func companyIDs(ls lookups.LookupSet) []string {
	ids := ls.CompanyIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = types.Int(int64(id)).String()
	}
	return out
}

// allowedSet resolves a membership check against the run's lookups and
// returns the set plus its sorted listing. Lookup accessors already return
// their values in order.
func (c Check) allowedSet(ls lookups.LookupSet) (map[string]struct{}, []string) {
	values := c.Values
	if c.Allowed != nil {
		values = c.Allowed(ls)
	}
	set := make(map[string]struct{}, len(values))
	listing := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := set[v]; seen {
			continue
		}
		set[v] = struct{}{}
		listing = append(listing, v)
	}
	if c.Allowed == nil {
		sort.Strings(listing)
	}
	return set, listing
}
