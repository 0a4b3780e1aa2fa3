// =============================================================================
// Deal Pipeline - Lookup Sets
// =============================================================================
//
// This module builds the reference data rows are validated against:
//   - Countries  : valid country codes
//   - Currencies : valid currency codes
//   - Companies  : company id -> company display name
//
// A LookupSet is immutable once built and is passed explicitly to every
// validation and transform call, so concurrent runs never share lookups.
//
// LOOKUP FILE LAYOUT:
//   Sheet index 1 (or the only table of a single-table source) with the
//   columns CompanyId, CompanyName, Currencies, Countries. The columns are
//   independent lists that happen to share rows, so their lengths may differ.
//
// =============================================================================

package lookups

import (
	"fmt"
	"math"
	"sort"

	"github.com/ginjaninja78/deal-pipeline/internal/reader"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// LookupSheet is the sheet index holding the lookup columns.
const LookupSheet = 1

// Lookup file column names.
const (
	ColumnCompanyID   = "CompanyId"
	ColumnCompanyName = "CompanyName"
	ColumnCurrencies  = "Currencies"
	ColumnCountries   = "Countries"
)

// LookupSet is the reference data for one run. The zero value is an empty
// set against which every referential check fails.
type LookupSet struct {
	countries  map[string]struct{}
	currencies map[string]struct{}
	companies  map[int32]string
}

// New creates a LookupSet from explicit values. Later company entries win
// over earlier ones with the same id.
func New(countries, currencies []string, companies map[int32]string) LookupSet {
	ls := LookupSet{
		countries:  make(map[string]struct{}, len(countries)),
		currencies: make(map[string]struct{}, len(currencies)),
		companies:  make(map[int32]string, len(companies)),
	}
	for _, c := range countries {
		ls.countries[c] = struct{}{}
	}
	for _, c := range currencies {
		ls.currencies[c] = struct{}{}
	}
	for id, name := range companies {
		ls.companies[id] = name
	}
	return ls
}

// Build reads the lookup file at path.
func Build(path string) (LookupSet, error) {
	table, err := reader.ReadSheet(path, types.Converters{ColumnCompanyID: reader.ToNumeric}, LookupSheet)
	if err != nil {
		return LookupSet{}, fmt.Errorf("failed to read lookups: %w", err)
	}
	return FromTable(table), nil
}

// FromTable extracts the lookup columns of a table. Rows with a null or
// non-integer company id, or a null company name, are dropped; nulls are
// dropped from the currency and country lists. Missing columns produce
// empty sets.
func FromTable(table *types.Table) LookupSet {
	ls := New(nil, nil, nil)

	for _, row := range table.Rows {
		if id, name, ok := companyEntry(row); ok {
			ls.companies[id] = name
		}
		if v := row.Get(ColumnCurrencies); !v.IsNull() {
			ls.currencies[v.String()] = struct{}{}
		}
		if v := row.Get(ColumnCountries); !v.IsNull() {
			ls.countries[v.String()] = struct{}{}
		}
	}

	return ls
}

func companyEntry(row types.Row) (int32, string, bool) {
	idValue := row.Get(ColumnCompanyID)
	nameValue := row.Get(ColumnCompanyName)
	if idValue.IsNull() || nameValue.IsNull() {
		return 0, "", false
	}

	id, err := idValue.Int64()
	if err != nil || id > math.MaxInt32 || id < math.MinInt32 {
		return 0, "", false
	}
	return int32(id), nameValue.String(), true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// HasCountry reports whether code is a known country.
func (ls LookupSet) HasCountry(code string) bool {
	_, ok := ls.countries[code]
	return ok
}

// HasCurrency reports whether code is a known currency.
func (ls LookupSet) HasCurrency(code string) bool {
	_, ok := ls.currencies[code]
	return ok
}

// CompanyName returns the display name of a company.
func (ls LookupSet) CompanyName(id int32) (string, bool) {
	name, ok := ls.companies[id]
	return name, ok
}

// Countries returns the known country codes, sorted.
func (ls LookupSet) Countries() []string {
	return sortedKeys(ls.countries)
}

// Currencies returns the known currency codes, sorted.
func (ls LookupSet) Currencies() []string {
	return sortedKeys(ls.currencies)
}

// CompanyIDs returns the known company ids, sorted.
func (ls LookupSet) CompanyIDs() []int32 {
	ids := make([]int32, 0, len(ls.companies))
	for id := range ls.companies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Companies returns a copy of the company map.
func (ls LookupSet) Companies() map[int32]string {
	out := make(map[int32]string, len(ls.companies))
	for id, name := range ls.companies {
		out[id] = name
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
