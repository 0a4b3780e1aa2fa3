package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

func testLookups() lookups.LookupSet {
	return lookups.New(
		[]string{"USA", "BGR"},
		[]string{"USD", "BGN", "US"},
		map[int32]string{1: "Amazon", 4: "Bulgaria Air"},
	)
}

// deal describes one input row; nil fields are null.
type deal struct {
	name, d1, d2, d3, d4, d5, active, country, currency any
	company                                             any
}

func validDeal() deal {
	return deal{
		name: "Airbus A320", d1: "22219387192.1293",
		active: "No", country: "BGR", currency: "BGN", company: "4",
	}
}

func dealTable(deals ...deal) *types.Table {
	table := types.NewTable(DealSchema().ColumnNames()...)
	for _, d := range deals {
		table.Append(
			types.FromAny(d.name), types.FromAny(d.d1), types.FromAny(d.d2), types.FromAny(d.d3),
			types.FromAny(d.d4), types.FromAny(d.d5), types.FromAny(d.active),
			types.FromAny(d.country), types.FromAny(d.currency), types.FromAny(d.company),
		)
	}
	return table
}

func TestValidate_Valid(t *testing.T) {
	second := validDeal()
	second.name = "Kindle"
	second.d2 = 129389.3232453454345333387439283
	second.d5 = ""
	second.company = 1
	second.country = "USA"
	second.currency = "USD"
	second.active = "Yes"

	table := dealTable(validDeal(), second)
	result := Validate(table, testLookups())

	require.True(t, result.Valid, "unexpected failures: %v", result.Failures)
	require.Empty(t, result.Failures)
	require.NotNil(t, result.Table)

	schema := DealSchema()
	assert.Equal(t, schema.ColumnNames(), result.Table.Columns)
	for _, row := range result.Table.Rows {
		for _, col := range schema.Columns {
			v := row.Get(col.Name)
			if v.IsNull() {
				assert.True(t, col.Nullable, "column %s", col.Name)
				continue
			}
			assert.Equal(t, col.Type.Kind(), v.Kind(), "column %s", col.Name)
		}
	}

	first := result.Table.Rows[0]
	assert.Equal(t, "22219387192.1293", first.Get(ColumnD1).String())
	assert.True(t, first.Get(ColumnCompanyID).Equal(types.Int(4)))
	assert.Equal(t, 2, first.No)

	kindle := result.Table.Rows[1]
	assert.Equal(t, "129389.32324534544", kindle.Get(ColumnD2).String())
	assert.True(t, kindle.Get(ColumnD5).IsNull())
}

func TestValidate_FloatMeasuresKeepPositionalText(t *testing.T) {
	d := validDeal()
	d.d1 = 1234567.5
	d.d2 = 22219387192.1293

	result := Validate(dealTable(d), testLookups())
	require.True(t, result.Valid, "unexpected failures: %v", result.Failures)

	row := result.Table.Rows[0]
	assert.Equal(t, "1234567.5", row.Get(ColumnD1).String())
	assert.Equal(t, "22219387192.1293", row.Get(ColumnD2).String())
}

func TestValidate_KindleScenario(t *testing.T) {
	table := dealTable(deal{
		name: "Kindle", d1: "", active: "False",
		country: "USA", currency: "USD", company: 1,
	})

	result := Validate(table, testLookups())

	require.False(t, result.Valid)
	assert.Nil(t, result.Table)
	require.Len(t, result.Failures, 2)

	assert.Equal(t, ColumnD1, result.Failures[0].Column)
	assert.Equal(t, CheckNotNullable, result.Failures[0].Check)
	assert.Equal(t, KindStructural, result.Failures[0].Kind)

	assert.Equal(t, ColumnIsActive, result.Failures[1].Column)
	assert.Equal(t, CheckIsIn, result.Failures[1].Check)
	assert.Equal(t, KindMembership, result.Failures[1].Kind)
	assert.Equal(t, "Column 'IsActive' value 'False' must be one of: No, Yes.", result.Failures[1].Message)

	for _, f := range result.Failures {
		require.NotNil(t, f.Index)
		assert.Equal(t, 0, *f.Index)
	}
}

func TestValidate_SingleRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *deal)
		column string
		check  string
		kind   CheckKind
	}{
		{"empty deal name", func(d *deal) { d.name = "" }, ColumnDealName, CheckNotNullable, KindStructural},
		{"numeric deal name", func(d *deal) { d.name = 5 }, ColumnDealName, "dtype('str')", KindType},
		{"missing D1", func(d *deal) { d.d1 = nil }, ColumnD1, CheckNotNullable, KindStructural},
		{"text D1", func(d *deal) { d.d1 = "abc" }, ColumnD1, CheckIsNumeric, KindPredicate},
		{"text D3", func(d *deal) { d.d3 = "1,5" }, ColumnD3, CheckIsNumeric, KindPredicate},
		{"lower-case IsActive", func(d *deal) { d.active = "yes" }, ColumnIsActive, CheckIsIn, KindMembership},
		{"boolean IsActive", func(d *deal) { d.active = true }, ColumnIsActive, "dtype('str')", KindType},
		{"unknown country", func(d *deal) { d.country = "GBR" }, ColumnCountryCode, "check_country_in_lookups", KindMembership},
		{"short currency", func(d *deal) { d.currency = "US" }, ColumnCurrencyCode, CheckStrLength, KindStructural},
		{"unknown currency", func(d *deal) { d.currency = "EUR" }, ColumnCurrencyCode, "check_currency_in_lookups", KindMembership},
		{"text company", func(d *deal) { d.company = "abc" }, ColumnCompanyID, "coerce_dtype('int32')", KindType},
		{"fractional company", func(d *deal) { d.company = 1.5 }, ColumnCompanyID, "coerce_dtype('int32')", KindType},
		{"company beyond int32", func(d *deal) { d.company = int64(1) << 40 }, ColumnCompanyID, "coerce_dtype('int32')", KindType},
		{"unknown company", func(d *deal) { d.company = 99 }, ColumnCompanyID, "check_company_in_lookups", KindMembership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDeal()
			tt.mutate(&d)

			result := Validate(dealTable(validDeal(), d), testLookups())

			require.False(t, result.Valid)
			require.Len(t, result.Failures, 1, "failures: %v", result.Failures)
			f := result.Failures[0]
			assert.Equal(t, tt.column, f.Column)
			assert.Equal(t, tt.check, f.Check)
			assert.Equal(t, tt.kind, f.Kind)
			require.NotNil(t, f.Index)
			assert.Equal(t, 1, *f.Index)
			assert.NotEmpty(t, f.Message)
		})
	}
}

func TestValidate_Exhaustive(t *testing.T) {
	bad := deal{
		name: "", d1: "abc", d2: "x", active: "Maybe",
		country: "GBRX", currency: "EUR", company: "abc",
	}
	table := dealTable(bad, validDeal(), bad)

	result := Validate(table, testLookups())
	require.False(t, result.Valid)

	// Per bad row: DealName, D1, D2, IsActive, CountryCode length and
	// membership, CurrencyCode membership, CompanyId type.
	assert.Len(t, result.Failures, 16)
	assert.Equal(t, 2, result.FailedRows())

	counts := result.CountByCheck()
	assert.Equal(t, 4, counts[CheckIsNumeric])
	assert.Equal(t, 2, counts[CheckStrLength])
	assert.Equal(t, 2, counts["coerce_dtype('int32')"])

	for _, f := range result.Failures {
		require.NotNil(t, f.Index)
		assert.NotEqual(t, 1, *f.Index)
	}
}

func TestValidate_TableLevel(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		table := dealTable(validDeal(), validDeal())
		table.Columns = append(table.Columns[:2], table.Columns[3:]...)

		result := Validate(table, testLookups())
		require.False(t, result.Valid)
		require.Len(t, result.Failures, 1)

		f := result.Failures[0]
		assert.Equal(t, ColumnD2, f.Column)
		assert.Equal(t, CheckColumnInDataFrame, f.Check)
		assert.Nil(t, f.Index)
		assert.Equal(t, "Column 'D2' must exist.", f.Message)
		assert.Equal(t, "[column_in_dataframe] Column 'D2' must exist.", f.Error())
	})

	t.Run("missing column does not stop row checks", func(t *testing.T) {
		d := validDeal()
		d.active = "Maybe"
		table := dealTable(d)
		table.Columns = table.Columns[:len(table.Columns)-1]

		result := Validate(table, testLookups())
		require.Len(t, result.Failures, 2)
		assert.Equal(t, CheckColumnInDataFrame, result.Failures[0].Check)
		assert.Equal(t, CheckIsIn, result.Failures[1].Check)
	})

	t.Run("undeclared column", func(t *testing.T) {
		table := dealTable(validDeal())
		table.Columns = append(table.Columns, "Extra")

		result := Validate(table, testLookups())
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "Extra", result.Failures[0].Column)
		assert.Equal(t, CheckColumnInSchema, result.Failures[0].Check)
	})

	t.Run("reordered columns", func(t *testing.T) {
		table := dealTable(validDeal())
		table.Columns[0], table.Columns[1] = table.Columns[1], table.Columns[0]

		result := Validate(table, testLookups())
		require.Len(t, result.Failures, 1)
		assert.Equal(t, ColumnDealName, result.Failures[0].Column)
		assert.Equal(t, CheckColumnOrdered, result.Failures[0].Check)
	})
}

func TestValidate_EmptyLookups(t *testing.T) {
	d := validDeal()
	d.active = "Maybe"
	table := dealTable(validDeal(), d)

	result := Validate(table, lookups.LookupSet{})
	require.False(t, result.Valid)

	counts := result.CountByCheck()
	assert.Equal(t, 2, counts["check_country_in_lookups"])
	assert.Equal(t, 2, counts["check_currency_in_lookups"])
	assert.Equal(t, 2, counts["check_company_in_lookups"])
	assert.Equal(t, 1, counts[CheckIsIn])
	assert.Len(t, result.Failures, 7)

	for _, f := range result.Failures {
		if f.Check == "check_company_in_lookups" {
			assert.Contains(t, f.Message, "(none)")
		}
	}
}

func TestValidate_LookupsArePerCall(t *testing.T) {
	table := dealTable(validDeal())

	assert.False(t, Validate(table, lookups.LookupSet{}).Valid)
	assert.True(t, Validate(table, testLookups()).Valid)
	assert.False(t, Validate(table, lookups.LookupSet{}).Valid)
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	table := dealTable(validDeal())
	before := table.Clone()

	result := Validate(table, testLookups())
	require.True(t, result.Valid)

	assert.Equal(t, before.Columns, table.Columns)
	assert.True(t, table.Rows[0].Get(ColumnCompanyID).Equal(types.String("4")))
	assert.True(t, result.Table.Rows[0].Get(ColumnCompanyID).Equal(types.Int(4)))
}

func TestMembershipMessage_ListsCompanies(t *testing.T) {
	d := validDeal()
	d.company = 99
	result := Validate(dealTable(d), testLookups())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Column 'CompanyId' value '99' must be one of: 1, 4.", result.Failures[0].Message)
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   types.Value
		want bool
	}{
		{types.String("12"), true},
		{types.String(" 12.50 "), true},
		{types.String("-0.001"), true},
		{types.String("1e5"), true},
		{types.String("12a"), false},
		{types.String(""), false},
		{types.Float(1.25), true},
		{types.Null(), false},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumeric(tt.in))
		})
	}
}
