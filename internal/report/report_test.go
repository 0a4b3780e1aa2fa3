package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/deal-pipeline/internal/csvparser"
	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
	"github.com/ginjaninja78/deal-pipeline/internal/validation"
)

func index(i int) *int { return &i }

func sourceTable() *types.Table {
	table := types.NewTable("DealName", "D1")
	table.Append(types.String("Airbus"), types.String("1"))
	table.Append(types.String("Kindle"), types.Null())
	table.Append(types.String("Boeing"), types.String("x"))
	return table
}

func TestRender(t *testing.T) {
	failures := []validation.Failure{
		{Column: "D1", Check: "not_nullable", Index: index(1), Message: "Column 'D1' must not be empty."},
		{Column: "D1", Check: "is_numeric", Index: index(2), Message: "Column 'D1' value 'x' must be numeric."},
		{Column: "IsActive", Check: "isin", Index: index(1), Message: "Column 'IsActive' value 'False' must be one of: No, Yes."},
	}

	out := Render(sourceTable(), failures)

	assert.Equal(t, []string{"RowNo", "DealName", "D1", "Errors"}, out.Columns)
	require.Equal(t, 2, out.Len())

	kindle := out.Rows[0]
	assert.Equal(t, 3, kindle.No)
	assert.True(t, kindle.Get("RowNo").Equal(types.Int(3)))
	assert.Equal(t, "Kindle", kindle.Get("DealName").String())
	assert.Equal(t, "Column 'D1' must not be empty.\nColumn 'IsActive' value 'False' must be one of: No, Yes.",
		kindle.Get("Errors").String())

	boeing := out.Rows[1]
	assert.Equal(t, 4, boeing.No)
	assert.Equal(t, "Column 'D1' value 'x' must be numeric.", boeing.Get("Errors").String())
}

func TestRender_NoFailures(t *testing.T) {
	out := Render(sourceTable(), nil)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, []string{"RowNo", "DealName", "D1", "Errors"}, out.Columns)
}

func TestRender_TableLevelFailures(t *testing.T) {
	failures := []validation.Failure{
		{Column: "D2", Check: "column_in_dataframe", Message: "Column 'D2' must exist."},
		{Column: "D1", Check: "is_numeric", Index: index(2), Message: "Column 'D1' value 'x' must be numeric."},
	}

	out := Render(sourceTable(), failures)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "Column 'D2' must exist.", out.Rows[0].Get("Errors").String())
	assert.Equal(t, "Column 'D2' must exist.\nColumn 'D1' value 'x' must be numeric.", out.Rows[2].Get("Errors").String())
}

func TestRender_FromValidation(t *testing.T) {
	table := types.NewTable(validation.DealSchema().ColumnNames()...)
	table.Append(types.String("Kindle"), types.String(""), types.Null(), types.Null(), types.Null(), types.Null(),
		types.String("False"), types.String("USA"), types.String("USD"), types.Int(1))

	ls := lookups.New([]string{"USA"}, []string{"USD"}, map[int32]string{1: "Amazon"})
	result := validation.Validate(table, ls)
	require.False(t, result.Valid)

	out := Render(table, result.Failures)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 2, out.Rows[0].No)
	assert.Equal(t, "Column 'D1' must not be empty.\nColumn 'IsActive' value 'False' must be one of: No, Yes.",
		out.Rows[0].Get("Errors").String())
}

func TestRender_SourceRowNumbers(t *testing.T) {
	csv := "RowNo,DealName,D1,D2,D3,D4,D5,IsActive,CountryCode,CurrencyCode,CompanyId\n" +
		"2,Airbus,10.5,,,,,Yes,USA,USD,1\n" +
		"5,Kindle,,,,,,False,USA,USD,1\n"
	table, err := csvparser.ParseReader(strings.NewReader(csv), csvparser.DefaultSettings(), nil)
	require.NoError(t, err)
	require.Equal(t, 5, table.Rows[1].No)

	ls := lookups.New([]string{"USA"}, []string{"USD"}, map[int32]string{1: "Amazon"})
	result := validation.Validate(table, ls)
	require.False(t, result.Valid)
	require.Len(t, result.Failures, 2)

	out := Render(table, result.Failures)
	require.Equal(t, 1, out.Len())
	kindle := out.Rows[0]
	assert.Equal(t, 5, kindle.No)
	assert.True(t, kindle.Get("RowNo").Equal(types.Int(5)))
	assert.Equal(t, "Kindle", kindle.Get("DealName").String())
	assert.Equal(t, "Column 'D1' must not be empty.\nColumn 'IsActive' value 'False' must be one of: No, Yes.",
		kindle.Get("Errors").String())
}

func TestRender_RowNoDataColumn(t *testing.T) {
	table := types.NewTable("DealName", "RowNo", "D1")
	table.Append(types.String("Airbus"), types.Int(9), types.String("x"))

	failures := []validation.Failure{
		{Column: "RowNo", Check: "column_in_schema", Message: "Column 'RowNo' is not in the schema."},
		{Column: "D1", Check: "is_numeric", Index: index(0), Message: "Column 'D1' value 'x' must be numeric."},
	}

	out := Render(table, failures)
	assert.Equal(t, []string{"RowNo", "DealName", "D1", "Errors"}, out.Columns)
	require.Equal(t, 1, out.Len())
	assert.True(t, out.Rows[0].Get("RowNo").Equal(types.Int(2)))
}

func TestRender_IndexOutOfRange(t *testing.T) {
	failures := []validation.Failure{
		{Column: "D1", Check: "is_numeric", Index: index(7), Message: "Column 'D1' value 'x' must be numeric."},
	}
	assert.Equal(t, 0, Render(sourceTable(), failures).Len())
}
