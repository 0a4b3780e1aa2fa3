package writer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/deal-pipeline/internal/reader"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

func sampleTable() *types.Table {
	table := types.NewTable("RowNo", "DealName", "D1", "IsActive", "CompanyId", "Errors")
	table.Append(types.Int(2), types.String("Airbus, \"A320\""),
		types.Decimal(decimal.RequireFromString("22219387192.1293")),
		types.Bool(false), types.Int(4), types.String("first\nsecond"))
	table.Append(types.Int(3), types.String("Kindle"), types.Null(),
		types.Bool(true), types.Int(1), types.Null())
	return table
}

func TestWriters_RoundTripDetect(t *testing.T) {
	tests := []struct {
		format reader.Format
		file   string
	}{
		{reader.FormatCSV, "out.csv"},
		{reader.FormatYAML, "out.yaml"},
		{reader.FormatExcel, "out.xlsx"},
		{reader.FormatParquet, "out.parquet"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := New(tt.format, Options{SheetName: "Errors", WrapColumn: "Errors"})
			require.NoError(t, err)

			dest := filepath.Join(t.TempDir(), "nested", "dir", tt.file)
			require.NoError(t, w.Write(sampleTable(), dest))

			format, err := reader.DetectFormat(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)

			tables, err := reader.Read(dest, nil)
			require.NoError(t, err)
			require.Len(t, tables, 1)

			got := tables[0]
			assert.Equal(t, []string{"DealName", "D1", "IsActive", "CompanyId", "Errors"}, got.Columns)
			require.Equal(t, 2, got.Len())
			assert.Equal(t, 2, got.Rows[0].No)
			assert.Equal(t, 3, got.Rows[1].No)
			assert.Equal(t, "Airbus, \"A320\"", got.Rows[0].Get("DealName").String())
			assert.Equal(t, "22219387192.1293", got.Rows[0].Get("D1").String())
			assert.Equal(t, "first\nsecond", got.Rows[0].Get("Errors").String())
			assert.True(t, got.Rows[1].Get("D1").IsNull())
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(reader.FormatUnknown, Options{})
	assert.Error(t, err)
}

func TestExcelWriter_WrapColumn(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "errors.xlsx")
	w := &ExcelWriter{SheetName: "Errors", WrapColumn: "Errors"}
	require.NoError(t, w.Write(sampleTable(), dest))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Errors"}, f.GetSheetList())

	width, err := f.GetColWidth("Errors", "F")
	require.NoError(t, err)
	assert.Equal(t, float64(wrapColumnWidth), width)

	styleID, err := f.GetColStyle("Errors", "F")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Alignment)
	assert.True(t, style.Alignment.WrapText)
	require.NotNil(t, style.Font)
	assert.Equal(t, "FF0000", style.Font.Color)
}

func TestYAMLWriter_Types(t *testing.T) {
	asOf := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	table := types.NewTable("N", "F", "B", "T", "S")
	table.Append(types.Int(7), types.Float(1.5), types.Bool(true), types.Time(asOf), types.String("007"))

	dest := filepath.Join(t.TempDir(), "typed.yaml")
	require.NoError(t, (&YAMLWriter{}).Write(table, dest))

	tables, err := reader.Read(dest, nil)
	require.NoError(t, err)
	row := tables[0].Rows[0]
	assert.True(t, row.Get("N").Equal(types.Int(7)))
	assert.True(t, row.Get("F").Equal(types.Float(1.5)))
	assert.True(t, row.Get("B").Equal(types.Bool(true)))
	assert.True(t, row.Get("S").Equal(types.String("007")))
}
