package parquetio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

func TestWriteRead(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 10, 30, 0, 123000, time.UTC)

	table := types.NewTable("RowNo", "DealName", "D1", "IsActive", "CompanyId", "AsOfDate", "Notes")
	table.Append(types.Int(2), types.String("Airbus"), types.Decimal(decimal.RequireFromString("129389.3232453454345333387439283")),
		types.Bool(true), types.Int(1), types.Time(asOf), types.Null())
	table.Append(types.Int(5), types.String("Boeing"), types.Null(),
		types.Bool(false), types.Int(2), types.Time(asOf), types.Null())

	path := filepath.Join(t.TempDir(), "nested", "out.parquet")
	require.NoError(t, Write(table, path, "gzip"))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"DealName", "D1", "IsActive", "CompanyId", "AsOfDate", "Notes"}, got.Columns)
	require.Equal(t, 2, got.Len())

	first := got.Rows[0]
	assert.Equal(t, 2, first.No)
	assert.Equal(t, "129389.3232453454345333387439283", first.Get("D1").String())
	assert.True(t, first.Get("IsActive").Equal(types.Bool(true)))
	assert.True(t, first.Get("CompanyId").Equal(types.Int(1)))
	ts, ok := first.Get("AsOfDate").TimeValue()
	require.True(t, ok)
	assert.True(t, ts.Equal(asOf))
	assert.True(t, first.Get("Notes").IsNull())

	second := got.Rows[1]
	assert.Equal(t, 5, second.No)
	assert.True(t, second.Get("D1").IsNull())
}

func TestWrite_MixedNumbers(t *testing.T) {
	table := types.NewTable("N")
	table.Append(types.Int(1))
	table.Append(types.Float(2.5))

	path := filepath.Join(t.TempDir(), "mixed.parquet")
	require.NoError(t, Write(table, path, "snappy"))

	got, err := Read(path)
	require.NoError(t, err)
	assert.True(t, got.Rows[0].Get("N").Equal(types.Float(1)))
	assert.True(t, got.Rows[1].Get("N").Equal(types.Float(2.5)))
}

func TestWrite_UnknownCompression(t *testing.T) {
	table := types.NewTable("A")
	err := Write(table, filepath.Join(t.TempDir(), "x.parquet"), "lz77")
	assert.Error(t, err)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}
