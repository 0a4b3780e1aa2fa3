// =============================================================================
// Deal Pipeline - Parquet Reader
// =============================================================================
//
// Columnar files carry their own schema, so cells are read with the type
// declared by the file and no per-column converters are applied.
//
// SUPPORTED COLUMN TYPES:
//   string, int32, int64, float32, float64, boolean, date32, timestamp
//
// =============================================================================

package parquetio

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/apache/arrow/go/v7/parquet/file"
	"github.com/apache/arrow/go/v7/parquet/pqarrow"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// readChunkSize is the number of rows pulled per record batch.
const readChunkSize = 4096

// Read loads a parquet file into a table.
func Read(path string) (*types.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	columns := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		columns[i] = f.Name
	}
	table := types.NewTable(columns...)

	tr := array.NewTableReader(tbl, readChunkSize)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		n := int(rec.NumRows())
		base := len(table.Rows)
		for r := 0; r < n; r++ {
			table.Rows = append(table.Rows, types.Row{
				No:     base + r + types.RowNoOffset,
				Fields: make(map[string]types.Value, len(columns)),
			})
		}
		for c, name := range columns {
			col := rec.Column(c)
			for r := 0; r < n; r++ {
				v, err := cellValue(col, r)
				if err != nil {
					return nil, fmt.Errorf("column '%s': %w", name, err)
				}
				table.Rows[base+r].Fields[name] = v
			}
		}
	}

	table.LiftRowNo()
	return table, nil
}

// cellValue extracts row i of an arrow column.
func cellValue(col arrow.Array, i int) (types.Value, error) {
	if col.IsNull(i) {
		return types.Null(), nil
	}

	switch a := col.(type) {
	case *array.String:
		return types.String(a.Value(i)), nil
	case *array.Int64:
		return types.Int(a.Value(i)), nil
	case *array.Int32:
		return types.Int(int64(a.Value(i))), nil
	case *array.Float64:
		return types.Float(a.Value(i)), nil
	case *array.Float32:
		return types.Float(float64(a.Value(i))), nil
	case *array.Boolean:
		return types.Bool(a.Value(i)), nil
	case *array.Date32:
		days := int64(a.Value(i))
		return types.Time(time.Unix(days*86400, 0).UTC()), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return types.Time(timestampToTime(int64(a.Value(i)), unit)), nil
	default:
		return types.Null(), fmt.Errorf("unsupported column type %s", col.DataType())
	}
}

func timestampToTime(v int64, unit arrow.TimeUnit) time.Time {
	switch unit {
	case arrow.Second:
		return time.Unix(v, 0).UTC()
	case arrow.Millisecond:
		return time.UnixMilli(v).UTC()
	case arrow.Microsecond:
		return time.UnixMicro(v).UTC()
	default:
		return time.Unix(0, v).UTC()
	}
}
