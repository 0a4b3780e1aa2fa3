package parquetio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/apache/arrow/go/v7/parquet"
	"github.com/apache/arrow/go/v7/parquet/compress"
	"github.com/apache/arrow/go/v7/parquet/pqarrow"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// Compression names accepted by Write.
var codecs = map[string]compress.Compression{
	"":             compress.Codecs.Gzip,
	"gzip":         compress.Codecs.Gzip,
	"snappy":       compress.Codecs.Snappy,
	"zstd":         compress.Codecs.Zstd,
	"brotli":       compress.Codecs.Brotli,
	"uncompressed": compress.Codecs.Uncompressed,
	"none":         compress.Codecs.Uncompressed,
}

// Write stores the table as a parquet file, creating parent directories.
// Decimal columns are written as their exact text.
func Write(table *types.Table, path, compression string) error {
	codec, ok := codecs[compression]
	if !ok {
		return fmt.Errorf("unsupported parquet compression: %s", compression)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	schema := arrowSchema(table)
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for c, col := range table.Columns {
		fb := b.Field(c)
		for _, row := range table.Rows {
			if err := appendValue(fb, row.Get(col)); err != nil {
				return fmt.Errorf("column '%s' row %d: %w", col, row.No, err)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	fw, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write parquet records: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// arrowSchema infers one nullable arrow field per column from the column's
// non-null values. Mixed or all-null columns are stored as strings.
func arrowSchema(table *types.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(table.Columns))
	for i, col := range table.Columns {
		fields[i] = arrow.Field{Name: col, Type: columnType(table.Column(col)), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func columnType(values []types.Value) arrow.DataType {
	kind := types.KindNull
	for _, v := range values {
		switch {
		case v.IsNull():
			continue
		case kind == types.KindNull:
			kind = v.Kind()
		case kind == v.Kind():
		case isNumber(kind) && isNumber(v.Kind()):
			kind = types.KindFloat
		default:
			return arrow.BinaryTypes.String
		}
	}

	switch kind {
	case types.KindInt:
		return arrow.PrimitiveTypes.Int64
	case types.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case types.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case types.KindTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

func isNumber(k types.Kind) bool {
	return k == types.KindInt || k == types.KindFloat
}

func appendValue(fb array.Builder, v types.Value) error {
	if v.IsNull() {
		fb.AppendNull()
		return nil
	}

	switch b := fb.(type) {
	case *array.StringBuilder:
		b.Append(v.String())
	case *array.Int64Builder:
		i, err := v.Int64()
		if err != nil {
			return err
		}
		b.Append(i)
	case *array.Float64Builder:
		f, err := v.Float64()
		if err != nil {
			return err
		}
		b.Append(f)
	case *array.BooleanBuilder:
		bv, _ := v.BoolValue()
		b.Append(bv)
	case *array.TimestampBuilder:
		t, _ := v.TimeValue()
		b.Append(arrow.Timestamp(t.UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}
