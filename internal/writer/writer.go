// =============================================================================
// Deal Pipeline - Table Writers
// =============================================================================
//
// This module writes row tables to files. Every writer satisfies the same
// Writer contract and creates missing parent directories.
//
// WRITERS:
//   - CSVWriter     : delimited text, null as empty field
//   - YAMLWriter    : a list of records, keys in column order
//   - ExcelWriter   : one named sheet, optionally with a word-wrapped,
//                     highlighted column (used for the "Errors" column)
//   - ParquetWriter : compressed columnar file (gzip by default)
//
// =============================================================================

package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/deal-pipeline/internal/reader"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// Writer writes a table to a destination file.
type Writer interface {
	Write(table *types.Table, destination string) error
}

// Options configures New.
type Options struct {
	// Compression is the parquet codec name.
	Compression string

	// SheetName is the sheet written by the Excel writer.
	SheetName string

	// WrapColumn is the Excel column rendered word-wrapped.
	WrapColumn string

	// Delimiter is the CSV field separator.
	Delimiter rune
}

// New returns the writer for a format tag.
func New(format reader.Format, opts Options) (Writer, error) {
	switch format {
	case reader.FormatCSV:
		return &CSVWriter{Delimiter: opts.Delimiter}, nil
	case reader.FormatYAML:
		return &YAMLWriter{}, nil
	case reader.FormatExcel:
		return &ExcelWriter{SheetName: opts.SheetName, WrapColumn: opts.WrapColumn}, nil
	case reader.FormatParquet:
		return &ParquetWriter{Compression: opts.Compression}, nil
	default:
		return nil, fmt.Errorf("no writer for format: %s", format)
	}
}

// ensureParent creates the destination's parent directory.
func ensureParent(destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destination, err)
	}
	return nil
}
