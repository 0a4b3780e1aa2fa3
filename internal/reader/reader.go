// =============================================================================
// Deal Pipeline - Format Reader
// =============================================================================
//
// This module turns any supported source file into uniform row tables.
//
// READ PROCESS:
//   1. Detect the format from the file name or its binary signature
//   2. Look up the parser registered for that format
//   3. Parse the file into one table per sheet/section, applying the
//      per-column converters while cells are read
//   4. Optionally select a single sheet
//
// SUPPORTED FORMATS:
//   - csv     : one table
//   - yaml    : a list of records, one table
//   - excel   : zip-based and legacy workbooks, one table per sheet
//   - parquet : one table, typed by the file's own schema (converters ignored)
//
// =============================================================================

package reader

import (
	"fmt"
	"sync"

	"github.com/ginjaninja78/deal-pipeline/internal/csvparser"
	"github.com/ginjaninja78/deal-pipeline/internal/parquetio"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
	"github.com/ginjaninja78/deal-pipeline/internal/xlsxparser"
	"github.com/ginjaninja78/deal-pipeline/internal/yamlparser"
)

// ParseFunc parses a file into its tables.
type ParseFunc func(path string, converters types.Converters) ([]*types.Table, error)

// =============================================================================
// FACTORY
// =============================================================================

// Factory maps format tags to parsers.
type Factory struct {
	mu      sync.RWMutex
	parsers map[Format]ParseFunc
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{parsers: make(map[Format]ParseFunc)}
}

// NewDefaultFactory creates a factory with every built-in format registered.
func NewDefaultFactory() *Factory {
	return NewFactoryWithCSVSettings(csvparser.DefaultSettings())
}

// NewFactoryWithCSVSettings registers every built-in format, reading
// delimited files with the given settings.
func NewFactoryWithCSVSettings(settings csvparser.Settings) *Factory {
	f := NewFactory()
	f.Register(FormatCSV, func(path string, conv types.Converters) ([]*types.Table, error) {
		t, err := csvparser.Parse(path, settings, conv)
		if err != nil {
			return nil, err
		}
		return []*types.Table{t}, nil
	})
	f.Register(FormatYAML, func(path string, conv types.Converters) ([]*types.Table, error) {
		t, err := yamlparser.Parse(path, conv)
		if err != nil {
			return nil, err
		}
		return []*types.Table{t}, nil
	})
	f.Register(FormatExcel, xlsxparser.Parse)
	f.Register(FormatParquet, func(path string, _ types.Converters) ([]*types.Table, error) {
		// Columnar files carry their own schema.
		t, err := parquetio.Read(path)
		if err != nil {
			return nil, err
		}
		return []*types.Table{t}, nil
	})
	return f
}

// Register adds or replaces the parser for a format.
func (f *Factory) Register(format Format, parse ParseFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsers[format] = parse
}

// Get returns the parser for a format.
func (f *Factory) Get(format Format) (ParseFunc, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	parse, ok := f.parsers[format]
	if !ok || parse == nil {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return parse, nil
}

// Read detects the file's format and parses every sheet.
func (f *Factory) Read(path string, converters types.Converters) ([]*types.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}

	parse, err := f.Get(format)
	if err != nil {
		return nil, err
	}

	tables, err := parse(path, converters)
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	if len(tables) == 0 {
		return nil, &ParseError{Path: path, Format: format, Err: fmt.Errorf("file contains no tables")}
	}
	return tables, nil
}

// ReadSheet reads the file and returns the requested sheet. A file that
// produced a single table returns it for any index.
func (f *Factory) ReadSheet(path string, converters types.Converters, sheet int) (*types.Table, error) {
	tables, err := f.Read(path, converters)
	if err != nil {
		return nil, err
	}
	return SelectSheet(tables, sheet)
}

// SelectSheet applies the single-sheet shortcut and range check.
func SelectSheet(tables []*types.Table, sheet int) (*types.Table, error) {
	if len(tables) == 1 {
		return tables[0], nil
	}
	if sheet < 0 || sheet >= len(tables) {
		return nil, &InvalidSheetError{Index: sheet, Count: len(tables)}
	}
	return tables[sheet], nil
}

// =============================================================================
// PACKAGE-LEVEL SHORTCUTS
// =============================================================================

var defaultFactory = NewDefaultFactory()

// Read parses every sheet of a file with the default factory.
func Read(path string, converters types.Converters) ([]*types.Table, error) {
	return defaultFactory.Read(path, converters)
}

// ReadSheet returns one sheet of a file using the default factory.
func ReadSheet(path string, converters types.Converters, sheet int) (*types.Table, error) {
	return defaultFactory.ReadSheet(path, converters, sheet)
}
