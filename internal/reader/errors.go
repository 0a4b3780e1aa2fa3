package reader

import (
	"errors"
	"fmt"
)

// ErrParse is matched (errors.Is) by every error that makes a source file
// unreadable: malformed content, unknown format or a missing sheet.
var ErrParse = errors.New("parse error")

// UnsupportedFormatError is returned when no parser is registered for the
// detected format.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrParse }

// InvalidSheetError is returned when a sheet index beyond the sheets
// produced by the parser is requested.
type InvalidSheetError struct {
	Index int
	Count int
}

func (e *InvalidSheetError) Error() string {
	return fmt.Sprintf("invalid sheet index %d: file has %d sheet(s)", e.Index, e.Count)
}

func (e *InvalidSheetError) Is(target error) bool { return target == ErrParse }

// ParseError wraps a parser failure with the file and format it concerns.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
