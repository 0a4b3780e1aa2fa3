package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is the tag returned by DetectFormat.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
	FormatExcel   Format = "excel"
	FormatUnknown Format = "unknown"
)

// signature is a magic byte sequence expected at a fixed offset.
type signature struct {
	name    string
	magic   []byte
	whence  int
	offset  int64
	comment string
}

var biffBOF = []byte{0x09, 0x08, 0x10, 0x00, 0x00, 0x06, 0x05, 0x00}

// spreadsheetSignatures lists the containers recognised as spreadsheets.
// The zip signature is the end-of-central-directory record, 22 bytes before
// the end of an archive without a trailing comment.
var spreadsheetSignatures = []signature{
	{name: "xlsx", magic: []byte{0x50, 0x4B, 0x05, 0x06}, whence: io.SeekEnd, offset: -22},
	{name: "xls", magic: biffBOF, whence: io.SeekStart, offset: 512, comment: "saved from Excel"},
	{name: "xls", magic: biffBOF, whence: io.SeekStart, offset: 1536, comment: "saved from LibreOffice Calc"},
	{name: "xls", magic: biffBOF, whence: io.SeekStart, offset: 2048, comment: "saved from Excel then Calc"},
}

// DetectFormat guesses the format of a file from its name, falling back to
// sniffing spreadsheet signatures. Files that match nothing are
// FormatUnknown; only I/O failures while sniffing return an error.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, nil
	case strings.Contains(lower, ".parquet"):
		return FormatParquet, nil
	}

	excel, err := IsExcel(path)
	if err != nil {
		return FormatUnknown, err
	}
	if excel {
		return FormatExcel, nil
	}
	return FormatUnknown, nil
}

// IsExcel reports whether the file carries one of the known spreadsheet
// signatures.
func IsExcel(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, sig := range spreadsheetSignatures {
		if matchSignature(f, sig) {
			return true, nil
		}
	}
	return false, nil
}

// matchSignature reads len(sig.magic) bytes at the signature's offset.
// Files too short for the offset simply do not match.
func matchSignature(r io.ReadSeeker, sig signature) bool {
	if _, err := r.Seek(sig.offset, sig.whence); err != nil {
		return false
	}
	buf := make([]byte, len(sig.magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return bytes.Equal(buf, sig.magic)
}
