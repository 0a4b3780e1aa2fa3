package writer

import (
	"github.com/ginjaninja78/deal-pipeline/internal/parquetio"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// ParquetWriter writes a compressed columnar file.
type ParquetWriter struct {
	// Compression defaults to gzip.
	Compression string
}

// Write implements Writer.
func (w *ParquetWriter) Write(table *types.Table, destination string) error {
	return parquetio.Write(table, destination, w.Compression)
}
