package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
)

// Write serializes ds in the requested format.
func Write(w io.Writer, ds *models.Dataset, format dataset.Format) error {
	switch format {
	case dataset.FORMAT_XLSX:
		return XLSX(w, ds)
	case dataset.FORMAT_CSV, "":
		return CSV(w, ds)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// CSV writes a header in column order followed by one line per record.
// Missing cells are written empty.
func CSV(w io.Writer, ds *models.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range ds.Records {
		if err := writer.Write(row(ds.Columns, rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.Index, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func row(columns []string, rec models.Record) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		if v := rec.Get(col); v.Valid {
			cells[i] = v.Str
		}
	}
	return cells
}
