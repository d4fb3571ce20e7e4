package export

import (
	"fmt"
	"io"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/xuri/excelize/v2"
)

// XLSX writes the same layout as CSV into a single sheet named after the
// dataset role.
func XLSX(w io.Writer, ds *models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(ds.Role)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := sw.SetRow("A1", cells(ds.Columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range ds.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row(ds.Columns, rec))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.Index, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
