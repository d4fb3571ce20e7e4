package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FORMAT_CSV  Format = "csv"
	FORMAT_XLSX Format = "xlsx"
)

var ErrEmptySource = errors.New("source has no header row")

// NA_TOKENS are cell values read as missing, in addition to the empty string.
// Matching is exact and case-sensitive.
var NA_TOKENS = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

func isMissing(cell string) bool {
	if cell == "" {
		return true
	}
	_, ok := NA_TOKENS[cell]
	return ok
}

// FormatFromName picks a format from a file name, defaulting to CSV.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FORMAT_XLSX
	default:
		return FORMAT_CSV
	}
}

func Load(r io.Reader, role models.Role, format Format) (*models.Dataset, error) {
	switch format {
	case FORMAT_XLSX:
		return LoadXLSX(r, role)
	case FORMAT_CSV, "":
		return LoadCSV(r, role)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func LoadFile(path string, role models.Role) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Load(f, role, FormatFromName(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	slog.Info("[Dataset] Loaded dataset",
		slog.String("role", string(role)),
		slog.String("path", path),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.Columns)))
	return ds, nil
}

// LoadCSV reads a header row followed by data rows. Empty cells are missing
// values. Short rows are padded with missing values; long rows are an error.
func LoadCSV(r io.Reader, role models.Role) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return fromRows(role, rows)
}

// LoadXLSX reads the first sheet of a workbook.
func LoadXLSX(r io.Reader, role models.Role) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRows(role, rows)
}

func fromRows(role models.Role, rows [][]string) (*models.Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[i] = strings.TrimSpace(name)
	}

	ds := models.NewDataset(role, header)
	ds.Records = make([]models.Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(header))
		}

		rec := models.NewRecord(i)
		for j, name := range header {
			if j >= len(row) || isMissing(row[j]) {
				rec.Set(name, models.MissingValue())
				continue
			}
			rec.Set(name, models.StringValue(row[j]))
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}
