// Package export writes flat export rows to spreadsheet-readable files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// CSVWriter writes exports as CSV files into Dir.
type CSVWriter struct {
	Dir string
}

// WriteExport writes <Dir>/<name>.csv with a header row followed by one line
// per export row. The file only appears once fully written.
func (w CSVWriter) WriteExport(name string, columns []string, rows []model.ExportRow) (string, error) {
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create export directory '%s': %w", dir, err)
	}
	for i, row := range rows {
		if !slices.Equal(row.Columns(), columns) {
			return "", fmt.Errorf("export row %d does not match the export columns", i)
		}
	}

	final := filepath.Join(dir, name+".csv")
	tmp, err := os.CreateTemp(dir, "."+name+".*.csv")
	if err != nil {
		return "", fmt.Errorf("could not create export file: %w", err)
	}
	// Removing after a successful rename is a no-op error we ignore.
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(columns); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not write export header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Strings()); err != nil {
			tmp.Close()
			return "", fmt.Errorf("could not write export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not flush export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("could not close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("could not move export into place: %w", err)
	}
	return final, nil
}
