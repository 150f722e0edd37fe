package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ucassist-scraper/models"
	"ucassist-scraper/utils"
)

// CSVWriter exports records as a flat table for spreadsheet work. Records do
// not all carry the same fields, so the field columns are the sorted union
// of every field name present.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Write(records []models.ServiceRecord) error {
	if len(records) == 0 {
		utils.Warn("No records to write")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	fieldCols := fieldColumns(records)
	writer.Write(append([]string{"id", "url"}, fieldCols...))

	for _, r := range records {
		row := make([]string, 0, len(fieldCols)+2)
		row = append(row, r.Key, r.URL)
		for _, col := range fieldCols {
			row = append(row, r.Fields[col])
		}
		writer.Write(row)
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	utils.Success("Saved %d records → %s", len(records), w.path)
	return nil
}

func fieldColumns(records []models.ServiceRecord) []string {
	set := make(map[string]bool)
	for _, r := range records {
		for name := range r.Fields {
			set[name] = true
		}
	}
	cols := make([]string, 0, len(set))
	for name := range set {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}
