package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ucassist-scraper/models"
	"ucassist-scraper/utils"
)

// JSONWriter writes the record document that is the crawl's primary output.
// The document goes to a temporary file in the destination directory first
// and is renamed into place, so a failed write never leaves a truncated
// document and prior output survives until the new one is complete.
type JSONWriter struct {
	path string
}

func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (w *JSONWriter) Write(records []models.ServiceRecord) error {
	if records == nil {
		records = []models.ServiceRecord{}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// CreateTemp opens the file owner-only; the document should be readable
	// like any os.Create output.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not set temp file mode: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not encode records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close temp file: %w", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not move document into place: %w", err)
	}

	utils.Success("Saved %d records → %s", len(records), w.path)
	return nil
}
