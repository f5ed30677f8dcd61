package disclosure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists a reconciled sequence as the pretty-printed JSON feed
// artifact. Each run replaces the file wholesale; the temp-file rename keeps
// readers from ever seeing a partially written artifact.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Run(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize feed artifact: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write feed artifact: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace feed artifact: %w", err)
	}

	return nil
}
