package disclosure

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriterProducesJSONArray(t *testing.T) {
	writer := NewWriter()
	path := filepath.Join(t.TempDir(), "disclosures.json")

	records := []Record{
		{Source: SourceRegulatory, Title: "8-K filed", Date: "2024-03-01", Description: DescriptionRegulatory, Link: "https://example.com/8k"},
	}

	if err := writer.Run(path, records); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var parsed []Record
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Artifact is not a valid JSON array: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(parsed))
	}
	if parsed[0].Title != "8-K filed" {
		t.Errorf("Expected title '8-K filed', got '%s'", parsed[0].Title)
	}
}

func TestWriterReplacesArtifactWholesale(t *testing.T) {
	writer := NewWriter()
	path := filepath.Join(t.TempDir(), "disclosures.json")

	first := []Record{
		{Title: "one", Date: "2024-01-01", Link: "https://example.com/1"},
		{Title: "two", Date: "2024-01-02", Link: "https://example.com/2"},
	}
	if err := writer.Run(path, first); err != nil {
		t.Fatal(err)
	}

	second := []Record{
		{Title: "three", Date: "2024-01-03", Link: "https://example.com/3"},
	}
	if err := writer.Run(path, second); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var parsed []Record
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 1 {
		t.Errorf("Expected artifact fully replaced with 1 record, got %d", len(parsed))
	}
}

func TestWriterEmptySequenceWritesEmptyArray(t *testing.T) {
	writer := NewWriter()
	path := filepath.Join(t.TempDir(), "disclosures.json")

	if err := writer.Run(path, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var parsed []Record
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Artifact is not a valid JSON array: %v", err)
	}
	if len(parsed) != 0 {
		t.Errorf("Expected empty array, got %d records", len(parsed))
	}
}

func TestWriterCreatesOutputDirectory(t *testing.T) {
	writer := NewWriter()
	path := filepath.Join(t.TempDir(), "nested", "out", "disclosures.json")

	if err := writer.Run(path, []Record{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected artifact at %s: %v", path, err)
	}
}
