// Package document persists the whole in-memory document to a single JSON
// file. The file is the local storage slot: read on startup, rewritten
// after every successful mutation.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kmorrow/stocklog/internal/domain"
)

// File is an explicit state container over one JSON file. Mutations go
// through Mutate so the save always happens after a successful change and
// never on failure.
type File struct {
	path string
}

// New returns a container for the document at path.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the document. A missing file yields an empty document rather
// than an error.
func (f *File) Load() (*domain.Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.Document{}, nil
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// Save writes the document atomically: temp file in the same directory,
// then rename over the target.
func (f *File) Save(doc *domain.Document) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".document-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// Mutate loads the document, applies fn, and saves only if fn succeeds.
// On error the file is left exactly as it was.
func (f *File) Mutate(fn func(*domain.Document) error) (*domain.Document, error) {
	doc, err := f.Load()
	if err != nil {
		return nil, err
	}

	if err := fn(doc); err != nil {
		return nil, err
	}

	if err := f.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Clear replaces the document with an empty one.
func (f *File) Clear() error {
	return f.Save(&domain.Document{})
}
