package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tieubaoca/pdfchat-be/types"
)

// FileVectorStore persists one JSON blob of vector records per document.
// Saves overwrite the whole file; a document's index is built exactly once
// so there is no concurrent writer to guard against. Reads are safe for
// any number of concurrent callers.
type FileVectorStore struct {
	dir string
}

func NewFileVectorStore(dir string) (*FileVectorStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector directory: %w", err)
	}
	return &FileVectorStore{dir: dir}, nil
}

func (s *FileVectorStore) path(documentID string) string {
	return filepath.Join(s.dir, documentID+".json")
}

func (s *FileVectorStore) Save(documentID string, records []types.VectorRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vector records: %w", err)
	}
	if err := os.WriteFile(s.path(documentID), data, 0644); err != nil {
		return fmt.Errorf("failed to write vector file: %w", err)
	}
	return nil
}

// Load returns the document's vector records. A missing file is not an
// error: it means the index was never built, and callers fall back to
// text search.
func (s *FileVectorStore) Load(documentID string) ([]types.VectorRecord, error) {
	data, err := os.ReadFile(s.path(documentID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read vector file: %w", err)
	}
	var records []types.VectorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vector records: %w", err)
	}
	return records, nil
}

// Delete removes the document's vector file. Deleting a document that was
// never vectorized is a no-op.
func (s *FileVectorStore) Delete(documentID string) error {
	err := os.Remove(s.path(documentID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete vector file: %w", err)
	}
	return nil
}
