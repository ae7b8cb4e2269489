package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat-be/types"
)

func newTestStore(t *testing.T) *FileVectorStore {
	t.Helper()
	store, err := NewFileVectorStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	records := []types.VectorRecord{
		{
			ID:         "doc1-page-1",
			DocumentID: "doc1",
			PageNumber: 1,
			Values:     []float32{0.1, 0.2, 0.3},
			Excerpt:    "excerpt",
			FullText:   "full text of page one",
		},
	}

	require.NoError(t, store.Save("doc1", records))
	loaded, err := store.Load("doc1")
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLoadMissingIndexIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	records, err := store.Load("never-saved")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSaveOverwritesExistingIndex(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("doc1", []types.VectorRecord{
		{ID: "doc1-page-1", DocumentID: "doc1", PageNumber: 1},
		{ID: "doc1-page-2", DocumentID: "doc1", PageNumber: 2},
	}))
	require.NoError(t, store.Save("doc1", []types.VectorRecord{
		{ID: "doc1-page-1", DocumentID: "doc1", PageNumber: 1},
	}))

	records, err := store.Load("doc1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDeleteRemovesIndexFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("doc1", []types.VectorRecord{
		{ID: "doc1-page-1", DocumentID: "doc1", PageNumber: 1},
	}))

	require.NoError(t, store.Delete("doc1"))
	_, err := os.Stat(filepath.Join(store.dir, "doc1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingIndexIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete("never-saved"))
	assert.NoError(t, store.Delete("never-saved"))
}

func TestLoadCorruptIndexIsAnError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "doc1.json"), []byte("{not json"), 0644))
	_, err := store.Load("doc1")
	assert.Error(t, err)
}
