package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat-be/database"
	"github.com/tieubaoca/pdfchat-be/types"
)

// fakeEmbeddingProvider returns canned vectors keyed by input text and
// fails for inputs listed in failOn.
type fakeEmbeddingProvider struct {
	vectors map[string][]float32
	failOn  map[string]bool
	calls   int
}

func (p *fakeEmbeddingProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	if p.failOn[text] {
		return nil, errors.New("embedding provider unavailable")
	}
	if v, ok := p.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func newTestVectorService(t *testing.T, provider EmbeddingProvider) *VectorService {
	t.Helper()
	store, err := database.NewFileVectorStore(t.TempDir())
	require.NoError(t, err)
	return NewVectorService(provider, store, 1)
}

func TestBuildIndexSkipsEmptyPages(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	svc := newTestVectorService(t, provider)

	count, err := svc.BuildIndex(context.Background(), "doc1", []types.DocumentPage{
		{PageNumber: 1, Text: "first page"},
		{PageNumber: 2, Text: "   "},
		{PageNumber: 3, Text: "third page"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, provider.calls)

	records, err := svc.store.Load("doc1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "doc1-page-1", records[0].ID)
	assert.Equal(t, "doc1-page-3", records[1].ID)
	assert.Equal(t, 3, records[1].PageNumber)
}

func TestBuildIndexToleratesPerPageFailures(t *testing.T) {
	provider := &fakeEmbeddingProvider{failOn: map[string]bool{"bad page": true}}
	svc := newTestVectorService(t, provider)

	count, err := svc.BuildIndex(context.Background(), "doc1", []types.DocumentPage{
		{PageNumber: 1, Text: "good page"},
		{PageNumber: 2, Text: "bad page"},
		{PageNumber: 3, Text: "another good page"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := svc.store.Load("doc1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].PageNumber)
	assert.Equal(t, 3, records[1].PageNumber)
}

func TestBuildIndexNeverPersistsEmptyIndex(t *testing.T) {
	provider := &fakeEmbeddingProvider{failOn: map[string]bool{"only page": true}}
	svc := newTestVectorService(t, provider)

	count, err := svc.BuildIndex(context.Background(), "doc1", []types.DocumentPage{
		{PageNumber: 1, Text: "only page"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	records, err := svc.store.Load("doc1")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSearchSimilarRanksByCosineSimilarity(t *testing.T) {
	provider := &fakeEmbeddingProvider{vectors: map[string][]float32{
		"query":  {1, 0},
		"page a": {1, 0},
		"page b": {0, 1},
		"page c": {1, 1},
	}}
	svc := newTestVectorService(t, provider)

	_, err := svc.BuildIndex(context.Background(), "doc1", []types.DocumentPage{
		{PageNumber: 1, Text: "page b"},
		{PageNumber: 2, Text: "page a"},
		{PageNumber: 3, Text: "page c"},
	})
	require.NoError(t, err)

	results, err := svc.SearchSimilar(context.Background(), "query", "doc1", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].PageNumber) // identical direction
	assert.Equal(t, 3, results[1].PageNumber) // 45 degrees
	assert.Equal(t, 1, results[2].PageNumber) // orthogonal
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
}

func TestSearchSimilarTruncatesToTopK(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	svc := newTestVectorService(t, provider)

	pages := make([]types.DocumentPage, 5)
	for i := range pages {
		pages[i] = types.DocumentPage{PageNumber: i + 1, Text: "page"}
	}
	_, err := svc.BuildIndex(context.Background(), "doc1", pages)
	require.NoError(t, err)

	results, err := svc.SearchSimilar(context.Background(), "query", "doc1", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// All scores tie, so the page-number tiebreak keeps the lowest pages.
	assert.Equal(t, 1, results[0].PageNumber)
	assert.Equal(t, 2, results[1].PageNumber)
}

func TestSearchSimilarEmbeddingFailureYieldsEmptyResults(t *testing.T) {
	provider := &fakeEmbeddingProvider{failOn: map[string]bool{"query": true}}
	svc := newTestVectorService(t, provider)

	results, err := svc.SearchSimilar(context.Background(), "query", "doc1", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSimilarMissingIndexYieldsEmptyResults(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	svc := newTestVectorService(t, provider)

	results, err := svc.SearchSimilar(context.Background(), "query", "never-indexed", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteDocumentVectorsIsIdempotent(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	svc := newTestVectorService(t, provider)

	_, err := svc.BuildIndex(context.Background(), "doc1", []types.DocumentPage{
		{PageNumber: 1, Text: "page"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocumentVectors("doc1"))
	require.NoError(t, svc.DeleteDocumentVectors("doc1"))

	records, err := svc.store.Load("doc1")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestCosineSimilarityZeroVectorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", truncateText("abc", 5))
	assert.Equal(t, "ab", truncateText("abcd", 2))
}
