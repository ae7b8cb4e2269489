package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat-be/types"
)

// fakeExtractor returns canned extraction results and can fail a fixed
// number of times before succeeding.
type fakeExtractor struct {
	text       string
	pages      []types.DocumentPage
	totalPages int
	failures   int
	mu         sync.Mutex
	calls      int
}

func (e *fakeExtractor) ExtractText(filePath string) (string, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failures > 0 {
		e.failures--
		return "", 0, errors.New("extraction failed")
	}
	return e.text, e.totalPages, nil
}

func (e *fakeExtractor) ExtractTextByPage(filePath string) ([]types.DocumentPage, error) {
	return e.pages, nil
}

// fakeNotifier collects status updates.
type fakeNotifier struct {
	mu       sync.Mutex
	statuses []types.ProcessingDocumentStatus
}

func (n *fakeNotifier) NotifyStatus(status types.ProcessingDocumentStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

func (n *fakeNotifier) all() []types.ProcessingDocumentStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]types.ProcessingDocumentStatus(nil), n.statuses...)
}

func newTestProcessingService(t *testing.T, extractor DocumentExtractor, repo *fakeDocumentRepo, notifier StatusNotifier, provider EmbeddingProvider) *ProcessingService {
	t.Helper()
	return NewProcessingService(extractor, newTestVectorService(t, provider), repo, notifier, ProcessingOptions{
		Workers:          1,
		QueueSize:        4,
		MaxRetries:       3,
		RetryBaseDelayMs: 1,
	})
}

func TestProcessingMarksDocumentReady(t *testing.T) {
	extractor := &fakeExtractor{
		text:       "page one text page two text",
		totalPages: 2,
		pages: []types.DocumentPage{
			{PageNumber: 1, Text: "page one text"},
			{PageNumber: 2, Text: "page two text"},
		},
	}
	repo := newFakeDocumentRepo(&types.Document{ID: "doc1", Status: types.DOCUMENT_STATUS_PROCESSING})
	notifier := &fakeNotifier{}
	svc := newTestProcessingService(t, extractor, repo, notifier, &fakeEmbeddingProvider{})

	svc.Start()
	require.NoError(t, svc.Enqueue("doc1", "/tmp/doc1.pdf"))
	svc.Stop()

	doc := repo.documents["doc1"]
	assert.Equal(t, types.DOCUMENT_STATUS_READY, doc.Status)
	assert.True(t, doc.Vectorized)
	assert.Equal(t, 2, doc.TotalPages)
	require.Len(t, doc.PagesData, 2)

	statuses := notifier.all()
	require.Len(t, statuses, 1)
	assert.Equal(t, types.DOCUMENT_STATUS_READY, statuses[0].Status)
	assert.Equal(t, 2, statuses[0].ProcessedPages)
}

func TestProcessingVectorizationFailureStillReady(t *testing.T) {
	extractor := &fakeExtractor{
		text:       "some text",
		totalPages: 1,
		pages:      []types.DocumentPage{{PageNumber: 1, Text: "some text"}},
	}
	repo := newFakeDocumentRepo(&types.Document{ID: "doc1", Status: types.DOCUMENT_STATUS_PROCESSING})
	provider := &fakeEmbeddingProvider{failOn: map[string]bool{"some text": true}}
	svc := newTestProcessingService(t, extractor, repo, &fakeNotifier{}, provider)

	svc.Start()
	require.NoError(t, svc.Enqueue("doc1", "/tmp/doc1.pdf"))
	svc.Stop()

	doc := repo.documents["doc1"]
	assert.Equal(t, types.DOCUMENT_STATUS_READY, doc.Status)
	assert.False(t, doc.Vectorized)
}

func TestProcessingRetriesBeforeSucceeding(t *testing.T) {
	extractor := &fakeExtractor{
		text:       "text",
		totalPages: 1,
		pages:      []types.DocumentPage{{PageNumber: 1, Text: "text"}},
		failures:   2,
	}
	repo := newFakeDocumentRepo(&types.Document{ID: "doc1", Status: types.DOCUMENT_STATUS_PROCESSING})
	svc := newTestProcessingService(t, extractor, repo, &fakeNotifier{}, &fakeEmbeddingProvider{})

	svc.Start()
	require.NoError(t, svc.Enqueue("doc1", "/tmp/doc1.pdf"))
	svc.Stop()

	assert.Equal(t, 3, extractor.calls)
	assert.Equal(t, types.DOCUMENT_STATUS_READY, repo.documents["doc1"].Status)
}

func TestProcessingExhaustedRetriesMarksError(t *testing.T) {
	extractor := &fakeExtractor{failures: 10}
	repo := newFakeDocumentRepo(&types.Document{ID: "doc1", Status: types.DOCUMENT_STATUS_PROCESSING})
	notifier := &fakeNotifier{}
	svc := newTestProcessingService(t, extractor, repo, notifier, &fakeEmbeddingProvider{})

	svc.Start()
	require.NoError(t, svc.Enqueue("doc1", "/tmp/doc1.pdf"))
	svc.Stop()

	assert.Equal(t, 3, extractor.calls)
	assert.Equal(t, types.DOCUMENT_STATUS_ERROR, repo.documents["doc1"].Status)

	statuses := notifier.all()
	require.Len(t, statuses, 1)
	assert.Equal(t, types.DOCUMENT_STATUS_ERROR, statuses[0].Status)
}

func TestProcessingSkipsDeletedDocument(t *testing.T) {
	extractor := &fakeExtractor{}
	repo := newFakeDocumentRepo()
	svc := newTestProcessingService(t, extractor, repo, &fakeNotifier{}, &fakeEmbeddingProvider{})

	svc.Start()
	require.NoError(t, svc.Enqueue("gone", "/tmp/gone.pdf"))
	svc.Stop()

	// No extraction attempted and no error status written.
	assert.Equal(t, 0, extractor.calls)
	assert.Empty(t, repo.statuses)
}

func TestEnqueueRejectsWhenQueueFull(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewProcessingService(&fakeExtractor{}, newTestVectorService(t, &fakeEmbeddingProvider{}), repo, nil, ProcessingOptions{
		Workers:          1,
		QueueSize:        1,
		MaxRetries:       1,
		RetryBaseDelayMs: 1,
	})
	// Workers never started, so the buffered slot fills immediately.
	require.NoError(t, svc.Enqueue("doc1", "/tmp/a.pdf"))
	err := svc.Enqueue("doc2", "/tmp/b.pdf")
	assert.EqualError(t, err, "processing queue is full")
}

func TestRetryDelayDoubles(t *testing.T) {
	extractor := &fakeExtractor{
		text:       "text",
		totalPages: 1,
		pages:      []types.DocumentPage{{PageNumber: 1, Text: "text"}},
		failures:   2,
	}
	repo := newFakeDocumentRepo(&types.Document{ID: "doc1", Status: types.DOCUMENT_STATUS_PROCESSING})
	svc := NewProcessingService(extractor, newTestVectorService(t, &fakeEmbeddingProvider{}), repo, nil, ProcessingOptions{
		Workers:          1,
		QueueSize:        1,
		MaxRetries:       3,
		RetryBaseDelayMs: 20,
	})

	start := time.Now()
	svc.Start()
	require.NoError(t, svc.Enqueue("doc1", "/tmp/doc1.pdf"))
	svc.Stop()
	elapsed := time.Since(start)

	// Two failures mean waits of 20ms and 40ms before the third attempt.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}
