package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tieubaoca/pdfchat-be/database"
	"github.com/tieubaoca/pdfchat-be/types"
)

const (
	// DefaultTopK is the number of results a retrieval returns when the
	// caller does not ask for a specific count.
	DefaultTopK = 3

	vectorExcerptLength        = 2000
	defaultEmbeddingReqDelayMs = 200
)

// VectorService builds, queries and deletes per-document vector indexes.
type VectorService struct {
	provider     EmbeddingProvider
	store        *database.FileVectorStore
	requestDelay time.Duration
}

func NewVectorService(provider EmbeddingProvider, store *database.FileVectorStore, requestDelayMs int) *VectorService {
	if requestDelayMs <= 0 {
		requestDelayMs = defaultEmbeddingReqDelayMs
	}
	return &VectorService{
		provider:     provider,
		store:        store,
		requestDelay: time.Duration(requestDelayMs) * time.Millisecond,
	}
}

// BuildIndex embeds every non-empty page and persists the resulting record
// set. Pages whose embedding fails are skipped; a single failure never
// aborts the build. Requests go out sequentially with a fixed pause
// between them to stay under provider rate limits. If no page embeds
// successfully, nothing is persisted — the document stays in the
// "no vector index" state and retrieval falls back to text search.
// Returns the number of successfully embedded pages.
//
// Callers must not run two builds for the same document concurrently.
func (s *VectorService) BuildIndex(ctx context.Context, documentID string, pages []types.DocumentPage) (int, error) {
	records := make([]types.VectorRecord, 0, len(pages))
	failed := 0
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		embedding, err := s.provider.CreateEmbedding(ctx, page.Text)
		if err != nil {
			log.Printf("Failed to create embedding for page %d: %v", page.PageNumber, err)
			failed++
		} else {
			records = append(records, types.VectorRecord{
				ID:         fmt.Sprintf("%s-page-%d", documentID, page.PageNumber),
				DocumentID: documentID,
				PageNumber: page.PageNumber,
				Values:     embedding,
				Excerpt:    truncateText(page.Text, vectorExcerptLength),
				FullText:   page.Text,
			})
		}
		time.Sleep(s.requestDelay)
	}
	log.Printf("Vectorization complete for document %s: %d successful, %d failed", documentID, len(records), failed)

	if len(records) == 0 {
		log.Printf("No vectors created for document %s", documentID)
		return 0, nil
	}
	if err := s.store.Save(documentID, records); err != nil {
		return 0, fmt.Errorf("failed to persist vector index: %w", err)
	}
	return len(records), nil
}

// SearchSimilar embeds the question and ranks the document's vector
// records by cosine similarity. An embedding failure or a missing index
// yields an empty result set, which signals the caller to fall back to
// text search.
func (s *VectorService) SearchSimilar(ctx context.Context, query, documentID string, topK int) ([]types.RetrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	queryEmbedding, err := s.provider.CreateEmbedding(ctx, query)
	if err != nil {
		log.Printf("Failed to create query embedding, using fallback: %v", err)
		return nil, nil
	}

	records, err := s.store.Load(documentID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	results := make([]types.RetrievalResult, 0, len(records))
	for _, record := range records {
		results = append(results, types.RetrievalResult{
			PageNumber: record.PageNumber,
			Score:      cosineSimilarity(queryEmbedding, record.Values),
			Excerpt:    record.Excerpt,
			FullText:   record.FullText,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].PageNumber < results[j].PageNumber
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocumentVectors removes a document's vector index. Idempotent.
func (s *VectorService) DeleteDocumentVectors(documentID string) error {
	return s.store.Delete(documentID)
}

// cosineSimilarity returns 1 - cosine distance between two vectors. A
// zero vector makes the quotient NaN; that is coerced to 0 so it can
// never outrank a real match.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(similarity) {
		return 0
	}
	return similarity
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}
