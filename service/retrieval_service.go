package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/types"
)

// RetrievalService decides which search strategy answers a question and
// assembles the grounded context for the LLM call. Vector search is tried
// first; any empty or failed result falls through to text search over the
// document's stored pages. Each strategy runs at most once per question.
// The choice is made per call from what is actually available — it is
// never cached as a mode.
type RetrievalService struct {
	vectorService *VectorService
	textSearch    *TextSearchService
	documentRepo  repository.DocumentRepo
}

func NewRetrievalService(vectorService *VectorService, textSearch *TextSearchService, documentRepo repository.DocumentRepo) *RetrievalService {
	return &RetrievalService{
		vectorService: vectorService,
		textSearch:    textSearch,
		documentRepo:  documentRepo,
	}
}

// Retrieve returns the context block and citations for a question. It
// rejects malformed input synchronously; for everything else it always
// produces a well-formed context, in the worst case the no-relevant-
// content sentinel with no citations.
func (s *RetrievalService) Retrieve(ctx context.Context, question, documentID string, topK int) (*types.RetrievalContext, error) {
	if strings.TrimSpace(question) == "" {
		return nil, types.ErrEmptyQuestion
	}
	document, err := s.documentRepo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, types.ErrDocumentNotFound
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := s.vectorService.SearchSimilar(ctx, question, documentID, topK)
	if err != nil {
		log.Printf("Vector search failed for document %s: %v", documentID, err)
		results = nil
	}
	if len(results) > 0 {
		log.Printf("Using vector search results for document %s: %d chunks", documentID, len(results))
		return assembleVectorContext(results), nil
	}

	log.Printf("No vector results for document %s, using text search fallback", documentID)
	retrieval := s.textSearch.Search(question, s.fallbackPages(document), topK)
	if strings.TrimSpace(retrieval.ContextText) == "" {
		retrieval.ContextText = NoRelevantContentMessage
	}
	return retrieval, nil
}

// assembleVectorContext joins ranked results into page-tagged blocks.
// Citations carry the raw cosine-derived score, not rescaled.
func assembleVectorContext(results []types.RetrievalResult) *types.RetrievalContext {
	blocks := make([]string, 0, len(results))
	citations := make([]types.Citation, 0, len(results))
	for _, result := range results {
		text := result.FullText
		if text == "" {
			text = result.Excerpt
		}
		blocks = append(blocks, fmt.Sprintf("[Page %d]: %s", result.PageNumber, text))
		citations = append(citations, types.Citation{
			PageNumber:     result.PageNumber,
			RelevanceScore: result.Score,
			Snippet:        truncateText(text, snippetLength) + "...",
		})
	}
	return &types.RetrievalContext{
		ContextText: strings.Join(blocks, "\n\n"),
		Citations:   citations,
	}
}

// fallbackPages returns the document's stored pages, reconstructing
// approximate ones from the raw extracted text when no page-indexed data
// was saved.
func (s *RetrievalService) fallbackPages(document *types.Document) []types.DocumentPage {
	if len(document.PagesData) > 0 {
		return document.PagesData
	}
	if document.ExtractedText != "" {
		totalPages := document.TotalPages
		if totalPages <= 0 {
			totalPages = 1
		}
		return SplitTextIntoChunks(document.ExtractedText, totalPages)
	}
	return nil
}
