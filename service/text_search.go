package service

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/tieubaoca/pdfchat-be/types"
)

// NoRelevantContentMessage is handed to the LLM when neither search
// strategy finds anything, so the prompt body is never empty.
const NoRelevantContentMessage = "No relevant content found in the document for this question."

const (
	contextBlockLength = 800
	snippetLength      = 200
	exactMatchWeight   = 3
	phraseBonus        = 5
	lexicalScoreScale  = 10
	minQueryTokenLen   = 3
)

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "what": true, "how": true, "when": true,
	"where": true, "why": true, "who": true,
}

var nonWordRegexp = regexp.MustCompile(`\W+`)

// TextSearchService scores pages by keyword overlap with the question.
// It is deterministic and needs no external provider, which makes it the
// fallback whenever vector search is unavailable.
type TextSearchService struct{}

func NewTextSearchService() *TextSearchService {
	return &TextSearchService{}
}

func tokenize(text string) []string {
	parts := nonWordRegexp.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// queryTerms tokenizes the question and drops stop words and tokens
// shorter than three characters.
func queryTerms(question string) []string {
	terms := make([]string, 0)
	for _, token := range tokenize(question) {
		if len(token) < minQueryTokenLen || stopWords[token] {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Search ranks pages against the question. Each exact token match counts
// 3 points and each partial match 1; a page containing the full question
// verbatim gets a bonus of 5. Partial matching counts substring overlap
// in both directions, so an exact match also counts as partial — a known
// bias toward fuzzy relevance that the scoring law keeps on purpose.
// Citation scores are the raw page score divided by 10.
func (s *TextSearchService) Search(question string, pages []types.DocumentPage, maxResults int) *types.RetrievalContext {
	if maxResults <= 0 {
		maxResults = DefaultTopK
	}
	terms := queryTerms(question)
	queryPhrase := strings.ToLower(question)
	log.Printf("Text search terms: %s", strings.Join(terms, ", "))

	type scoredPage struct {
		page  types.DocumentPage
		score int
	}
	scored := make([]scoredPage, 0, len(pages))
	for _, page := range pages {
		pageTokens := tokenize(page.Text)
		exactMatches := 0
		partialMatches := 0
		for _, term := range terms {
			for _, token := range pageTokens {
				if token == term {
					exactMatches++
				}
				if strings.Contains(token, term) || strings.Contains(term, token) {
					partialMatches++
				}
			}
		}
		score := exactMatches*exactMatchWeight + partialMatches
		if strings.Contains(strings.ToLower(page.Text), queryPhrase) {
			score += phraseBonus
		}
		if score > 0 {
			scored = append(scored, scoredPage{page: page, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	log.Printf("Text search found %d relevant pages", len(scored))

	if len(scored) == 0 {
		return &types.RetrievalContext{
			ContextText: NoRelevantContentMessage,
			Citations:   []types.Citation{},
		}
	}

	blocks := make([]string, 0, len(scored))
	citations := make([]types.Citation, 0, len(scored))
	for _, result := range scored {
		blocks = append(blocks, fmt.Sprintf("[Page %d]: %s", result.page.PageNumber, truncateText(result.page.Text, contextBlockLength)))
		citations = append(citations, types.Citation{
			PageNumber:     result.page.PageNumber,
			RelevanceScore: float64(result.score) / lexicalScoreScale,
			Snippet:        truncateText(result.page.Text, snippetLength) + "...",
		})
	}
	return &types.RetrievalContext{
		ContextText: strings.Join(blocks, "\n\n"),
		Citations:   citations,
	}
}

// SplitTextIntoChunks divides raw extracted text into totalPages
// contiguous, equal-length chunks numbered from 1, discarding chunks
// that are empty after trimming. This is a degraded-mode reconstruction
// used when no page-indexed data was stored; it does not respect real
// page boundaries.
func SplitTextIntoChunks(text string, totalPages int) []types.DocumentPage {
	if totalPages <= 0 {
		totalPages = 1
	}
	chunkSize := (len(text) + totalPages - 1) / totalPages
	chunks := make([]types.DocumentPage, 0, totalPages)
	for i := 0; i < totalPages; i++ {
		start := i * chunkSize
		if start >= len(text) {
			break
		}
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunkText := text[start:end]
		if strings.TrimSpace(chunkText) == "" {
			continue
		}
		chunks = append(chunks, types.DocumentPage{
			PageNumber: i + 1,
			Text:       chunkText,
		})
	}
	return chunks
}
