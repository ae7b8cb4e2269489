package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat-be/types"
)

func TestQueryTerms(t *testing.T) {
	terms := queryTerms("What is the Main Topic of this document?")
	assert.Equal(t, []string{"main", "topic", "this", "document"}, terms)
}

func TestQueryTermsDropsShortTokens(t *testing.T) {
	terms := queryTerms("is it an ok go day")
	assert.Equal(t, []string{"day"}, terms)
}

func TestSearchExactMatchCountsAsPartialToo(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "A dolphin swims in the ocean."},
	}

	// "dolphin" matches exactly once: 1 exact (3 points) + 1 partial
	// (1 point) = 4.
	result := svc.Search("dolphin", pages, 3)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, 1, result.Citations[0].PageNumber)
	assert.InDelta(t, 0.4, result.Citations[0].RelevanceScore, 1e-9)
}

func TestSearchPartialMatchOnly(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "Dolphins are mammals."},
		{PageNumber: 2, Text: "Whales are mammals."},
	}

	// "mammal" is a substring of "mammals" on both pages: partial only,
	// score 1 each. Stable sort keeps page order on the tie.
	result := svc.Search("mammal", pages, 3)
	require.Len(t, result.Citations, 2)
	assert.Equal(t, 1, result.Citations[0].PageNumber)
	assert.Equal(t, 2, result.Citations[1].PageNumber)
	assert.InDelta(t, 0.1, result.Citations[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.1, result.Citations[1].RelevanceScore, 1e-9)
}

func TestSearchPhraseBonus(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "The report discusses revenue growth in detail."},
		{PageNumber: 2, Text: "Revenue is mentioned here. Growth is elsewhere."},
	}

	result := svc.Search("revenue growth", pages, 3)
	require.Len(t, result.Citations, 2)
	// Page 1 contains the exact phrase and gets the +5 bonus on top of
	// its term matches, so it must rank first.
	assert.Equal(t, 1, result.Citations[0].PageNumber)
	assert.Greater(t, result.Citations[0].RelevanceScore, result.Citations[1].RelevanceScore)
}

func TestSearchNoMatchesReturnsSentinel(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "Completely unrelated content about gardening."},
	}

	result := svc.Search("quantum chromodynamics", pages, 3)
	assert.Equal(t, NoRelevantContentMessage, result.ContextText)
	assert.Empty(t, result.Citations)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "alpha alpha alpha"},
		{PageNumber: 2, Text: "alpha alpha"},
		{PageNumber: 3, Text: "alpha"},
		{PageNumber: 4, Text: "alpha"},
	}

	result := svc.Search("alpha", pages, 2)
	require.Len(t, result.Citations, 2)
	assert.Equal(t, 1, result.Citations[0].PageNumber)
	assert.Equal(t, 2, result.Citations[1].PageNumber)
}

func TestSearchContextBlocksAndSnippets(t *testing.T) {
	svc := NewTextSearchService()
	longText := "keyword " + strings.Repeat("x", 1000)
	pages := []types.DocumentPage{
		{PageNumber: 7, Text: longText},
	}

	result := svc.Search("keyword", pages, 3)
	require.Len(t, result.Citations, 1)

	assert.True(t, strings.HasPrefix(result.ContextText, "[Page 7]: "))
	// Context block is capped at 800 characters of page text.
	assert.Len(t, result.ContextText, len("[Page 7]: ")+800)
	// Snippet is capped at 200 characters plus the ellipsis.
	assert.Len(t, result.Citations[0].Snippet, 203)
	assert.True(t, strings.HasSuffix(result.Citations[0].Snippet, "..."))
}

func TestSearchJoinsBlocksWithBlankLine(t *testing.T) {
	svc := NewTextSearchService()
	pages := []types.DocumentPage{
		{PageNumber: 1, Text: "budget numbers"},
		{PageNumber: 2, Text: "budget summary"},
	}

	result := svc.Search("budget", pages, 3)
	assert.Equal(t, "[Page 1]: budget numbers\n\n[Page 2]: budget summary", result.ContextText)
}

func TestSplitTextIntoChunks(t *testing.T) {
	text := strings.Repeat("a", 10)
	chunks := SplitTextIntoChunks(text, 3)
	require.Len(t, chunks, 3)
	// ceil(10/3) = 4, so chunks are 4+4+2.
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Len(t, chunks[0].Text, 4)
	assert.Len(t, chunks[1].Text, 4)
	assert.Len(t, chunks[2].Text, 2)
}

func TestSplitTextIntoChunksDropsBlankChunks(t *testing.T) {
	chunks := SplitTextIntoChunks("ab  ", 2)
	require.Len(t, chunks, 1)
	assert.Equal(t, "ab", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestSplitTextIntoChunksZeroPages(t *testing.T) {
	chunks := SplitTextIntoChunks("hello", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0].Text)
}
