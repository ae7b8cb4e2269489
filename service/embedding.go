package service

import (
	"context"
	"regexp"
	"strings"
)

// EmbeddingProvider converts text into a fixed-length vector. Remote API
// and local-model backends are interchangeable behind this interface; one
// implementation is selected at startup. A returned error means "no
// embedding available" — callers degrade to text search, they never
// propagate the failure.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// normalizeEmbeddingInput collapses whitespace, trims, and truncates the
// text to the provider's accepted input length.
func normalizeEmbeddingInput(text string, maxLen int) string {
	clean := strings.TrimSpace(whitespaceRegexp.ReplaceAllString(text, " "))
	if len(clean) > maxLen {
		clean = clean[:maxLen]
	}
	return clean
}
