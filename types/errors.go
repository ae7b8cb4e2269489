package types

import "errors"

// Errors the retrieval boundary rejects synchronously. Everything else
// inside retrieval degrades to the fallback path instead of surfacing.
var (
	ErrEmptyQuestion    = errors.New("question must not be empty")
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentNotReady = errors.New("document is not ready for chat")
)
