package types

// VectorRecord is one embedded page of a document as persisted in the
// per-document index file.
type VectorRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Values     []float32 `json:"values"`
	Excerpt    string    `json:"excerpt"`
	FullText   string    `json:"full_text"`
}

// RetrievalResult is a ranked page returned by vector search.
type RetrievalResult struct {
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
	FullText   string  `json:"full_text"`
}

// Citation points the user at a source page for an answer. The relevance
// score scale depends on the search strategy that produced it: cosine
// similarity in [0,1] for vector search, scaled keyword score for text
// search.
type Citation struct {
	PageNumber     int     `json:"page_number" bson:"page_number"`
	RelevanceScore float64 `json:"relevance_score" bson:"relevance_score"`
	Snippet        string  `json:"snippet" bson:"snippet"`
}

// RetrievalContext is the assembled input for the answer prompt.
type RetrievalContext struct {
	ContextText string     `json:"context_text"`
	Citations   []Citation `json:"citations"`
}
