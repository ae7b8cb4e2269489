package types

// Chat is one persisted question/answer exchange about a document
type Chat struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	DocumentID string     `json:"document_id" bson:"document_id"`
	Question   string     `json:"question" bson:"question"`
	Answer     string     `json:"answer" bson:"answer"`
	Citations  []Citation `json:"citations" bson:"citations"`
	TokensUsed int        `json:"tokens_used" bson:"tokens_used"`
	CreatedAt  int64      `json:"created_at" bson:"created_at"`
}

// ChatResult is the outcome of one answer generation
type ChatResult struct {
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	TokensUsed int        `json:"tokens_used"`
}
