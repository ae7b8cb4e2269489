package types

type ChatRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}
