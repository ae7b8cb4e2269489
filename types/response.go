package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	Document *Document `json:"document"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type ProcessingDocumentStatus struct {
	DocumentID     string  `json:"document_id"`
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Progress       float64 `json:"progress,omitempty"`
	TotalPages     int     `json:"total_pages,omitempty"`
	ProcessedPages int     `json:"processed_pages,omitempty"`
}
