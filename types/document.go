package types

const (
	DOCUMENT_STATUS_UPLOADING  = "uploading"
	DOCUMENT_STATUS_PROCESSING = "processing"
	DOCUMENT_STATUS_READY      = "ready"
	DOCUMENT_STATUS_ERROR      = "error"
)

// Document represents an uploaded PDF and everything extracted from it
type Document struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	Filename      string         `json:"filename" bson:"filename"`
	OriginalName  string         `json:"original_name" bson:"original_name"`
	FilePath      string         `json:"-" bson:"file_path"`
	FileSize      int64          `json:"file_size" bson:"file_size"`
	Status        string         `json:"status" bson:"status"`
	ExtractedText string         `json:"-" bson:"extracted_text"`
	PagesData     []DocumentPage `json:"-" bson:"pages_data"`
	TotalPages    int            `json:"total_pages" bson:"total_pages"`
	Vectorized    bool           `json:"vectorized" bson:"vectorized"`
	CreatedAt     int64          `json:"created_at" bson:"created_at"`
	UpdatedAt     int64          `json:"updated_at" bson:"updated_at"`
}

// DocumentPage is one page's extracted text with its 1-based page number.
// Page boundaries are best-effort: when the extractor cannot find real
// breaks, the text is divided evenly across the declared page count.
type DocumentPage struct {
	PageNumber int    `json:"page_number" bson:"page_number"`
	Text       string `json:"text" bson:"text"`
}
