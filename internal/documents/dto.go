package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	PageCount  int       `json:"pageCount"`
	TextChars  int       `json:"textChars"`
	HasOCR     bool      `json:"hasOcr"`
	LoadedAt   time.Time `json:"loadedAt"`
}

// ToResponse converts a document for JSON output; nil yields nil.
func ToResponse(doc *Document) *DocumentResponse {
	if doc == nil {
		return nil
	}
	return &DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		SizeBytes:  doc.SizeBytes,
		PageCount:  doc.PageCount,
		TextChars:  len([]rune(doc.ExtractedText)),
		HasOCR:     doc.OCRText != "",
		LoadedAt:   doc.LoadedAt,
	}
}
