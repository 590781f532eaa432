package documents

import (
	"strings"
	"time"

	"transparency-backend/internal/pdfdoc"
)

// Document is a loaded PDF: its stored bytes plus extracted text.
type Document struct {
	ID            string
	FileName      string
	SizeBytes     int64
	StorageKey    string
	PageCount     int
	ExtractedText string
	OCRText       string
	LoadedAt      time.Time

	pdf *pdfdoc.Document
}

// PDF returns the parsed file.
func (d *Document) PDF() *pdfdoc.Document { return d.pdf }

// CombinedText is the text layer followed by any OCR text.
func (d *Document) CombinedText() string {
	if strings.TrimSpace(d.OCRText) == "" {
		return d.ExtractedText
	}
	return d.ExtractedText + "\n" + d.OCRText
}
