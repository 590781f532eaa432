package documents

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"transparency-backend/internal/pdfdoc/pdftest"
	"transparency-backend/internal/shared/storage/object"
	"transparency-backend/internal/shared/storage/object/local"
)

func newService(t *testing.T) (*Service, *local.Store) {
	t.Helper()
	store := local.New(t.TempDir())
	return &Service{Store: store, MaxBytes: 1 << 20}, store
}

func TestUploadLoadsPDF(t *testing.T) {
	svc, store := newService(t)
	data := pdftest.Build("We used ChatGPT to edit the manuscript.", "")

	doc, err := svc.Upload(context.Background(), "local", "paper.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ID == "" || doc.FileName != "paper.pdf" || doc.PageCount != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.SizeBytes != int64(len(data)) {
		t.Fatalf("SizeBytes = %d", doc.SizeBytes)
	}
	if !strings.Contains(doc.ExtractedText, "[PAGE 1]") || !strings.Contains(doc.ExtractedText, "ChatGPT") {
		t.Fatalf("ExtractedText = %q", doc.ExtractedText)
	}
	if doc.PDF() == nil {
		t.Fatalf("parsed pdf handle missing")
	}

	rc, err := store.Open(context.Background(), doc.StorageKey)
	if err != nil {
		t.Fatalf("stored object missing: %v", err)
	}
	_ = rc.Close()

	svc.Discard(context.Background(), doc)
	if _, err := store.Open(context.Background(), doc.StorageKey); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after discard, got %v", err)
	}
}

func TestUploadRejections(t *testing.T) {
	svc, _ := newService(t)
	svc.MaxBytes = 64

	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     error
	}{
		{"not a pdf", "notes.docx", []byte("PK\x03\x04"), ErrUnsupportedType},
		{"missing name", " ", []byte("%PDF-1.4"), ErrInvalidInput},
		{"too large", "big.pdf", append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 100)...), ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), "local", tt.fileName, bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCombinedText(t *testing.T) {
	doc := &Document{ExtractedText: "layer"}
	if doc.CombinedText() != "layer" {
		t.Fatalf("CombinedText = %q", doc.CombinedText())
	}
	doc.OCRText = "\n[OCR PAGE 1]\nscan"
	if doc.CombinedText() != "layer\n\n[OCR PAGE 1]\nscan" {
		t.Fatalf("CombinedText = %q", doc.CombinedText())
	}
	if ToResponse(nil) != nil {
		t.Fatalf("nil document should map to nil response")
	}
}
