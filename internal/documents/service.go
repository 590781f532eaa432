package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"transparency-backend/internal/pdfdoc"
	"transparency-backend/internal/shared/metrics"
	"transparency-backend/internal/shared/storage/object"
	"transparency-backend/internal/shared/telemetry"
)

// Service loads uploaded PDFs. Files are kept in the object store for the
// lifetime of the session's document and removed when it is replaced.
type Service struct {
	Store    object.ObjectStore
	Raster   pdfdoc.Rasterizer
	MaxBytes int64
}

// Upload validates and parses a PDF. Nothing is stored when the payload is
// not a PDF.
func (s *Service) Upload(ctx context.Context, sessionID, fileName string, r io.Reader) (*Document, error) {
	data, err := s.Read(r)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, sessionID, fileName, data)
}

// Read buffers an upload and checks that it is a PDF within the size limit.
func (s *Service) Read(r io.Reader) ([]byte, error) {
	data, err := s.read(r)
	if err != nil {
		return nil, err
	}
	if !pdfdoc.IsPDF(data) {
		metrics.IncDocumentRejected()
		return nil, ErrUnsupportedType
	}
	return data, nil
}

// Load parses data and keeps a copy in the object store.
func (s *Service) Load(ctx context.Context, sessionID, fileName string, data []byte) (*Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, ErrInvalidInput
	}

	parsed, err := pdfdoc.Load(data, s.Raster)
	if err != nil {
		metrics.IncDocumentRejected()
		telemetry.Warn("document.load_failed", map[string]any{"session_id": sessionID, "error": err})
		return nil, err
	}

	storageKey, size, _, err := s.Store.Save(ctx, sessionID, fileName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := &Document{
		ID:            uuid.NewString(),
		FileName:      fileName,
		SizeBytes:     size,
		StorageKey:    storageKey,
		PageCount:     parsed.PageCount(),
		ExtractedText: parsed.Text(),
		LoadedAt:      time.Now().UTC(),
		pdf:           parsed,
	}
	metrics.IncDocumentLoaded()
	telemetry.Info("document.loaded", map[string]any{
		"session_id":  sessionID,
		"document_id": doc.ID,
		"pages":       doc.PageCount,
		"size_bytes":  doc.SizeBytes,
	})
	return doc, nil
}

// Discard removes a replaced document's stored bytes.
func (s *Service) Discard(ctx context.Context, doc *Document) {
	if doc == nil || doc.StorageKey == "" {
		return
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("document.discard_failed", map[string]any{"document_id": doc.ID, "error": err})
	}
}

func (s *Service) read(r io.Reader) ([]byte, error) {
	if s.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
