package pdfdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF          = errors.New("file is not a PDF")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrInvalidScale    = errors.New("scale must be greater than 0 and at most 8")
	ErrNoRasterizer    = errors.New("page rendering is not configured")
	errUnreadablePages = errors.New("pdf has no readable pages")
)

// MaxScale bounds RenderPage.
const MaxScale = 8.0

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Document is a parsed PDF with per-page text already extracted.
type Document struct {
	data   []byte
	pages  []string
	raster Rasterizer
}

// Load parses data and extracts the text layer of every page. A page whose
// text cannot be read is kept with empty text so OCR can pick it up.
func Load(data []byte, raster Rasterizer) (doc *Document, err error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	n := reader.NumPage()
	if n <= 0 {
		return nil, errUnreadablePages
	}

	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pageText(reader, i)
	}
	return &Document{data: data, pages: pages, raster: raster}, nil
}

func pageText(reader *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// PageCount is the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// PageText returns the text layer of page n (1-based).
func (d *Document) PageText(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// Text joins all pages, each introduced by a "[PAGE n]" marker.
func (d *Document) Text() string {
	var b strings.Builder
	for i, p := range d.pages {
		fmt.Fprintf(&b, "\n[PAGE %d]\n", i+1)
		b.WriteString(p)
	}
	return b.String()
}

// Bytes returns the original file contents.
func (d *Document) Bytes() []byte { return d.data }

// RenderPage rasterizes page n to PNG at scale (1.0 = 72 DPI).
func (d *Document) RenderPage(ctx context.Context, n int, scale float64) ([]byte, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(d.pages))
	}
	if !(scale > 0 && scale <= MaxScale) {
		return nil, ErrInvalidScale
	}
	if d.raster == nil {
		return nil, ErrNoRasterizer
	}
	return d.raster.Render(ctx, d.data, n, int(72*scale+0.5))
}
