package ocr

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"transparency-backend/internal/shared/metrics"
	"transparency-backend/internal/shared/telemetry"
)

// Defaults for Fallback.
const (
	DefaultMaxPages    = 15
	DefaultMinChars    = 300
	DefaultMinOCRChars = 30
	DefaultLang        = "eng"
	renderScale        = 2.0
)

// Pages is the part of a loaded PDF the fallback needs.
type Pages interface {
	PageCount() int
	PageText(n int) (string, error)
	RenderPage(ctx context.Context, n int, scale float64) ([]byte, error)
}

// ProgressFunc receives a 0..100 progress value and a status line.
type ProgressFunc func(progress int, status string)

// Report summarizes one fallback run.
type Report struct {
	Examined   int `json:"examined"`
	Recognized int `json:"recognized"`
	Failed     int `json:"failed"`
}

// Fallback OCRs pages whose text layer is too thin. Only the leading
// MaxPages pages are considered and pages are processed one at a time.
type Fallback struct {
	Engine      Engine
	Lang        string
	MaxPages    int
	MinChars    int
	MinOCRChars int
}

func NewFallback(engine Engine, lang string) *Fallback {
	return &Fallback{
		Engine:      engine,
		Lang:        lang,
		MaxPages:    DefaultMaxPages,
		MinChars:    DefaultMinChars,
		MinOCRChars: DefaultMinOCRChars,
	}
}

// Run returns the OCR text for sparse pages, each introduced by an
// "[OCR PAGE n]" marker. Page failures are logged and skipped; the run
// itself never fails.
func (f *Fallback) Run(ctx context.Context, doc Pages, onProgress ProgressFunc) (string, Report) {
	var report Report
	if f == nil || f.Engine == nil || doc == nil {
		return "", report
	}
	lang := f.Lang
	if strings.TrimSpace(lang) == "" {
		lang = DefaultLang
	}

	total := doc.PageCount()
	limit := total
	if f.MaxPages > 0 && limit > f.MaxPages {
		limit = f.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		if ctx.Err() != nil {
			break
		}
		text, err := doc.PageText(i)
		if err != nil || utf8.RuneCountInString(text) >= f.MinChars {
			continue
		}

		report.Examined++
		if onProgress != nil {
			onProgress(50+int(float64(i)/float64(total)*40), fmt.Sprintf("Running OCR on page %d...", i))
		}

		recognized, err := f.recognizePage(ctx, doc, i, lang)
		if err != nil {
			report.Failed++
			telemetry.Warn("ocr.page_failed", map[string]any{"page": i, "error": err})
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(recognized)) > f.MinOCRChars {
			report.Recognized++
			fmt.Fprintf(&b, "\n[OCR PAGE %d]\n", i)
			b.WriteString(recognized)
		}
	}

	metrics.AddOCRPages(report.Examined, report.Recognized, report.Failed)
	if report.Examined > 0 {
		telemetry.Info("ocr.complete", map[string]any{
			"pages":      total,
			"examined":   report.Examined,
			"recognized": report.Recognized,
			"failed":     report.Failed,
		})
	}
	return b.String(), report
}

func (f *Fallback) recognizePage(ctx context.Context, doc Pages, page int, lang string) (string, error) {
	png, err := doc.RenderPage(ctx, page, renderScale)
	if err != nil {
		return "", err
	}
	return f.Engine.Recognize(ctx, png, lang)
}
