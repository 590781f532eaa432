package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"transparency-backend/internal/documents"
	"transparency-backend/internal/exports"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/pdfdoc/pdftest"
	"transparency-backend/internal/shared/storage/object/local"
)

type stubProvider struct{ prompt string }

func (s *stubProvider) Tag() llm.Tag { return llm.TagClaude }

func (s *stubProvider) Analyze(ctx context.Context, req llm.AnalyzeRequest) (string, error) {
	s.prompt = req.Prompt
	return `{"found_genai_disclosure": true, "v1": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"v2": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"v3": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"v4": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"v5": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"v6": {"score": 5, "confidence": "high", "explanation_en": "x", "explanation_tr": "y"},
"total_score": 30, "category": "High", "overall_confidence": "high"}`, nil
}

func (s *stubProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	return "", nil
}

func TestParseOptions(t *testing.T) {
	if _, err := parseOptions("", "gpt-4o", ".", "json", 0); err == nil {
		t.Fatalf("expected error without -pdf")
	}
	if _, err := parseOptions("a.pdf", "gpt-4o", ".", "json,docx", 0); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	opts, err := parseOptions("a.pdf", "", "", " JSON, ,xlsx", time.Minute)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if opts.Model == "" || opts.OutDir != "." || len(opts.Formats) != 2 || opts.Formats[1] != exports.FormatXLSX {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestRunWritesExports(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(pdfPath, pdftest.Build("Claude 3 Opus (Anthropic) assisted with coding."), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	provider := &stubProvider{}
	deps := runDeps{
		Documents: &documents.Service{Store: local.New(filepath.Join(dir, "store")), MaxBytes: 1 << 20},
		Providers: llm.Registry{llm.TagClaude: func(string) (llm.Provider, error) { return provider, nil }},
		Key:       func(llm.Tag) string { return "sk-ant-test" },
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	opts := options{
		PDF:     pdfPath,
		Model:   "claude-sonnet-4-5",
		OutDir:  filepath.Join(dir, "out"),
		Formats: []exports.Format{exports.FormatJSON, exports.FormatCSV},
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, deps, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(provider.prompt, "Claude 3 Opus") {
		t.Fatalf("document text not sent to the provider")
	}
	for _, name := range []string{"coding_paper.json", "coding_paper.csv"} {
		if _, err := os.Stat(filepath.Join(opts.OutDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "Total: 30\nCategory: High") {
		t.Fatalf("unexpected summary: %q", out.String())
	}
}

func TestRunRequiresKey(t *testing.T) {
	deps := runDeps{Key: func(llm.Tag) string { return "" }}
	err := run(context.Background(), options{PDF: "x.pdf", Model: "gpt-4o"}, deps, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
