package pdfdoc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"transparency-backend/internal/pdfdoc/pdftest"
)

type stubRunner struct {
	name  string
	args  []string
	stdin []byte
	out   []byte
	err   error
}

func (s *stubRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	s.name, s.args, s.stdin = name, args, stdin
	return s.out, []byte("boom"), s.err
}

func TestLoadExtractsPageText(t *testing.T) {
	data := pdftest.Build("Methods section text", "", "AI use statement")
	doc, err := Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PageCount() != 3 {
		t.Fatalf("PageCount = %d", doc.PageCount())
	}
	p1, _ := doc.PageText(1)
	if !strings.Contains(p1, "Methods section text") {
		t.Fatalf("page 1 text = %q", p1)
	}
	p2, _ := doc.PageText(2)
	if strings.TrimSpace(p2) != "" {
		t.Fatalf("page 2 should be empty, got %q", p2)
	}

	text := doc.Text()
	if !strings.HasPrefix(text, "\n[PAGE 1]\n") {
		t.Fatalf("text should start with page marker: %q", text)
	}
	i2 := strings.Index(text, "\n[PAGE 2]\n")
	i3 := strings.Index(text, "\n[PAGE 3]\n")
	if i2 < 0 || i3 < i2 || !strings.Contains(text[i3:], "AI use statement") {
		t.Fatalf("unexpected page layout: %q", text)
	}
}

func TestLoadRejectsNonPDF(t *testing.T) {
	if _, err := Load([]byte("PK\x03\x04 not a pdf"), nil); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestLoadCorruptPDF(t *testing.T) {
	if _, err := Load([]byte("%PDF-1.4\ngarbage without xref"), nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPageTextOutOfRange(t *testing.T) {
	doc, err := Load(pdftest.Build("one"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, n := range []int{0, 2} {
		if _, err := doc.PageText(n); !errors.Is(err, ErrPageOutOfRange) {
			t.Fatalf("PageText(%d) err = %v", n, err)
		}
	}
}

func TestRenderPageUsesPdftoppm(t *testing.T) {
	runner := &stubRunner{out: []byte("\x89PNG fake")}
	raster := &Pdftoppm{Path: "/usr/bin/pdftoppm", Runner: runner}
	data := pdftest.Build("a", "b")
	doc, err := Load(data, raster)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	png, err := doc.RenderPage(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if string(png) != "\x89PNG fake" {
		t.Fatalf("png = %q", png)
	}
	want := []string{"-f", "2", "-l", "2", "-r", "144", "-png", "-singlefile", "-"}
	if runner.name != "/usr/bin/pdftoppm" || !reflect.DeepEqual(runner.args, want) {
		t.Fatalf("ran %s %v", runner.name, runner.args)
	}
	if len(runner.stdin) != len(data) {
		t.Fatalf("pdf not streamed on stdin")
	}
}

func TestRenderPageValidation(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1")}
	doc, _ := Load(pdftest.Build("a"), &Pdftoppm{Path: "pdftoppm", Runner: runner})

	tests := []struct {
		name  string
		page  int
		scale float64
		want  error
	}{
		{"zero scale", 1, 0, ErrInvalidScale},
		{"too large", 1, 8.5, ErrInvalidScale},
		{"page range", 3, 1, ErrPageOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := doc.RenderPage(context.Background(), tt.page, tt.scale); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := doc.RenderPage(context.Background(), 1, 1)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected stderr in error, got %v", err)
	}

	noRaster, _ := Load(pdftest.Build("a"), nil)
	if _, err := noRaster.RenderPage(context.Background(), 1, 1); !errors.Is(err, ErrNoRasterizer) {
		t.Fatalf("expected ErrNoRasterizer, got %v", err)
	}
}
