package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"transparency-backend/internal/shared/telemetry"
)

// Rasterizer renders one PDF page to PNG.
type Rasterizer interface {
	Render(ctx context.Context, pdf []byte, page, dpi int) ([]byte, error)
}

// Runner lets tests stub external commands.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	fields := map[string]any{
		"cmd":         name,
		"args":        strings.Join(args, " "),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		fields["stderr"] = truncate(errb.String(), 8<<10)
		telemetry.Error("exec.failed", fields)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// Pdftoppm renders pages with poppler's pdftoppm, streaming the PDF on stdin.
type Pdftoppm struct {
	Path   string
	Runner Runner
}

func NewPdftoppm(path string) *Pdftoppm {
	if strings.TrimSpace(path) == "" {
		path = "pdftoppm"
	}
	return &Pdftoppm{Path: path, Runner: execRunner{}}
}

func (p *Pdftoppm) Render(ctx context.Context, pdf []byte, page, dpi int) ([]byte, error) {
	n := strconv.Itoa(page)
	args := []string{"-f", n, "-l", n, "-r", strconv.Itoa(dpi), "-png", "-singlefile", "-"}
	out, errb, err := p.Runner.Run(ctx, pdf, p.Path, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return nil, fmt.Errorf("render page %d: %w", page, err)
		}
		return nil, fmt.Errorf("render page %d: %w: %s", page, err, msg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("render page %d: pdftoppm produced no image", page)
	}
	return out, nil
}

// Check reports whether the pdftoppm executable can be found.
func (p *Pdftoppm) Check(ctx context.Context) error {
	if _, err := exec.LookPath(p.Path); err != nil {
		return fmt.Errorf("pdftoppm unavailable: %w", err)
	}
	return nil
}
