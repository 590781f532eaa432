package main

// Code one PDF from the command line:
//   go run ./cmd/codepdf -pdf paper.pdf -model gemini-2.5-pro -out ./out -formats json,csv,html,xlsx

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"transparency-backend/internal/bootstrap"
	"transparency-backend/internal/documents"
	"transparency-backend/internal/exports"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/ocr"
	"transparency-backend/internal/shared/config"
	"transparency-backend/internal/shared/telemetry"
)

const cliSession = "cli"

type options struct {
	PDF     string
	Model   string
	OutDir  string
	Formats []exports.Format
	Timeout time.Duration
}

type runDeps struct {
	Documents *documents.Service
	OCR       *ocr.Fallback
	Providers llm.Registry
	Key       func(llm.Tag) string
	Now       func() time.Time
}

func main() {
	cfg := config.Load()

	var (
		pdfPath = flag.String("pdf", "", "path to the PDF to code")
		model   = flag.String("model", cfg.DefaultModel, "model identifier")
		outDir  = flag.String("out", ".", "directory for export files")
		formats = flag.String("formats", "json,csv", "comma-separated export formats (json,csv,html,xlsx)")
		timeout = flag.Duration("timeout", 10*time.Minute, "overall time limit")
	)
	flag.Parse()

	opts, err := parseOptions(*pdfPath, *model, *outDir, *formats, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := runDeps{
		Documents: app.Documents,
		OCR:       app.OCR,
		Providers: app.Providers,
		Key: func(tag llm.Tag) string {
			if key := app.Credentials.Get(tag); key != "" {
				return key
			}
			return strings.TrimSpace(os.Getenv(tag.KeyName()))
		},
		Now: time.Now,
	}
	if err := run(ctx, opts, deps, os.Stdout); err != nil {
		telemetry.Error("codepdf.failed", map[string]any{"pdf": opts.PDF, "model": opts.Model, "error": err})
		os.Exit(1)
	}
}

func parseOptions(pdfPath, model, outDir, formats string, timeout time.Duration) (options, error) {
	opts := options{
		PDF:     strings.TrimSpace(pdfPath),
		Model:   strings.TrimSpace(model),
		OutDir:  strings.TrimSpace(outDir),
		Timeout: timeout,
	}
	if opts.PDF == "" {
		return options{}, errors.New("-pdf is required")
	}
	if opts.Model == "" {
		opts.Model = llm.DefaultModel(llm.TagGemini)
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	for _, raw := range strings.Split(formats, ",") {
		f := exports.Format(strings.ToLower(strings.TrimSpace(raw)))
		switch f {
		case "":
			continue
		case exports.FormatJSON, exports.FormatCSV, exports.FormatHTML, exports.FormatXLSX:
			opts.Formats = append(opts.Formats, f)
		default:
			return options{}, fmt.Errorf("unknown format %q", raw)
		}
	}
	return opts, nil
}

func run(ctx context.Context, opts options, deps runDeps, stdout io.Writer) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	tag := llm.ProviderForModel(opts.Model)
	key := deps.Key(tag)
	if key == "" {
		return fmt.Errorf("no %s API key: save one in the app or set %s", tag.Label(), tag.KeyName())
	}
	provider, err := deps.Providers.Provider(tag, key)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.PDF)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := deps.Documents.Upload(ctx, cliSession, filepath.Base(opts.PDF), f)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.PDF, err)
	}
	defer deps.Documents.Discard(context.Background(), doc)

	if pages := doc.PDF(); pages != nil {
		doc.OCRText, _ = deps.OCR.Run(ctx, pages, nil)
	}

	result, err := llm.Analyze(ctx, provider, opts.Model, doc.CombinedText())
	if err != nil {
		return err
	}

	subject := exports.Subject{
		FileName: doc.FileName,
		Model:    opts.Model,
		Result:   &result,
		Date:     deps.Now(),
	}
	if len(opts.Formats) > 0 {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return err
		}
	}
	for _, format := range opts.Formats {
		file, err := exports.Render(format, subject)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.OutDir, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	fmt.Fprintln(stdout, exports.Summary(subject))
	return nil
}
