package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text in a PNG image.
type Engine interface {
	Recognize(ctx context.Context, png []byte, lang string) (string, error)
}

// TesseractEngine runs Tesseract through gosseract, one client per call.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Recognize(ctx context.Context, png []byte, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if lang = strings.TrimSpace(lang); lang != "" {
		if err := c.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
