package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOptions configure a Tesseract engine instance.
type TesseractOptions struct {
	// Languages are Tesseract traineddata codes, e.g. "eng".
	Languages []string
	// DPI sets the user_defined_dpi variable; subtitle bitmaps carry no
	// resolution metadata and Tesseract guesses poorly without it.
	DPI int
	// PageSegMode overrides the page segmentation mode when positive.
	PageSegMode int
}

type tesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractFactory returns a factory producing gosseract-backed engines.
func NewTesseractFactory(opts TesseractOptions) EngineFactory {
	return func() (Engine, error) {
		client := gosseract.NewClient()
		if len(opts.Languages) > 0 {
			if err := client.SetLanguage(opts.Languages...); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("set languages: %w", err)
			}
		}
		if opts.DPI > 0 {
			if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(opts.DPI)); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("set dpi: %w", err)
			}
		}
		if opts.PageSegMode > 0 {
			if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("set page segmentation mode: %w", err)
			}
		}
		return &tesseractEngine{client: client}, nil
	}
}

func (e *tesseractEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *tesseractEngine) Close() error {
	return e.client.Close()
}
