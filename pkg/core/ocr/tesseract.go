package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract pre-screens images with a local tesseract install. Accuracy
// only needs to be good enough to spot the report title marker.
type Tesseract struct {
	Languages []string // defaults to tesseract's own default (eng)
}

var _ TextRecognizer = (*Tesseract)(nil)

func (t *Tesseract) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to load image %s: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition failed: %w", err)
	}
	return text, nil
}
