// Package ocr provides the two recognition stages of the image path: a
// cheap local pre-screen that reads enough text to spot the target report,
// and a layout analyzer that recovers full table structure.
package ocr

import (
	"context"

	"hedgepnl/pkg/models"
)

// TargetMarker is the title fragment that identifies a hedge P&L report
// image among arbitrary email attachments.
const TargetMarker = "Total Dynamic Hedge P&L as of"

// TextRecognizer reads plain text off an image. Used to pre-screen
// attachments before any paid layout call.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// LayoutAnalyzer recovers structured tables from an image.
type LayoutAnalyzer interface {
	AnalyzeTables(ctx context.Context, imagePath string) ([]models.TableGrid, error)
}
