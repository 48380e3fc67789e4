// Package document implements the email extraction path: attachments are
// pre-screened for the report title, the matching image is classified by
// style, layout analysis recovers the table, and the model transforms it
// into normalized rows. The layout text is also parsed rule-based to give
// validation its reference series.
package document

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"hedgepnl/pkg/core/files"
	"hedgepnl/pkg/core/filter"
	"hedgepnl/pkg/core/highlights"
	"hedgepnl/pkg/core/llm"
	"hedgepnl/pkg/core/mail"
	"hedgepnl/pkg/core/ocr"
	"hedgepnl/pkg/core/prompt"
	"hedgepnl/pkg/core/tableparse"
	"hedgepnl/pkg/core/utils"
	"hedgepnl/pkg/models"
)

// Processor wires the collaborators of the email path. All fields are
// required except Reader, which defaults to a MIME reader.
type Processor struct {
	Reader     mail.Reader
	PreScreen  ocr.TextRecognizer
	Layout     ocr.LayoutAnalyzer
	Classifier llm.VisionClassifier

	// Transformers by table style; a style without an entry fails the file.
	Transformers map[models.TableStyle]llm.TableTransformer
}

// Process runs the full email flow. Highlights are always extracted, even
// when no table image is found, so commentary survives table failures.
func (p *Processor) Process(ctx context.Context, path string) (*models.DocumentResult, models.HighlightRecord) {
	reader := p.Reader
	if reader == nil {
		reader = &mail.MIMEReader{}
	}

	msg, err := reader.Read(ctx, path)
	if err != nil {
		return &models.DocumentResult{Reason: fmt.Sprintf("failed to read email: %v", err)}, models.HighlightRecord{}
	}

	record := highlights.Extract(msg)

	imagePath, found := p.findTargetImage(ctx, msg.ImagePaths)
	if !found {
		return &models.DocumentResult{Reason: "no target image found"}, record
	}

	result := p.processImage(ctx, path, imagePath)
	return result, record
}

// findTargetImage pre-screens every image attachment with local OCR and
// returns the first one carrying the report title marker.
func (p *Processor) findTargetImage(ctx context.Context, paths []string) (string, bool) {
	for _, imgPath := range paths {
		text, err := p.PreScreen.RecognizeText(ctx, imgPath)
		if err != nil {
			log.Printf("[Document] pre-screen failed for %s: %v", imgPath, err)
			continue
		}
		if strings.Contains(text, ocr.TargetMarker) {
			return imgPath, true
		}
	}
	return "", false
}

func (p *Processor) processImage(ctx context.Context, emailPath, imagePath string) *models.DocumentResult {
	style, err := p.Classifier.ClassifyTable(ctx, imagePath)
	if err != nil {
		return &models.DocumentResult{Reason: fmt.Sprintf("style classification failed: %v", err)}
	}
	if style == models.StyleUnknown {
		return &models.DocumentResult{Reason: "unrecognized table style"}
	}

	grids, err := p.Layout.AnalyzeTables(ctx, imagePath)
	if err != nil {
		return &models.DocumentResult{Style: style, Reason: fmt.Sprintf("layout analysis failed: %v", err)}
	}
	idx := tableparse.SelectGrid(grids)
	if idx < 0 {
		return &models.DocumentResult{Style: style, Reason: "layout analysis found no plausible table"}
	}
	tableText := tableparse.RenderGrid(grids[idx])

	transformer, ok := p.Transformers[style]
	if !ok {
		return &models.DocumentResult{Style: style, Reason: fmt.Sprintf("no transformer configured for style %q", style)}
	}

	dateHint := DateFromFilename(filepath.Base(emailPath))
	promptText, err := prompt.BuildTablePrompt(style, tableText, dateHint)
	if err != nil {
		return &models.DocumentResult{Style: style, Reason: err.Error()}
	}

	response, err := transformer.Transform(ctx, promptText)
	if err != nil {
		return &models.DocumentResult{Style: style, Reason: fmt.Sprintf("model transform failed: %v", err)}
	}

	rows, err := utils.ParseRiskRows(response)
	if err != nil {
		return &models.DocumentResult{
			Style:       style,
			Reason:      fmt.Sprintf("failed to parse model response: %v", err),
			RawResponse: response,
		}
	}
	for i := range rows {
		if rows[i].ValuationDate == "" {
			rows[i].ValuationDate = dateHint
		}
	}
	rows = filter.Apply(rows)

	// Rule-based parse of the same layout text. Its failure downgrades
	// validation to skipped instead of failing the file.
	reference, err := tableparse.New(style).Parse(tableText)
	if err != nil {
		log.Printf("[Document] reference parse unavailable for %s: %v", emailPath, err)
		reference = nil
	}

	result := &models.DocumentResult{
		OK:          true,
		Style:       style,
		Rows:        rows,
		Reference:   reference,
		RawResponse: response,
	}
	if style == models.StyleBlue {
		result.MissingChecklist = prompt.MissingChecklist(rows)
	}
	return result
}

// DateFromFilename recovers a YYYYMMDD date from names like
// "report_2025_6_13.msg". It shares files.DateCode so the prompt date hint
// and the batch date selection can never disagree about the same name.
func DateFromFilename(name string) string {
	return files.DateCode(name)
}
