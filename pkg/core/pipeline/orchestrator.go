// Package pipeline drives the end-to-end flow for each input file: route,
// extract, validate, persist, log. Batch runs isolate per-file failures so
// one bad report never stops the rest of the day's inputs.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"hedgepnl/pkg/core/document"
	"hedgepnl/pkg/core/files"
	"hedgepnl/pkg/core/router"
	"hedgepnl/pkg/core/store"
	"hedgepnl/pkg/core/validate"
	"hedgepnl/pkg/core/workbook"
	"hedgepnl/pkg/models"
)

// ValidationSink receives validation outcomes beyond the run log, e.g. the
// Postgres audit repository. Optional.
type ValidationSink interface {
	Save(ctx context.Context, fileName string, result models.ValidationResult) error
}

// Orchestrator wires the extraction paths with persistence.
type Orchestrator struct {
	Workbook *workbook.Processor
	Document *document.Processor
	Files    *files.Manager
	Log      *store.RunLog
	Output   *store.Output
	Sink     ValidationSink // optional
}

// Summary aggregates one batch run.
type Summary struct {
	Processed int
	Correct   int
	Wrong     int
	Skipped   int
	Errors    int
}

// RunBatch processes the files selected by mode: "all", "date" (dateCode
// required) or "new" (files absent from the process log).
func (o *Orchestrator) RunBatch(ctx context.Context, mode, dateCode string) (*Summary, error) {
	var (
		paths []string
		err   error
	)
	switch mode {
	case "all":
		paths, err = o.Files.ListAll()
	case "date":
		if dateCode == "" {
			return nil, fmt.Errorf("date mode requires a YYYYMMDD date code")
		}
		paths, err = o.Files.ListByDate(dateCode)
	case "new":
		paths, err = o.Files.ListUnprocessed(o.Log.ProcessLogPath())
	default:
		return nil, fmt.Errorf("unknown batch mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, path := range paths {
		state, err := o.ProcessFile(ctx, path)
		summary.Processed++
		if err != nil {
			log.Printf("[Pipeline] %s failed: %v", filepath.Base(path), err)
			summary.Errors++
			continue
		}
		switch state.Validation.Verdict() {
		case "correct":
			summary.Correct++
		case "wrong":
			summary.Wrong++
		case "skipped":
			summary.Skipped++
		default:
			summary.Errors++
		}
	}

	log.Printf("[Pipeline] batch done: %d processed, %d correct, %d wrong, %d skipped, %d errors",
		summary.Processed, summary.Correct, summary.Wrong, summary.Skipped, summary.Errors)
	return summary, nil
}

// ProcessFile runs one input end to end and returns the per-file state.
// The returned error covers extraction failures; a completed extraction
// with a failed cross-check is not an error, it is a "wrong" verdict.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) (*models.ProcessingState, error) {
	if err := o.Log.LogProcessStart(path); err != nil {
		return nil, err
	}

	state := &models.ProcessingState{
		FilePath: path,
		FileType: router.Classify(path),
	}

	var extracted []models.RiskRow
	var reference []models.ValuePair

	switch state.FileType {
	case models.FileTypeSpreadsheet:
		result := o.Workbook.Process(ctx, path)
		state.Workbook = result
		if !result.OK {
			return state, fmt.Errorf("workbook extraction failed: %s", result.Reason)
		}
		extracted, reference = result.Rows, result.Reference
		if _, err := o.Output.WriteCombined(path, result.Rows); err != nil {
			return state, err
		}

	case models.FileTypeDocument:
		result, record := o.Document.Process(ctx, path)
		state.Document = result
		state.Highlights = &record

		// Commentary is persisted even when the table path failed. The
		// subject-line date names the artifact; the filename is the
		// fallback for subjects that omit it.
		dateCode := record.Date
		if dateCode == "" {
			dateCode = files.DateCode(filepath.Base(path))
		}
		if _, err := o.Output.WriteHighlights(dateCode, record); err != nil {
			log.Printf("[Pipeline] highlights write failed for %s: %v", filepath.Base(path), err)
		}

		if !result.OK {
			return state, fmt.Errorf("document extraction failed: %s", result.Reason)
		}
		extracted, reference = result.Rows, result.Reference
		if _, err := o.Output.WriteTable(path, result.Rows); err != nil {
			return state, err
		}

	default:
		return state, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	validation := validate.Compare(reference, validate.PairsFromRows(extracted))
	state.Validation = &validation

	if err := o.Log.LogValidation(path, validation); err != nil {
		return state, err
	}
	if o.Sink != nil {
		if err := o.Sink.Save(ctx, filepath.Base(path), validation); err != nil {
			log.Printf("[Pipeline] validation sink failed for %s: %v", filepath.Base(path), err)
		}
	}
	return state, nil
}
