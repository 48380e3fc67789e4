// Package models defines the canonical data types shared by the extraction
// paths and the validation engine.
package models

import "strings"

// FileType is the routing outcome for an input file.
type FileType string

const (
	FileTypeSpreadsheet FileType = "spreadsheet"
	FileTypeDocument    FileType = "document"
	FileTypeUnknown     FileType = "unknown"
)

// TableStyle identifies the visual variant of a report table image.
// The two production variants differ in column layout and row grouping.
type TableStyle string

const (
	StyleRed     TableStyle = "red"
	StyleBlue    TableStyle = "blue"
	StyleUnknown TableStyle = "unknown"
)

// RiskRow is one extracted fact in the canonical schema. RISK_TYPE and
// GREEK_TYPE are underscore-joined identifiers; they are never merged into
// a single field.
type RiskRow struct {
	ValuationDate string  `json:"VALUATION_DATE"`
	ProductType   string  `json:"PRODUCT_TYPE"`
	RiskType      string  `json:"RISK_TYPE"`
	GreekType     string  `json:"GREEK_TYPE"`
	RiderValue    float64 `json:"RIDER_VALUE"`
	AssetValue    float64 `json:"ASSET_VALUE"`
}

// ValuePair is one (Liability, Asset) pair from the deterministic reference
// extraction. It carries no labels: the reference parse recovers values by
// column position only.
type ValuePair struct {
	Rider float64 `json:"Liability"`
	Asset float64 `json:"Asset"`
}

// CategoryPair names a (RISK_TYPE, GREEK_TYPE) combination.
type CategoryPair struct {
	RiskType  string
	GreekType string
}

// HighlightRecord holds the bullet-style commentary sections extracted from
// an email body, plus the valuation date recovered from the subject line.
// Any field may be empty.
type HighlightRecord struct {
	Daily string `json:"Daily Highlights"`
	QTD   string `json:"QTD Highlights"`
	Date  string `json:"-"` // YYYYMMDD from the subject, for artifact naming
}

// TableGrid is a structured table produced by layout analysis: cell contents
// addressed by row and column index.
type TableGrid struct {
	Rows [][]string
}

// RowCount returns the number of rows in the grid.
func (g TableGrid) RowCount() int { return len(g.Rows) }

// ColumnCount returns the widest row's cell count.
func (g TableGrid) ColumnCount() int {
	max := 0
	for _, r := range g.Rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

// ValidationResult is the immutable outcome of one cross-check between the
// reference extraction and the LLM-derived table. Match is nil when the
// comparison could not be performed (missing reference data or an error).
type ValidationResult struct {
	Match           *bool   `json:"match"`
	HashLLM         string  `json:"hash_llm"`
	HashReference   string  `json:"hash_reference"`
	ConcatLLM       string  `json:"concat_llm"`
	ConcatReference string  `json:"concat_reference"`
	Elapsed         float64 `json:"elapsed_seconds"`
	Err             string  `json:"error,omitempty"`
}

// Verdict renders the result as the audit-log token.
func (v ValidationResult) Verdict() string {
	if v.Err != "" {
		return "error"
	}
	if v.Match == nil {
		return "skipped"
	}
	if *v.Match {
		return "correct"
	}
	return "wrong"
}

// WorkbookResult is the tagged outcome of the spreadsheet extraction path.
type WorkbookResult struct {
	OK               bool
	Reason           string
	ProcessedSheets  []string
	Rows             []RiskRow
	Reference        []ValuePair
	MissingChecklist []CategoryPair
}

// DocumentResult is the tagged outcome of the email extraction path.
// RawResponse preserves the model output when parsing failed, for diagnosis.
type DocumentResult struct {
	OK               bool
	Reason           string
	Style            TableStyle
	Rows             []RiskRow
	Reference        []ValuePair
	RawResponse      string
	MissingChecklist []CategoryPair
}

// ProcessingState is the per-file context threaded through one pipeline run.
// It is owned by exactly one file's processing and never shared.
type ProcessingState struct {
	FilePath   string
	FileType   FileType
	Workbook   *WorkbookResult
	Document   *DocumentResult
	Highlights *HighlightRecord
	Validation *ValidationResult
}

// NormalizeLabel converts a human label into the underscore-joined identifier
// form used by RISK_TYPE and GREEK_TYPE: spaces, ampersands and slashes
// become underscores, runs of underscores collapse, capitalization is kept.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '&', '/', ',', ':', '-':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}
