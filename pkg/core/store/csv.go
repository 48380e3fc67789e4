package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hedgepnl/pkg/models"
)

// Output writes the extraction artifacts of a run as CSV files.
type Output struct {
	Dir string
}

// NewOutput ensures the output directory exists.
func NewOutput(dir string) (*Output, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Output{Dir: dir}, nil
}

var riskRowHeader = []string{
	"VALUATION_DATE", "PRODUCT_TYPE", "RISK_TYPE", "GREEK_TYPE", "RIDER_VALUE", "ASSET_VALUE",
}

// WriteTable writes the normalized rows of one email-path extraction as
// table_<base>.csv, where base is the source filename without extension.
func (o *Output) WriteTable(sourcePath string, rows []models.RiskRow) (string, error) {
	name := fmt.Sprintf("table_%s.csv", baseName(sourcePath))
	return o.writeRows(name, rows)
}

// WriteCombined writes the concatenated rows of a workbook extraction as
// combined_llm_output_<base>.csv.
func (o *Output) WriteCombined(sourcePath string, rows []models.RiskRow) (string, error) {
	name := fmt.Sprintf("combined_llm_output_%s.csv", baseName(sourcePath))
	return o.writeRows(name, rows)
}

// WriteHighlights writes the commentary record as highlights_<date>.csv
// with one column per section.
func (o *Output) WriteHighlights(dateCode string, record models.HighlightRecord) (string, error) {
	if dateCode == "" {
		dateCode = "undated"
	}
	path := filepath.Join(o.Dir, fmt.Sprintf("highlights_%s.csv", dateCode))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Daily Highlights", "QTD Highlights"}); err != nil {
		return "", err
	}
	if err := w.Write([]string{record.Daily, record.QTD}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (o *Output) writeRows(name string, rows []models.RiskRow) (string, error) {
	path := filepath.Join(o.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(riskRowHeader); err != nil {
		return "", err
	}
	for _, row := range rows {
		record := []string{
			row.ValuationDate,
			row.ProductType,
			row.RiskType,
			row.GreekType,
			strconv.FormatFloat(row.RiderValue, 'f', -1, 64),
			strconv.FormatFloat(row.AssetValue, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
