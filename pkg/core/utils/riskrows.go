package utils

import (
	"fmt"
	"strings"

	"hedgepnl/pkg/models"
)

// ParseRiskRows extracts the structured rows from a model's raw extraction
// response: markdown fences are stripped, the JSON array is located inside
// any surrounding prose, parsing runs through the SmartParse cascade, and
// the category labels are normalized.
func ParseRiskRows(raw string) ([]models.RiskRow, error) {
	cleaned := CleanMarkdown(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array found in model response")
	}

	var rows []models.RiskRow
	if _, err := SmartParse(cleaned[start:end+1], &rows); err != nil {
		return nil, fmt.Errorf("failed to parse extraction rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("model response contained no rows")
	}

	for i := range rows {
		rows[i].ProductType = models.NormalizeLabel(rows[i].ProductType)
		rows[i].RiskType = models.NormalizeLabel(rows[i].RiskType)
		rows[i].GreekType = models.NormalizeLabel(rows[i].GreekType)
	}
	return rows, nil
}
