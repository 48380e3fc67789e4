// Package filter removes aggregate rows from normalized extraction output
// before validation, mirroring the exclusions the rule-based parser applies
// to raw table text.
package filter

import (
	"strings"

	"hedgepnl/pkg/models"
)

// keepMarkers are substrings that exempt a row from the total-row filter.
// "HY Total" is a real risk category (high-yield credit), not an aggregate.
var keepMarkers = []string{"hy_total", "hy total"}

// Apply returns the rows that survive the total-row filter, preserving
// order. A row is dropped when any of its text fields contains "total"
// unless the same field also carries a keep marker.
func Apply(rows []models.RiskRow) []models.RiskRow {
	kept := make([]models.RiskRow, 0, len(rows))
	for _, row := range rows {
		if isTotalRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func isTotalRow(row models.RiskRow) bool {
	for _, field := range []string{row.ProductType, row.RiskType, row.GreekType} {
		lower := strings.ToLower(field)
		if !strings.Contains(lower, "total") {
			continue
		}
		if !hasKeepMarker(lower) {
			return true
		}
	}
	return false
}

func hasKeepMarker(lower string) bool {
	for _, m := range keepMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
