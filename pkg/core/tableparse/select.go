package tableparse

import (
	"strings"

	"hedgepnl/pkg/models"
)

// =============================================================================
// CANDIDATE TABLE SELECTION
// =============================================================================

// Scoring weights for picking the P&L table when layout analysis detects
// several candidates on one image.
const (
	weightValueColumns = 5 // both a label-like and an "Asset" column present
	weightMarker       = 3 // "Total Dynamic Hedge P&L" marker string
	weightRiskKeywords = 3 // known risk-category vocabulary
	weightShape        = 1 // row/column count thresholds
)

var riskKeywords = []string{
	"equity", "delta", "gamma", "rho", "credit", "basis",
	"convexity", "theta", "volatility", "fund",
}

// ScoreGrid rates one detected table's likelihood of being the P&L table.
func ScoreGrid(g models.TableGrid) int {
	text := strings.ToLower(flattenGrid(g))
	score := 0

	if strings.Contains(text, "asset") &&
		(strings.Contains(text, "liability") || strings.Contains(text, "rider")) {
		score += weightValueColumns
	}
	if strings.Contains(text, "total dynamic hedge") {
		score += weightMarker
	}
	for _, kw := range riskKeywords {
		if strings.Contains(text, kw) {
			score += weightRiskKeywords
			break
		}
	}
	if g.RowCount() >= 4 && g.ColumnCount() >= 3 {
		score += weightShape
	}
	return score
}

// SelectGrid returns the index of the best-scoring candidate table, first
// occurrence winning ties, or -1 when no candidate scores above zero.
func SelectGrid(grids []models.TableGrid) int {
	best, bestScore := -1, 0
	for i, g := range grids {
		if s := ScoreGrid(g); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// RenderGrid formats a grid as whitespace-aligned text, one table row per
// line, columns padded to a shared width. This is the RawTableText form the
// parser and the prompts both consume.
func RenderGrid(g models.TableGrid) string {
	widths := make([]int, g.ColumnCount())
	for _, row := range g.Rows {
		for c, cell := range row {
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range g.Rows {
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if pad := widths[c] - len(cell); pad > 0 && c < len(row)-1 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func flattenGrid(g models.TableGrid) string {
	var b strings.Builder
	for _, row := range g.Rows {
		b.WriteString(strings.Join(row, " "))
		b.WriteString(" ")
	}
	return b.String()
}
