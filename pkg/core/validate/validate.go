// Package validate cross-checks model-extracted value pairs against the
// rule-based reference parse. Both sides are reduced to a canonical string
// and compared by SHA-256, so a match certifies every value and the row
// order at once.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"hedgepnl/pkg/models"
)

// =============================================================================
// CANONICAL FORM
// =============================================================================

// FormatValue renders a value with six fractional digits. Negative zero is
// normalized so that "-0.000000" can never diverge from "0.000000".
func FormatValue(v float64) string {
	if v == 0 {
		v = 0
	}
	return fmt.Sprintf("%.6f", v)
}

// Canonicalize joins each pair's values with a comma and the pairs with a
// pipe, in the given order.
func Canonicalize(pairs []models.ValuePair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = FormatValue(p.Rider) + "," + FormatValue(p.Asset)
	}
	return strings.Join(parts, "|")
}

// HashSeries returns the lowercase hex SHA-256 of the canonical form.
func HashSeries(pairs []models.ValuePair) string {
	sum := sha256.Sum256([]byte(Canonicalize(pairs)))
	return hex.EncodeToString(sum[:])
}

// PairsFromRows projects normalized rows onto their value pairs, keeping
// row order.
func PairsFromRows(rows []models.RiskRow) []models.ValuePair {
	pairs := make([]models.ValuePair, len(rows))
	for i, row := range rows {
		pairs[i] = models.ValuePair{Rider: row.RiderValue, Asset: row.AssetValue}
	}
	return pairs
}

// =============================================================================
// COMPARISON
// =============================================================================

// Compare hashes both series and reports whether they agree. A nil or empty
// reference means the rule-based parse was unavailable; the result then
// carries no verdict rather than a spurious mismatch.
func Compare(reference, extracted []models.ValuePair) models.ValidationResult {
	start := time.Now()

	res := models.ValidationResult{
		ConcatLLM: Canonicalize(extracted),
		HashLLM:   HashSeries(extracted),
	}

	// A missing reference is a skip, not an error: the document path has
	// already logged why the rule-based parse produced nothing.
	if len(reference) == 0 {
		res.Elapsed = time.Since(start).Seconds()
		return res
	}

	res.ConcatReference = Canonicalize(reference)
	res.HashReference = HashSeries(reference)

	match := res.HashLLM == res.HashReference
	res.Match = &match
	res.Elapsed = time.Since(start).Seconds()
	return res
}
