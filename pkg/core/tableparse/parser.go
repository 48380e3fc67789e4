// Package tableparse recovers (Liability, Asset) value pairs from the
// whitespace-delimited text of a detected report table. It is the
// deterministic, rule-based side of the cross-check: no model calls, column
// positions only.
package tableparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hedgepnl/pkg/models"
)

// =============================================================================
// TOKEN PARSING
// =============================================================================

var (
	plainNumberRe = regexp.MustCompile(`^-?\d+\.?\d*$`)
	parenNumberRe = regexp.MustCompile(`^\d+\.?\d*$`)

	// Layout OCR occasionally emits checkbox markers glued to a zero cell.
	ocrArtifactRe = regexp.MustCompile(`0\n?:unselected:`)
)

// ParseToken converts one table cell token into a numeric value.
// "-", "None", "nan" and the empty string mean an absent value and map to 0.
// A parenthesized magnitude is negative. Anything else is rejected so that a
// corrupted OCR token skips its row instead of fabricating a value.
func ParseToken(tok string) (float64, bool) {
	tok = strings.TrimSpace(ocrArtifactRe.ReplaceAllString(tok, "0"))

	switch strings.ToLower(tok) {
	case "", "-", "none", "nan":
		return 0, true
	}

	if strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")") {
		inner := tok[1 : len(tok)-1]
		if parenNumberRe.MatchString(inner) {
			v, err := strconv.ParseFloat(inner, 64)
			if err != nil {
				return 0, false
			}
			return -v, true
		}
		return 0, false
	}

	if plainNumberRe.MatchString(tok) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	return 0, false
}

// =============================================================================
// HEADER LOCATION
// =============================================================================

// Header describes the resolved column positions within a header line's
// whitespace-split tokens.
type Header struct {
	LineIndex int // index into the non-empty lines
	RiderCol  int // position of the Liability/Rider value column
	AssetCol  int // position of the Asset value column
}

var productCodes = map[string]bool{"wb": true, "dbib": true}

// FindHeader scans non-empty lines top to bottom for the first line naming
// both value columns. For blue-style tables a "Rider" token sandwiched
// between "VA" and a product code belongs to the table title, not the column
// header, and is skipped when resolving the rider column.
func FindHeader(lines []string, style models.TableStyle) (Header, bool) {
	for i, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "asset") {
			continue
		}
		if !strings.Contains(lower, "liability") && !strings.Contains(lower, "rider") {
			continue
		}

		tokens := strings.Fields(line)
		riderCol, assetCol := -1, -1
		for j, tok := range tokens {
			switch strings.ToLower(tok) {
			case "liability", "rider":
				if riderCol >= 0 {
					continue
				}
				if style == models.StyleBlue && strings.EqualFold(tok, "rider") &&
					j > 0 && strings.EqualFold(tokens[j-1], "va") &&
					j+1 < len(tokens) && productCodes[strings.ToLower(tokens[j+1])] {
					continue // title fragment, not the column header
				}
				riderCol = j
			case "asset":
				if assetCol < 0 {
					assetCol = j
				}
			}
		}

		if riderCol >= 0 && assetCol >= 0 {
			return Header{LineIndex: i, RiderCol: riderCol, AssetCol: assetCol}, true
		}
	}
	return Header{}, false
}

// =============================================================================
// ROW EXTRACTION
// =============================================================================

// Parser extracts ordered value pairs from raw table text. The style tag
// activates the variant-specific header disambiguation rule.
type Parser struct {
	style models.TableStyle
}

// New creates a parser for the given table style.
func New(style models.TableStyle) *Parser {
	return &Parser{style: style}
}

// Parse returns the (Liability, Asset) pairs of every kept data row, in
// original document order. Order is preserved because validation compares
// rows by position, not by label.
func (p *Parser) Parse(tableText string) ([]models.ValuePair, error) {
	var lines []string
	for _, line := range strings.Split(tableText, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty table text")
	}

	header, found := FindHeader(lines, p.style)
	if !found {
		return p.parseFallback(lines)
	}

	// Multiword row labels ("HY Total", "Interest Rate") shift the
	// whitespace-split positions, so the value region is anchored at the
	// first parseable token and the asset column is taken at the header's
	// rider-to-asset offset from there.
	offset := header.AssetCol - header.RiderCol

	var pairs []models.ValuePair
	for _, line := range lines[header.LineIndex+1:] {
		if skipRow(line) {
			continue
		}
		tokens := strings.Fields(line)
		first := firstValueIndex(tokens)
		if first < 0 || first+offset >= len(tokens) {
			continue
		}
		rider, ok := ParseToken(tokens[first])
		if !ok {
			continue
		}
		asset, ok := ParseToken(tokens[first+offset])
		if !ok {
			continue
		}
		if rider == 0 && asset == 0 && first == 0 {
			continue // blank artifact row with no label text
		}
		pairs = append(pairs, models.ValuePair{Rider: rider, Asset: asset})
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no data rows recovered below header")
	}
	return pairs, nil
}

// parseFallback recovers pairs without a header: the first two numeric
// tokens of each kept line become (Liability, Asset).
func (p *Parser) parseFallback(lines []string) ([]models.ValuePair, error) {
	var pairs []models.ValuePair
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "liability") || strings.Contains(lower, "asset") ||
			strings.Contains(lower, "total dynamic") {
			continue
		}
		if skipRow(line) {
			continue
		}

		var nums []float64
		hasLabel := false
		for _, tok := range strings.Fields(line) {
			if v, ok := ParseToken(tok); ok {
				nums = append(nums, v)
			} else if len(nums) == 0 {
				hasLabel = true
			}
		}
		if len(nums) < 2 {
			continue
		}
		if nums[0] == 0 && nums[1] == 0 && !hasLabel {
			continue
		}
		pairs = append(pairs, models.ValuePair{Rider: nums[0], Asset: nums[1]})
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("fallback parse recovered no rows")
	}
	return pairs, nil
}

// skipRow reports whether a data line is excluded from extraction: total
// rows (except HY Total), period-boundary balance rows, and rows holding
// only absent-value tokens.
func skipRow(line string) bool {
	if strings.Contains(line, "Total") && !strings.Contains(line, "HY Total") {
		return true
	}
	if strings.Contains(line, "BOP") || strings.Contains(line, "EoP") || strings.Contains(line, "EOP") {
		return true
	}

	allAbsent := true
	any := false
	for _, tok := range strings.Fields(line) {
		any = true
		switch strings.ToLower(tok) {
		case "-", "none", "nan":
		default:
			allAbsent = false
		}
	}
	return any && allAbsent
}

// firstValueIndex returns the index of the first token past the row's label
// text, i.e. the first token that parses as a value, or -1 when the whole
// row is label text.
func firstValueIndex(tokens []string) int {
	for i, tok := range tokens {
		if _, ok := ParseToken(tok); ok {
			return i
		}
	}
	return -1
}
