package tableparse

import (
	"testing"

	"hedgepnl/pkg/models"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		tok      string
		expected float64
		ok       bool
	}{
		{"15.7", 15.7, true},
		{"-15.7", -15.7, true},
		{"(15.7)", -15.7, true},
		{"(12.3)", -12.3, true},
		{"0", 0, true},
		{"-0.0", 0, true}, // negative zero parses; canonicalization normalizes it
		{"-", 0, true},
		{"None", 0, true},
		{"nan", 0, true},
		{"", 0, true},
		{"0\n:unselected:", 0, true},
		{"1,234.5", 0, false}, // thousands separators are not produced by this layout
		{"(abc)", 0, false},
		{"12.3x", 0, false},
		{"Equity:", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseToken(tt.tok)
		if ok != tt.ok {
			t.Errorf("ParseToken(%q) ok = %v, want %v", tt.tok, ok, tt.ok)
			continue
		}
		if ok && got != tt.expected {
			t.Errorf("ParseToken(%q) = %v, want %v", tt.tok, got, tt.expected)
		}
	}
}

func TestFindHeaderBlueDisambiguation(t *testing.T) {
	// The first "Rider" belongs to the title fragment "VA Rider DBIB"; the
	// real value column is the second occurrence.
	lines := []string{"VA Rider DBIB Rider Asset Daily Net"}

	h, found := FindHeader(lines, models.StyleBlue)
	if !found {
		t.Fatal("expected header to be found")
	}
	if h.RiderCol != 3 {
		t.Errorf("RiderCol = %d, want 3", h.RiderCol)
	}
	if h.AssetCol != 4 {
		t.Errorf("AssetCol = %d, want 4", h.AssetCol)
	}
}

func TestFindHeaderRedTakesFirstRider(t *testing.T) {
	// Red-style tables have no title-fragment rule: first occurrence wins.
	lines := []string{"VA Rider DBIB Rider Asset Daily Net"}

	h, found := FindHeader(lines, models.StyleRed)
	if !found {
		t.Fatal("expected header to be found")
	}
	if h.RiderCol != 1 {
		t.Errorf("RiderCol = %d, want 1", h.RiderCol)
	}
}

func TestFindHeaderLiability(t *testing.T) {
	lines := []string{
		"DBIB Total Dynamic Hedge P&L as of 06/13/2025",
		"Greeks Liability Asset Daily Net",
	}

	h, found := FindHeader(lines, models.StyleRed)
	if !found {
		t.Fatal("expected header to be found")
	}
	if h.LineIndex != 1 {
		t.Errorf("LineIndex = %d, want 1", h.LineIndex)
	}
	if h.RiderCol != 1 || h.AssetCol != 2 {
		t.Errorf("columns = (%d, %d), want (1, 2)", h.RiderCol, h.AssetCol)
	}
}

func TestParsePositional(t *testing.T) {
	text := `DBIB Total Dynamic Hedge P&L as of 06/13/2025
Greeks Liability Asset Daily
Delta (15.7) 16.1 0.4
Rho 31.2 (30.8) 0.4
Basis - 1.1 1.1
`
	pairs, err := New(models.StyleRed).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []models.ValuePair{
		{Rider: -15.7, Asset: 16.1},
		{Rider: 31.2, Asset: -30.8},
		{Rider: 0, Asset: 1.1},
	}
	if len(pairs) != len(expected) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(expected), pairs)
	}
	for i, p := range pairs {
		if p != expected[i] {
			t.Errorf("pair %d = %+v, want %+v", i, p, expected[i])
		}
	}
}

func TestParseSkipsTotalAndBoundaryRows(t *testing.T) {
	text := `Greeks Liability Asset
BOP 100.0 200.0
Delta 1.0 2.0
Total 99.0 98.0
HY Total 3.0 4.0
EoP 101.0 202.0
`
	pairs, err := New(models.StyleRed).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []models.ValuePair{
		{Rider: 1.0, Asset: 2.0},
		{Rider: 3.0, Asset: 4.0},
	}
	if len(pairs) != len(expected) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(expected), pairs)
	}
	for i, p := range pairs {
		if p != expected[i] {
			t.Errorf("pair %d = %+v, want %+v", i, p, expected[i])
		}
	}
}

func TestParseSkipsCorruptedRows(t *testing.T) {
	// A token matching no pattern skips its row rather than zero-filling.
	text := `Greeks Liability Asset
Delta 1.0 2.0
Gamma 3.$4 5.0
Rho 6.0 7.0
`
	pairs, err := New(models.StyleRed).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %+v", len(pairs), pairs)
	}
	if pairs[1] != (models.ValuePair{Rider: 6.0, Asset: 7.0}) {
		t.Errorf("pair 1 = %+v, want {6 7}", pairs[1])
	}
}

func TestParseDropsBlankArtifactRows(t *testing.T) {
	text := `Greeks Liability Asset
- 0 0
Delta 1.0 2.0
`
	pairs, err := New(models.StyleRed).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(pairs) != 1 || pairs[0] != (models.ValuePair{Rider: 1.0, Asset: 2.0}) {
		t.Errorf("pairs = %+v, want just the Delta row", pairs)
	}
}

func TestParseFallbackWithoutHeader(t *testing.T) {
	text := `Equity Delta 16.1 0.4 7.7
Interest Rate Rho 31.2 -30.8 0.4
Total Credit 12.0 3.0
Fund Basis (4.0) 0.6
`
	pairs, err := New(models.StyleBlue).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []models.ValuePair{
		{Rider: 16.1, Asset: 0.4},
		{Rider: 31.2, Asset: -30.8},
		{Rider: -4.0, Asset: 0.6},
	}
	if len(pairs) != len(expected) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs), len(expected), pairs)
	}
	for i, p := range pairs {
		if p != expected[i] {
			t.Errorf("pair %d = %+v, want %+v", i, p, expected[i])
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := New(models.StyleRed).Parse("   \n  \n"); err == nil {
		t.Error("expected error for empty table text")
	}
}

func TestParseIsDeterministic(t *testing.T) {
	text := `Greeks Liability Asset
Delta (15.7) 16.1
Rho 31.2 (30.8)
`
	first, err := New(models.StyleBlue).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := New(models.StyleBlue).Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs disagree: %+v vs %+v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pair %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
