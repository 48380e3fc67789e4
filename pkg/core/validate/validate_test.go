package validate

import (
	"strings"
	"testing"

	"hedgepnl/pkg/models"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v        float64
		expected string
	}{
		{15.7, "15.700000"},
		{-15.7, "-15.700000"},
		{0, "0.000000"},
		{negZero(), "0.000000"},
		{0.1234567, "0.123457"},
		{100, "100.000000"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v); got != tt.expected {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.expected)
		}
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestCanonicalize(t *testing.T) {
	pairs := []models.ValuePair{
		{Rider: -15.7, Asset: 16.1},
		{Rider: 0, Asset: 1.1},
	}
	want := "-15.700000,16.100000|0.000000,1.100000"
	if got := Canonicalize(pairs); got != want {
		t.Errorf("Canonicalize = %q, want %q", got, want)
	}
}

func TestCanonicalizeEmpty(t *testing.T) {
	if got := Canonicalize(nil); got != "" {
		t.Errorf("Canonicalize(nil) = %q, want empty", got)
	}
}

func TestHashSeriesDeterministic(t *testing.T) {
	pairs := []models.ValuePair{{Rider: 1, Asset: 2}, {Rider: 3, Asset: 4}}

	a := HashSeries(pairs)
	b := HashSeries(pairs)
	if a != b {
		t.Errorf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 || a != strings.ToLower(a) {
		t.Errorf("hash %q is not 64 lowercase hex chars", a)
	}
}

func TestHashSeriesOrderSensitive(t *testing.T) {
	a := HashSeries([]models.ValuePair{{Rider: 1, Asset: 2}, {Rider: 3, Asset: 4}})
	b := HashSeries([]models.ValuePair{{Rider: 3, Asset: 4}, {Rider: 1, Asset: 2}})
	if a == b {
		t.Error("reordered series must hash differently")
	}
}

func TestHashSeriesNegativeZeroEqualsZero(t *testing.T) {
	a := HashSeries([]models.ValuePair{{Rider: negZero(), Asset: 1}})
	b := HashSeries([]models.ValuePair{{Rider: 0, Asset: 1}})
	if a != b {
		t.Error("negative zero must hash identically to zero")
	}
}

func TestCompareMatch(t *testing.T) {
	ref := []models.ValuePair{{Rider: -15.7, Asset: 16.1}, {Rider: 31.2, Asset: -30.8}}
	ext := []models.ValuePair{{Rider: -15.7, Asset: 16.1}, {Rider: 31.2, Asset: -30.8}}

	res := Compare(ref, ext)
	if res.Match == nil || !*res.Match {
		t.Fatalf("expected match, got %+v", res)
	}
	if res.Verdict() != "correct" {
		t.Errorf("Verdict = %q, want correct", res.Verdict())
	}
	if res.HashLLM != res.HashReference {
		t.Error("matching series must share a hash")
	}
}

func TestCompareMismatch(t *testing.T) {
	ref := []models.ValuePair{{Rider: 1, Asset: 2}}
	ext := []models.ValuePair{{Rider: 1, Asset: 2.000001}}

	res := Compare(ref, ext)
	if res.Match == nil || *res.Match {
		t.Fatalf("expected mismatch, got %+v", res)
	}
	if res.Verdict() != "wrong" {
		t.Errorf("Verdict = %q, want wrong", res.Verdict())
	}
}

func TestCompareRowCountMismatch(t *testing.T) {
	ref := []models.ValuePair{{Rider: 1, Asset: 2}, {Rider: 3, Asset: 4}}
	ext := []models.ValuePair{{Rider: 1, Asset: 2}}

	res := Compare(ref, ext)
	if res.Match == nil || *res.Match {
		t.Fatalf("expected mismatch on differing row counts, got %+v", res)
	}
}

func TestCompareMissingReference(t *testing.T) {
	res := Compare(nil, []models.ValuePair{{Rider: 1, Asset: 2}})
	if res.Match != nil {
		t.Fatalf("expected no verdict without a reference, got %+v", res)
	}
	if res.Verdict() != "skipped" {
		t.Errorf("Verdict = %q, want skipped", res.Verdict())
	}
	if res.HashLLM == "" {
		t.Error("extracted hash should still be recorded")
	}
}

func TestPairsFromRows(t *testing.T) {
	rows := []models.RiskRow{
		{RiskType: "Equity", RiderValue: 1.5, AssetValue: -2.5},
		{RiskType: "Rates", RiderValue: 0, AssetValue: 3},
	}
	pairs := PairsFromRows(rows)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0] != (models.ValuePair{Rider: 1.5, Asset: -2.5}) {
		t.Errorf("pair 0 = %+v", pairs[0])
	}
	if pairs[1] != (models.ValuePair{Rider: 0, Asset: 3}) {
		t.Errorf("pair 1 = %+v", pairs[1])
	}
}
