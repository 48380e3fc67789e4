package router

import (
	"testing"

	"hedgepnl/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected models.FileType
	}{
		{"reports/SampleInput20240802.xlsx", models.FileTypeSpreadsheet},
		{"reports/legacy_book.XLS", models.FileTypeSpreadsheet},
		{"FW_ Daily Hedging P&L Summary for DBIB 2025_06_13.msg", models.FileTypeDocument},
		{"daily_summary_2024-08-02.eml", models.FileTypeDocument},
		{"notes.txt", models.FileTypeUnknown},
		{"report.pdf", models.FileTypeUnknown},
		{"no_extension", models.FileTypeUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.expected {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}
