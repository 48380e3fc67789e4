package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hedgepnl/pkg/models"
)

func TestRunLogProcessAndValidation(t *testing.T) {
	log, err := NewRunLog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := log.LogProcessStart("/in/report_20240801.msg"); err != nil {
		t.Fatal(err)
	}
	if err := log.LogProcessStart("/in/report_20240802.msg"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(log.ProcessLogPath())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("process log lines = %v", lines)
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.HasSuffix(lines[0], "report_20240801.msg") {
		t.Errorf("line = %q", lines[0])
	}

	match := true
	res := models.ValidationResult{Match: &match, HashLLM: "aa", HashReference: "aa"}
	if err := log.LogValidation("/in/report_20240801.msg", res); err != nil {
		t.Fatal(err)
	}
	wrong := false
	res2 := models.ValidationResult{Match: &wrong, Err: ""}
	if err := log.LogValidation("/in/report_20240802.msg", res2); err != nil {
		t.Fatal(err)
	}

	data, err = os.ReadFile(log.ValidationLogPath())
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if !strings.Contains(body, "report_20240801.msg | correct") {
		t.Errorf("validation log = %q", body)
	}
	if !strings.Contains(body, "report_20240802.msg | wrong") {
		t.Errorf("validation log = %q", body)
	}
}

func TestWriteTableCSV(t *testing.T) {
	out, err := NewOutput(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	rows := []models.RiskRow{
		{ValuationDate: "20240801", ProductType: "DBIB", RiskType: "Equity", GreekType: "Delta", RiderValue: -15.7, AssetValue: 16.1},
	}
	path, err := out.WriteTable("/in/report_2024_08_01.msg", rows)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "table_report_2024_08_01.csv" {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %v", records)
	}
	if records[0][0] != "VALUATION_DATE" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][4] != "-15.7" || records[1][5] != "16.1" {
		t.Errorf("row = %v", records[1])
	}
}

func TestWriteHighlightsCSV(t *testing.T) {
	out, err := NewOutput(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := out.WriteHighlights("20240801", models.HighlightRecord{Daily: "up day", QTD: "qtd fine"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "highlights_20240801.csv" {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[1][0] != "up day" || records[1][1] != "qtd fine" {
		t.Errorf("records = %v", records)
	}
}

func TestWriteCombinedName(t *testing.T) {
	out, err := NewOutput(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path, err := out.WriteCombined("/in/hedge_20240801.xlsx", nil)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "combined_llm_output_hedge_20240801.csv" {
		t.Errorf("path = %s", path)
	}
}
