package workbook

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"hedgepnl/pkg/models"
)

type fakeTransformer struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeTransformer) Transform(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "DBIB"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		t.Fatal(err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	rows := [][]interface{}{
		{"DBIB Total Dynamic Hedge P&L as of 06/13/2025"},
		{}, // blank spacer row, dropped by cleaning
		{"VA Rider DBIB", "Liability", "Asset", "Daily Net"},
		{"Equity Delta", "(15.7)", "16.1", "0.4"},
		{"Interest Rate Rho", "31.2", "(30.8)", "0.4"},
		{"Total Equity", "99.0", "98.0", "1.0"},
		{"Passage of Time", "-", "1.1", "1.1"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessWorkbook(t *testing.T) {
	tr := &fakeTransformer{reply: `[
		{"VALUATION_DATE": "20250613", "PRODUCT_TYPE": "DBIB", "RISK_TYPE": "Equity", "GREEK_TYPE": "Delta", "RIDER_VALUE": -15.7, "ASSET_VALUE": 16.1},
		{"VALUATION_DATE": "20250613", "PRODUCT_TYPE": "DBIB", "RISK_TYPE": "Interest_Rate", "GREEK_TYPE": "Rho", "RIDER_VALUE": 31.2, "ASSET_VALUE": -30.8},
		{"VALUATION_DATE": "20250613", "PRODUCT_TYPE": "DBIB", "RISK_TYPE": "Passage_Of_Time", "GREEK_TYPE": "", "RIDER_VALUE": 0, "ASSET_VALUE": 1.1}
	]`}
	p := &Processor{Sheets: []string{"DBIB"}, Transformer: tr}

	res := p.Process(context.Background(), writeWorkbook(t))
	if !res.OK {
		t.Fatalf("Process failed: %s", res.Reason)
	}
	if len(res.ProcessedSheets) != 1 || res.ProcessedSheets[0] != "DBIB" {
		t.Errorf("ProcessedSheets = %v", res.ProcessedSheets)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows, want 3: %+v", len(res.Rows), res.Rows)
	}

	// The Total row is dropped during cleaning, so the reference holds the
	// three data rows in sheet order.
	want := []models.ValuePair{
		{Rider: -15.7, Asset: 16.1},
		{Rider: 31.2, Asset: -30.8},
		{Rider: 0, Asset: 1.1},
	}
	if len(res.Reference) != len(want) {
		t.Fatalf("reference = %+v, want %d pairs", res.Reference, len(want))
	}
	for i, pair := range res.Reference {
		if pair != want[i] {
			t.Errorf("reference[%d] = %+v, want %+v", i, pair, want[i])
		}
	}

	// Checklist verification reports absences without fabricating rows.
	if len(res.MissingChecklist) == 0 {
		t.Error("expected missing checklist pairs for a three-row extraction")
	}

	if !strings.Contains(tr.prompt, "Risk Type & Greeks") {
		t.Error("prompt should carry the renamed label column")
	}
	if strings.Contains(tr.prompt, "Daily Net") {
		t.Error("derived net columns must be dropped before prompting")
	}
	if strings.Contains(tr.prompt, "Total Equity") {
		t.Error("total rows must be dropped before prompting")
	}
}

func TestProcessWorkbookMissingSheet(t *testing.T) {
	tr := &fakeTransformer{reply: "[]"}
	p := &Processor{Sheets: []string{"WB"}, Transformer: tr}

	res := p.Process(context.Background(), writeWorkbook(t))
	if res.OK {
		t.Error("expected failure when no configured sheet exists")
	}
	if res.Reason == "" {
		t.Error("failure must carry a reason")
	}
}

func TestProcessWorkbookUnreadableFile(t *testing.T) {
	p := &Processor{Sheets: []string{"DBIB"}, Transformer: &fakeTransformer{}}
	res := p.Process(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	if res.OK {
		t.Error("expected failure for missing file")
	}
}

func TestCleanSheet(t *testing.T) {
	grid := CleanSheet([][]string{
		{"", "", ""},
		{"Title", "", "x"},
		{"Total Equity", "9", "9"},
		{"Delta", "1", "2"},
	})
	if len(grid.Rows) != 2 {
		t.Fatalf("rows = %v", grid.Rows)
	}
	if grid.Rows[1][0] != "Delta" {
		t.Errorf("rows = %v", grid.Rows)
	}
}

func TestFindTitle(t *testing.T) {
	grid := models.TableGrid{Rows: [][]string{
		{"", "WB Total Dynamic Hedge P&L as of 05/01/2024"},
	}}
	product, date := FindTitle(grid)
	if product != "WB" {
		t.Errorf("product = %q", product)
	}
	if date != "20240501" {
		t.Errorf("date = %q", date)
	}
}

func TestFindTitleAbsent(t *testing.T) {
	product, date := FindTitle(models.TableGrid{Rows: [][]string{{"Greeks", "Liability"}}})
	if product != "" || date != "" {
		t.Errorf("got (%q, %q), want empty", product, date)
	}
}

func TestReferencePairsSkipsLabelOnlyRows(t *testing.T) {
	table := models.TableGrid{Rows: [][]string{
		{"VALUATION_DATE", "PRODUCT_TYPE", "Risk Type & Greeks", "Liability", "Asset"},
		{"20250613", "DBIB", "Interest Rate", "", ""}, // section header, no values
		{"20250613", "DBIB", "Rho", "31.2", "(30.8)"},
		{"20250613", "DBIB", "Passage of Time", "-", "1.1"},
	}}

	pairs := ReferencePairs(table)
	expected := []models.ValuePair{
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
