// Package workbook implements the spreadsheet extraction path: configured
// sheets are cleaned and restructured deterministically, handed to the
// model for structured extraction, and the cleaned values double as the
// validation reference.
package workbook

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hedgepnl/pkg/core/filter"
	"hedgepnl/pkg/core/llm"
	"hedgepnl/pkg/core/prompt"
	"hedgepnl/pkg/core/tableparse"
	"hedgepnl/pkg/core/utils"
	"hedgepnl/pkg/models"
)

var (
	productRe = regexp.MustCompile(`([A-Z]+) Total Dynamic Hedge`)
	asOfRe    = regexp.MustCompile(`as of (\d{2}/\d{2}/\d{4})`)
)

// droppedColumns are the derived columns excluded before extraction.
var droppedColumns = map[string]bool{"Daily Net": true, "QTD Net": true, "YTD Net": true}

// Processor runs the extraction flow over one workbook.
type Processor struct {
	Sheets      []string // sheet names to process, e.g. ["WB", "DBIB"]
	Transformer llm.TableTransformer
}

// Process extracts every configured sheet. A sheet that fails is logged and
// skipped; the result is only unsuccessful when no sheet produced rows.
func (p *Processor) Process(ctx context.Context, path string) *models.WorkbookResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return &models.WorkbookResult{Reason: fmt.Sprintf("failed to open workbook: %v", err)}
	}
	defer f.Close()

	result := &models.WorkbookResult{}
	for _, sheet := range p.Sheets {
		rows, reference, err := p.processSheet(ctx, f, sheet)
		if err != nil {
			log.Printf("[Workbook] sheet %s skipped: %v", sheet, err)
			continue
		}
		result.Rows = append(result.Rows, rows...)
		result.Reference = append(result.Reference, reference...)
		result.ProcessedSheets = append(result.ProcessedSheets, sheet)
	}

	if len(result.ProcessedSheets) == 0 {
		result.Reason = "no sheet produced extraction rows"
		return result
	}

	result.OK = true
	result.MissingChecklist = prompt.MissingChecklist(result.Rows)
	return result
}

func (p *Processor) processSheet(ctx context.Context, f *excelize.File, sheet string) ([]models.RiskRow, []models.ValuePair, error) {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	cleaned := CleanSheet(raw)
	if len(cleaned.Rows) == 0 {
		return nil, nil, fmt.Errorf("sheet is empty after cleaning")
	}

	product, date := FindTitle(cleaned)
	table := Restructure(cleaned, product, date)
	if len(table.Rows) == 0 {
		return nil, nil, fmt.Errorf("no data rows after restructuring")
	}

	reference := ReferencePairs(table)

	promptText, err := prompt.BuildWorkbookPrompt(RenderSheet(table))
	if err != nil {
		return nil, nil, err
	}
	response, err := p.Transformer.Transform(ctx, promptText)
	if err != nil {
		return nil, nil, fmt.Errorf("model transform failed: %w", err)
	}

	rows, err := utils.ParseRiskRows(response)
	if err != nil {
		return nil, nil, err
	}
	for i := range rows {
		if rows[i].ValuationDate == "" {
			rows[i].ValuationDate = date
		}
		if rows[i].ProductType == "" {
			rows[i].ProductType = product
		}
	}
	return filter.Apply(rows), reference, nil
}

// =============================================================================
// SHEET CLEANING
// =============================================================================

// CleanSheet drops fully empty rows and columns, plus any row whose first
// populated cell starts with "Total".
func CleanSheet(raw [][]string) models.TableGrid {
	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}

	colUsed := make([]bool, width)
	var kept [][]string
	for _, row := range raw {
		padded := make([]string, width)
		copy(padded, row)

		first := firstPopulated(padded)
		if first == "" {
			continue
		}
		if strings.HasPrefix(first, "Total") {
			continue
		}

		for i, cell := range padded {
			if strings.TrimSpace(cell) != "" {
				colUsed[i] = true
			}
		}
		kept = append(kept, padded)
	}

	var grid models.TableGrid
	for _, row := range kept {
		var out []string
		for i, cell := range row {
			if colUsed[i] {
				out = append(out, strings.TrimSpace(cell))
			}
		}
		grid.Rows = append(grid.Rows, out)
	}
	return grid
}

func firstPopulated(row []string) string {
	for _, cell := range row {
		if s := strings.TrimSpace(cell); s != "" {
			return s
		}
	}
	return ""
}

// FindTitle locates the report title anywhere in the cleaned grid and
// returns the product code and the valuation date in YYYYMMDD form. Missing
// pieces come back empty.
func FindTitle(grid models.TableGrid) (product, date string) {
	for _, row := range grid.Rows {
		for _, cell := range row {
			if !strings.Contains(cell, "Total Dynamic Hedge") || !strings.Contains(cell, "as of") {
				continue
			}
			if m := productRe.FindStringSubmatch(cell); m != nil {
				product = m[1]
			}
			if m := asOfRe.FindStringSubmatch(cell); m != nil {
				if t, err := time.Parse("01/02/2006", m[1]); err == nil {
					date = t.Format("20060102")
				}
			}
			return product, date
		}
	}
	return "", ""
}

// Restructure turns the cleaned grid into the final extraction table: the
// title row goes, the next row becomes the header, derived net columns are
// dropped, and the "VA Rider ..." label column is renamed to
// "Risk Type & Greeks".
func Restructure(grid models.TableGrid, product, date string) models.TableGrid {
	rows := grid.Rows
	// Drop rows up to and including the title row.
	for i, row := range rows {
		joined := strings.Join(row, " ")
		if strings.Contains(joined, "Total Dynamic Hedge") {
			rows = rows[i+1:]
			break
		}
	}
	if len(rows) == 0 {
		return models.TableGrid{}
	}

	header := rows[0]
	keep := make([]int, 0, len(header))
	outHeader := []string{"VALUATION_DATE", "PRODUCT_TYPE"}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if droppedColumns[name] {
			continue
		}
		if strings.HasPrefix(name, "VA Rider") {
			name = "Risk Type & Greeks"
		}
		keep = append(keep, i)
		outHeader = append(outHeader, name)
	}

	out := models.TableGrid{Rows: [][]string{outHeader}}
	for _, row := range rows[1:] {
		cells := []string{date, product}
		for _, i := range keep {
			if i < len(row) {
				cells = append(cells, row[i])
			} else {
				cells = append(cells, "")
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// ReferencePairs reads the (Liability, Asset) values straight off the
// restructured table using the rule-based token parser. Rows with
// unparseable value cells are skipped, as they are during validation of the
// image path.
func ReferencePairs(table models.TableGrid) []models.ValuePair {
	if len(table.Rows) < 2 {
		return nil
	}
	liabilityCol, assetCol := -1, -1
	for i, name := range table.Rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "liability", "rider":
			if liabilityCol < 0 {
				liabilityCol = i
			}
		case "asset":
			if assetCol < 0 {
				assetCol = i
			}
		}
	}
	if liabilityCol < 0 || assetCol < 0 {
		return nil
	}

	var pairs []models.ValuePair
	for _, row := range table.Rows[1:] {
		if liabilityCol >= len(row) || assetCol >= len(row) {
			continue
		}
		// Section-header rows carry a label but no values. They are not
		// data, and the extraction prompt tells the model to drop them.
		if strings.TrimSpace(row[liabilityCol]) == "" && strings.TrimSpace(row[assetCol]) == "" {
			continue
		}
		rider, ok := tableparse.ParseToken(row[liabilityCol])
		if !ok {
			continue
		}
		asset, ok := tableparse.ParseToken(row[assetCol])
		if !ok {
			continue
		}
		pairs = append(pairs, models.ValuePair{Rider: rider, Asset: asset})
	}
	return pairs
}

// RenderSheet flattens the restructured table into the aligned text layout
// the extraction prompt expects.
func RenderSheet(table models.TableGrid) string {
	return tableparse.RenderGrid(table)
}
