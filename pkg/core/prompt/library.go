package prompt

import (
	"fmt"
	"strings"
	"sync"

	"hedgepnl/pkg/models"
)

// =============================================================================
// PROMPT IDS
// =============================================================================

// PromptIDs contains all known prompt identifiers.
var PromptIDs = struct {
	TableBlue  string
	TableRed   string
	Workbook   string
	VisionType string
}{
	TableBlue:  "extraction.table_blue",
	TableRed:   "extraction.table_red",
	Workbook:   "extraction.workbook",
	VisionType: "vision.table_type",
}

// =============================================================================
// OUTPUT CHECKLIST
// =============================================================================

// ChecklistPairs are the (RISK_TYPE, GREEK_TYPE) pairs a complete DBIB report
// is expected to carry. The extraction prompt instructs the model to emit
// each one; post-extraction the pipeline reports any that are still missing.
var ChecklistPairs = []models.CategoryPair{
	{RiskType: "Interest_Rate", GreekType: "Basis"},
	{RiskType: "Interest_Rate", GreekType: "Rho"},
	{RiskType: "Interest_Rate", GreekType: "Convexity_Residual"},
	{RiskType: "Equity", GreekType: "Delta"},
	{RiskType: "Equity", GreekType: "Gamma_Residual"},
	{RiskType: "Credit", GreekType: "HY_Total"},
	{RiskType: "Credit", GreekType: "AGG_Credit"},
	{RiskType: "Credit", GreekType: "Agg_Risk_Free_Growth"},
	{RiskType: "Credit", GreekType: "ILP_Update"},
	{RiskType: "Fund_Basis_Fund_Mapping", GreekType: ""},
	{RiskType: "Passage_Of_Time", GreekType: ""},
	{RiskType: "Other_Inforce", GreekType: ""},
	{RiskType: "New_Business", GreekType: ""},
	{RiskType: "Cross_Impact_True_up", GreekType: ""},
}

// MissingChecklist returns the checklist pairs absent from the extracted
// rows. Comparison is case-insensitive on the normalized labels. Missing
// pairs are reported, never synthesized: inserting rows the table does not
// show would desynchronize the extraction from the rule-based reference.
func MissingChecklist(rows []models.RiskRow) []models.CategoryPair {
	present := make(map[string]bool, len(rows))
	for _, row := range rows {
		present[pairKey(row.RiskType, row.GreekType)] = true
	}

	var missing []models.CategoryPair
	for _, p := range ChecklistPairs {
		if !present[pairKey(p.RiskType, p.GreekType)] {
			missing = append(missing, p)
		}
	}
	return missing
}

func pairKey(risk, greek string) string {
	return strings.ToLower(models.NormalizeLabel(risk)) + "\x00" +
		strings.ToLower(models.NormalizeLabel(greek))
}

// =============================================================================
// BUILT-IN TEMPLATES
// =============================================================================

var registerBuiltinsOnce sync.Once

// RegisterBuiltins loads the embedded prompt templates into the global
// registry. Safe to call more than once. A prompts/ directory loaded via
// LoadFromDirectory afterwards overrides any of them by ID.
func RegisterBuiltins() {
	registerBuiltinsOnce.Do(func() {
		r := Get()
		for _, pt := range builtinTemplates {
			// Register only fails on an empty ID, which builtins never have.
			_ = r.Register(pt)
		}
	})
}

// BuildTablePrompt renders the extraction prompt for an OCR-recovered table
// of the given style. dateHint is the YYYYMMDD date recovered from the
// source filename, or empty when none was found.
func BuildTablePrompt(style models.TableStyle, tableText, dateHint string) (string, error) {
	RegisterBuiltins()

	var id string
	switch style {
	case models.StyleBlue:
		id = PromptIDs.TableBlue
	case models.StyleRed:
		id = PromptIDs.TableRed
	default:
		return "", fmt.Errorf("no extraction prompt for table style %q", style)
	}

	pt, err := Get().GetPrompt(id)
	if err != nil {
		return "", err
	}
	ctx := NewContext().
		Set("TableText", tableText).
		Set("DateHint", dateHint)
	return RenderUserPrompt(pt, ctx)
}

// BuildWorkbookPrompt renders the extraction prompt for a cleaned
// spreadsheet table.
func BuildWorkbookPrompt(sheetText string) (string, error) {
	RegisterBuiltins()

	pt, err := Get().GetPrompt(PromptIDs.Workbook)
	if err != nil {
		return "", err
	}
	return RenderUserPrompt(pt, NewContext().Set("TableText", sheetText))
}

// VisionTypePrompt returns the image-classification instruction for the
// table style pre-check.
func VisionTypePrompt() string {
	RegisterBuiltins()

	p, err := Get().GetSystemPrompt(PromptIDs.VisionType)
	if err != nil {
		// Builtins are always registered above; keep a literal fallback
		// in case an external prompts directory cleared the registry.
		return "Classify this picture: is it a blue table or a red table. Return blue or red. Don't return anything else."
	}
	return p
}

var builtinTemplates = []*PromptTemplate{
	{
		ID:           PromptIDs.VisionType,
		Name:         "Table style classifier",
		Category:     "vision",
		Description:  "Single-word blue/red classification of a report table image",
		SystemPrompt: "Classify this picture: is it a blue table or a red table. Return blue or red. Don't return anything else.",
		Version:      "1.0",
	},
	{
		ID:          PromptIDs.TableBlue,
		Name:        "DBIB table extraction",
		Category:    "extraction",
		Description: "Structured extraction of the blue DBIB Total Dynamic Hedge P&L table",
		Variables: []PromptVariable{
			{Name: "TableText", Type: "string", Description: "OCR-recovered table text", Required: true},
			{Name: "DateHint", Type: "string", Description: "YYYYMMDD date from the source filename"},
		},
		UserPromptTmpl: blueTableTmpl,
		Version:        "1.0",
	},
	{
		ID:          PromptIDs.TableRed,
		Name:        "WB table extraction",
		Category:    "extraction",
		Description: "Structured extraction of the red WB Total Dynamic Hedge P&L table",
		Variables: []PromptVariable{
			{Name: "TableText", Type: "string", Description: "OCR-recovered table text", Required: true},
		},
		UserPromptTmpl: redTableTmpl,
		Version:        "1.0",
	},
	{
		ID:          PromptIDs.Workbook,
		Name:        "Workbook sheet extraction",
		Category:    "extraction",
		Description: "Structured extraction of a cleaned Total Dynamic Hedge P&L worksheet",
		Variables: []PromptVariable{
			{Name: "TableText", Type: "string", Description: "Rendered worksheet text", Required: true},
		},
		UserPromptTmpl: workbookTmpl,
		Version:        "1.0",
	},
}

const blueTableTmpl = `Given the following table data:
{{.TableText}}
{{if .DateHint}}
CONTEXT: The source filename indicates the valuation date {{.DateHint}} (YYYYMMDD). Prefer the date shown in the table title; use this one only if the title carries no date.
{{end}}
TASK: Transform this DBIB Total Dynamic Hedge P&L data into a structured format.

OUTPUT FORMAT:
Return a JSON array of objects with these columns:
- VALUATION_DATE (YYYYMMDD format)
- PRODUCT_TYPE (e.g., "DBIB")
- RISK_TYPE (categorized risk)
- GREEK_TYPE (specific risk measure)
- RIDER_VALUE (from Liability column)
- ASSET_VALUE (from Asset column)

DATA EXTRACTION RULES:

1. Title Row Processing:
   - Extract PRODUCT_TYPE from first word (e.g., "DBIB")
   - Extract VALUATION_DATE from "as of MM/DD/YYYY" and convert to YYYYMMDD

2. Section Processing:
   Main sections to identify:
   - Total Equity
   - Total Interest Rate
   - Total Credit
   - Standalone sections (e.g., Fund Basis & Fund Mapping, Passage of Time)

3. Risk Type Classification:
   For rows under sections:
   - RISK_TYPE = section name (e.g., "Equity", "Interest_Rate", "Credit")
   - GREEK_TYPE = specific measure (e.g., "Delta", "Rho", "Gamma_Residual")

   For standalone rows:
   - RISK_TYPE = full row name (e.g., "FundBasis_Mapping", "Passage_Of_Time")
   - GREEK_TYPE = null or empty

4. Text Normalization Rules:
   - Replace spaces with underscores
   - Replace & with underscore
   - Remove duplicate underscores
   - Maintain proper capitalization
   - Example: "Interest Rate & Basis" -> "Interest_Rate_Basis"

5. Value Extraction:
   - RIDER_VALUE = value from Liability column
   - ASSET_VALUE = value from Asset column
   - Skip Daily Net, QTD Net, YTD Net columns
   - Skip summary/total rows
   - Include all rows with a label, even if the values are zero or missing, except for rows labeled "Total" or section headers.

IMPORTANT EXTRACTION INSTRUCTIONS:
- Do not guess or infer values. Only output the exact numbers shown in the table.
- If a cell is '-', output 0. If a cell is blank, output 0. Otherwise, use the exact number shown.
- Do not shift values between columns or rows!!!!!
- Rider value is always the value in the Liability column, and Asset value is always the value in the Asset column.

- DO NOT include any rows where the label is a section header or a total/subtotal row (e.g., "Total", "Total Equity", "Total Interest Rate", "Total Credit", "Sub Total", "Total P&L", etc.), or where RISK_TYPE is just the section name with no GREEK_TYPE.
  Only include rows with a specific risk/greek type (e.g., "Delta", "Gamma", "Rho", etc.), or standalone rows that are not totals.

OUTPUT CHECKLIST:
For each of the following RISK_TYPE and GREEK_TYPE pairs, you SHOULD output a row when it is shown in the table, even if RIDER_VALUE and ASSET_VALUE is 0.

- ("Interest_Rate", "Basis")
- ("Interest_Rate", "Rho")
- ("Interest_Rate", "Convexity_Residual")
- ("Equity", "Delta")
- ("Equity", "Gamma_Residual")
- ("Credit", "HY_Total")
- ("Credit", "AGG_Credit")
- ("Credit", "Agg_Risk_Free_Growth")
- ("Credit", "ILP_Update")
- ("Fund_Basis_Fund_Mapping", "")
- ("Passage_Of_Time", "")
- ("Other_Inforce", "")
- ("New_Business", "")
- ("Cross_Impact_True_up", "")

FLEXIBLE OUTPUT:
If the data contains additional RISK_TYPE and GREEK_TYPE pairs not listed above, you MUST also include them in the output, using the same format.

DO NOT merge RISK_TYPE and GREEK_TYPE into a single field.
If a new pair is found in the data, include it as-is.

IMPORTANT:
- Always output the pairs if they are shown up in the table which may be covered in the checklist above, even if the values are zero or missing.
- Also output any additional RISK_TYPE/GREEK_TYPE pairs found in the data.
- Do not merge RISK_TYPE and GREEK_TYPE into a single field.
- Return ONLY the JSON array, no explanations or additional text.
- Do not output any pairs that are not shown up in the table.
- Do not round up the values, use the exact values shown up in the table.

EXAMPLE OUTPUT FORMAT:
[
    {
        "VALUATION_DATE": "20240801",
        "PRODUCT_TYPE": "DBIB",
        "RISK_TYPE": "Equity",
        "GREEK_TYPE": "Delta",
        "RIDER_VALUE": 123.45,
        "ASSET_VALUE": 67.89
    },
    {
        "VALUATION_DATE": "20240801",
        "PRODUCT_TYPE": "DBIB",
        "RISK_TYPE": "Interest_Rate",
        "GREEK_TYPE": "Rho",
        "RIDER_VALUE": 234.56,
        "ASSET_VALUE": 78.90
    }
]
`

const redTableTmpl = `Given the following table image data:
{{.TableText}}

TASK: Extract and transform the WB Total Dynamic Hedge P&L table into a structured JSON array.

OUTPUT FORMAT:
Return a JSON array of objects with these columns:
- VALUATION_DATE (YYYYMMDD format, from the date in the table title)
- PRODUCT_TYPE (e.g., "WB", from the first word in the title)
- RISK_TYPE (e.g., "Equity", "Rates", "Credit", "Underlying_Fund", "Theta_Carry", "Other_Unhedged", "Fees", "ILP", "New_Business", "Claims", "Model_Change")
- GREEK_TYPE (e.g., "Delta", "Gamma", "Volatility", "Dynamic_Rho", "Credit", "ILP"; blank if not applicable)
- RIDER_VALUE (value from the Liability column)
- ASSET_VALUE (value from the Asset column)

DATA EXTRACTION RULES:

1. Title Row Processing:
   - Extract PRODUCT_TYPE from the first word in the title (e.g., "WB").
   - Extract VALUATION_DATE from the date in the title (e.g., "as of 05/01/2024" -> "20240501").

2. Row Processing:
   - For each row with a label (not a section header or total row), extract the label, Liability, and Asset values.
   - RISK_TYPE is the main category (e.g., "Equity", "Rates", "Credit", "Underlying_Fund", "Theta_Carry", "Other_Unhedged", "Fees", "ILP", "New_Business", "Claims", "Model_Change").
   - GREEK_TYPE is the specific risk measure (e.g., "Delta", "Gamma", "Volatility", "Dynamic_Rho", "Credit", "ILP"). If not applicable, leave blank.
   - For rows like "Equity: Delta P&L", RISK_TYPE = "Equity", GREEK_TYPE = "Delta".
   - For rows like "Rate: Dynamic Rho P&L", RISK_TYPE = "Rates", GREEK_TYPE = "Dynamic_Rho".
   - For rows like "Credit: Credit P&L", RISK_TYPE = "Credit", GREEK_TYPE = "Credit".
   - For rows like "Underlying Fund P&L", RISK_TYPE = "Underlying_Fund", GREEK_TYPE = "".
   - For rows like "Theta / Carry P&L", RISK_TYPE = "Theta_Carry", GREEK_TYPE = "".
   - For rows like "Other Unhedged P&L", RISK_TYPE = "Other_Unhedged", GREEK_TYPE = "".
   - For rows like "Fees", "Claims", "ILP", "New Business", "Model Change", use the row label as RISK_TYPE and leave GREEK_TYPE blank.

3. Text Normalization:
   - Replace spaces and slashes with underscores in RISK_TYPE and GREEK_TYPE.
   - Remove special characters (except underscores).
   - Maintain capitalization as in the table.
   - Example: "Theta / Carry P&L" -> RISK_TYPE: "Theta_Carry"
   - Example: "Dynamic Rho" -> GREEK_TYPE: "Dynamic_Rho"

4. Value Extraction:
   - RIDER_VALUE = value from the Liability column (column 0).
   - ASSET_VALUE = value from the Asset column (column 1).
   - If a cell is '-', 'None', or blank, output 0. Otherwise, use the exact number shown.
   - Only extract rows with a label (skip section headers like "BOP Market Value", "EoP Market Value", and total rows like "Sub Total P&L (IFRS)", "Total P&L").

IMPORTANT:
- Do not guess or infer values. Only output the exact numbers shown in the table.
- Do not shift values between columns or rows.
- Return ONLY the JSON array, no explanations or additional text.
- Do not merge RISK_TYPE and GREEK_TYPE into a single field.
- Output all rows with a label, even if the values are zero or missing.
- Handle negative values correctly.
- Extract the actual date from the table title, not use a hardcoded date.

EXAMPLE OUTPUT FORMAT:
[
    {
        "VALUATION_DATE": "20240501",
        "PRODUCT_TYPE": "WB",
        "RISK_TYPE": "Equity",
        "GREEK_TYPE": "Delta",
        "RIDER_VALUE": -14,
        "ASSET_VALUE": 14
    },
    {
        "VALUATION_DATE": "20240501",
        "PRODUCT_TYPE": "WB",
        "RISK_TYPE": "Equity",
        "GREEK_TYPE": "Gamma",
        "RIDER_VALUE": 0,
        "ASSET_VALUE": 0
    }
]

Return ONLY the JSON array, no other text or explanations.
`

const workbookTmpl = `Given the following Excel data:
{{.TableText}}

TASK: Transform this Total Dynamic Hedge P&L Excel data into a structured format.

OUTPUT FORMAT:
Return a JSON array of objects with these columns:
- VALUATION_DATE (YYYYMMDD format)
- PRODUCT_TYPE (e.g., "DBIB" or "WB", from the first word of the title)
- RISK_TYPE (categorized risk)
- GREEK_TYPE (specific risk measure)
- RIDER_VALUE (from Liability column)
- ASSET_VALUE (from Asset column)

DATA EXTRACTION RULES:

1. Title Row Processing:
   - Extract PRODUCT_TYPE from first word (e.g., "DBIB")
   - Extract VALUATION_DATE from "as of MM/DD/YYYY" and convert to YYYYMMDD

2. Section Processing:
   Main sections to identify:
   - Total Equity
   - Total Interest Rate
   - Total Credit
   - Standalone sections (e.g., Fund Basis & Fund Mapping, Passage of Time)

3. Risk Type Classification:
   For rows under sections:
   - RISK_TYPE = section name (e.g., "Equity", "Interest_Rate", "Credit")
   - GREEK_TYPE = specific measure (e.g., "Delta", "Rho", "Gamma_Residual")

   For standalone rows:
   - RISK_TYPE = full row name (e.g., "FundBasis_Mapping", "Passage_Of_Time")
   - GREEK_TYPE = null or empty

4. Text Normalization Rules:
   - Replace spaces with underscores
   - Replace & with underscore
   - Remove duplicate underscores
   - Maintain proper capitalization
   - Example: "Interest Rate & Basis" -> "Interest_Rate_Basis"

5. Value Extraction:
   - RIDER_VALUE = value from Liability column
   - ASSET_VALUE = value from Asset column
   - Skip Daily Net, QTD Net, YTD Net columns
   - Skip summary/total rows
   - Include all rows with a label, even if the values are zero or missing, except for rows labeled "Total" or section headers.

IMPORTANT EXTRACTION INSTRUCTIONS:
- Do not guess or infer values. Only output the exact numbers shown in the table.
- If a cell is '-', output 0. If a cell is blank, output 0. Otherwise, use the exact number shown.
- Do not shift values between columns or rows!!!!!
- Rider value is always the value in the Liability column, and Asset value is always the value in the Asset column.
- DO NOT include any rows where the label is a section header or a total/subtotal row, or where RISK_TYPE is just the section name with no GREEK_TYPE. Standalone rows that are not totals are kept.
- Return ONLY the JSON array, no explanations or additional text.
- Do not round up the values, use the exact values shown up in the table.

EXAMPLE OUTPUT FORMAT:
[
    {
        "VALUATION_DATE": "20240801",
        "PRODUCT_TYPE": "DBIB",
        "RISK_TYPE": "Equity",
        "GREEK_TYPE": "Delta",
        "RIDER_VALUE": 123.45,
        "ASSET_VALUE": 67.89
    }
]
`
