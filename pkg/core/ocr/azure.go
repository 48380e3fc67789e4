package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"hedgepnl/pkg/models"
)

const defaultAPIVersion = "2024-02-29-preview"

// AzureLayout calls Azure Document Intelligence's prebuilt layout model and
// converts its table cells into dense grids.
type AzureLayout struct {
	Endpoint     string // e.g. "https://<resource>.cognitiveservices.azure.com"
	Key          string
	Model        string        // defaults to "prebuilt-layout"
	APIVersion   string        // defaults to defaultAPIVersion
	PollInterval time.Duration // defaults to 2s
	HTTPClient   *http.Client
}

var _ LayoutAnalyzer = (*AzureLayout)(nil)

type analyzeResponse struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Tables []analyzeTable `json:"tables"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type analyzeTable struct {
	RowCount    int `json:"rowCount"`
	ColumnCount int `json:"columnCount"`
	Cells       []struct {
		RowIndex    int    `json:"rowIndex"`
		ColumnIndex int    `json:"columnIndex"`
		Content     string `json:"content"`
	} `json:"cells"`
}

func (a *AzureLayout) AnalyzeTables(ctx context.Context, imagePath string) ([]models.TableGrid, error) {
	if a.Endpoint == "" || a.Key == "" {
		return nil, fmt.Errorf("azure layout endpoint or key not configured")
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	opLocation, err := a.submit(ctx, data)
	if err != nil {
		return nil, err
	}

	result, err := a.poll(ctx, opLocation)
	if err != nil {
		return nil, err
	}

	grids := make([]models.TableGrid, 0, len(result.AnalyzeResult.Tables))
	for _, t := range result.AnalyzeResult.Tables {
		grids = append(grids, gridFromTable(t))
	}
	return grids, nil
}

func (a *AzureLayout) submit(ctx context.Context, image []byte) (string, error) {
	model := a.Model
	if model == "" {
		model = "prebuilt-layout"
	}
	version := a.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(a.Endpoint, "/"), model, version)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.Key)

	resp, err := a.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("analyze submit returned status %d: %s", resp.StatusCode, string(body))
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", fmt.Errorf("analyze submit returned no Operation-Location header")
	}
	return opLocation, nil
}

func (a *AzureLayout) poll(ctx context.Context, opLocation string) (*analyzeResponse, error) {
	interval := a.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for {
		req, err := http.NewRequestWithContext(ctx, "GET", opLocation, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.Key)

		resp, err := a.client().Do(req)
		if err != nil {
			return nil, fmt.Errorf("analyze poll failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read poll response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("analyze poll returned status %d: %s", resp.StatusCode, string(body))
		}

		var result analyzeResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode poll response: %w", err)
		}

		switch result.Status {
		case "succeeded":
			return &result, nil
		case "failed":
			if result.Error != nil {
				return nil, fmt.Errorf("analyze operation failed: %s: %s", result.Error.Code, result.Error.Message)
			}
			return nil, fmt.Errorf("analyze operation failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (a *AzureLayout) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

// gridFromTable densifies sparse cell records into a rowCount x columnCount
// grid. Cells the service omitted stay empty strings.
func gridFromTable(t analyzeTable) models.TableGrid {
	rows := make([][]string, t.RowCount)
	for i := range rows {
		rows[i] = make([]string, t.ColumnCount)
	}
	for _, cell := range t.Cells {
		if cell.RowIndex < 0 || cell.RowIndex >= t.RowCount ||
			cell.ColumnIndex < 0 || cell.ColumnIndex >= t.ColumnCount {
			continue
		}
		rows[cell.RowIndex][cell.ColumnIndex] = cell.Content
	}
	return models.TableGrid{Rows: rows}
}
