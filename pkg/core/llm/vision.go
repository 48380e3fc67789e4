package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gvision "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hedgepnl/pkg/core/prompt"
	"hedgepnl/pkg/models"
)

// GeminiVision classifies report table images into the blue (DBIB) or red
// (WB) style with a single-word vision call.
type GeminiVision struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

var _ VisionClassifier = (*GeminiVision)(nil)

func (v *GeminiVision) ClassifyTable(ctx context.Context, imagePath string) (models.TableStyle, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return models.StyleUnknown, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return models.StyleUnknown, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	client, err := gvision.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return models.StyleUnknown, fmt.Errorf("failed to create vision client: %w", err)
	}
	defer client.Close()

	modelName := v.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash-exp"
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		gvision.ImageData(imageFormat(imagePath), data),
		gvision.Text(prompt.VisionTypePrompt()),
	)
	if err != nil {
		return models.StyleUnknown, fmt.Errorf("vision classification failed: %w", err)
	}

	return ParseStyleResponse(responseText(resp)), nil
}

// imageFormat maps a file extension to the SDK's image format tag.
func imageFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpg":
		return "jpeg"
	case "":
		return "png"
	}
	return ext
}

func responseText(resp *gvision.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(gvision.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// ParseStyleResponse maps a classifier reply to a table style. Anything
// naming neither style is unknown, which callers treat as an unrecognized
// table rather than guessing.
func ParseStyleResponse(reply string) models.TableStyle {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "blue"):
		return models.StyleBlue
	case strings.Contains(lower, "red"):
		return models.StyleRed
	}
	return models.StyleUnknown
}
