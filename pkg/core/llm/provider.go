// Package llm provides the model providers behind table extraction: chat
// providers that transform rendered table text into structured JSON, and a
// vision classifier that tags report images by table style.
package llm

import (
	"context"

	"hedgepnl/pkg/models"
)

// DefaultSystemPrompt frames every table-transformation request.
const DefaultSystemPrompt = "You are a data analysis expert that helps transform and organize Excel data."

// Provider is the interface for all chat LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// TableTransformer turns a rendered extraction prompt into the model's raw
// response text.
type TableTransformer interface {
	Transform(ctx context.Context, prompt string) (string, error)
}

// VisionClassifier assigns a report table image to a style variant.
type VisionClassifier interface {
	ClassifyTable(ctx context.Context, imagePath string) (models.TableStyle, error)
}

// ProviderTransformer adapts a chat Provider to the TableTransformer
// interface, fixing the system prompt and model choice.
type ProviderTransformer struct {
	Provider     Provider
	Model        string
	SystemPrompt string
}

var _ TableTransformer = (*ProviderTransformer)(nil)

func (t *ProviderTransformer) Transform(ctx context.Context, prompt string) (string, error) {
	system := t.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	options := map[string]interface{}{}
	if t.Model != "" {
		options["model"] = t.Model
	}
	return t.Provider.GenerateResponse(ctx, prompt, system, options)
}

// New returns the chat provider registered under the given name.
func New(name string) (Provider, bool) {
	switch name {
	case "gemini":
		return &GeminiProvider{}, true
	case "deepseek":
		return &DeepSeekProvider{}, true
	case "qwen":
		return &QwenProvider{}, true
	}
	return nil, false
}
