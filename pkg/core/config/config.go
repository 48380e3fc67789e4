// Package config loads the pipeline configuration. The Config struct is
// constructed once at process start and passed into each component
// constructor; no package reads ambient global state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// AzureConfig holds the Document Intelligence connection settings.
type AzureConfig struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// LLMConfig selects the language-model backends.
type LLMConfig struct {
	Provider    string `yaml:"provider"`     // "gemini", "deepseek" or "qwen"
	Model       string `yaml:"model"`        // text model name
	VisionModel string `yaml:"vision_model"` // image classification model name
}

// Config is the full pipeline configuration.
type Config struct {
	InputDir   string   `yaml:"input_dir"`
	OutputDir  string   `yaml:"output_dir"`
	LogDir     string   `yaml:"log_dir"`
	Sheets     []string `yaml:"default_sheets"`
	Extensions []string `yaml:"file_extensions"`

	// PromptsDir optionally overrides the built-in prompts by ID.
	PromptsDir string `yaml:"prompts_dir"`

	Azure AzureConfig `yaml:"azure"`
	LLM   LLMConfig   `yaml:"llm"`

	// DatabaseURL enables the optional Postgres audit repository.
	// Taken from the environment, never from the config file.
	DatabaseURL string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:   "input",
		OutputDir:  "output",
		LogDir:     "log",
		Sheets:     []string{"WB", "DBIB"},
		Extensions: []string{".xlsx", ".xls", ".msg", ".eml"},
		Azure: AzureConfig{
			Model: "prebuilt-layout",
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash-exp",
			VisionModel: "gemini-2.0-flash-exp",
		},
	}
}

// Load reads the YAML config file at path, overlaying the defaults.
// A missing file is not an error: the defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays secrets from the environment. Secrets never live in the
// config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("AZURE_DOCINT_ENDPOINT"); v != "" {
		c.Azure.Endpoint = v
	}
	if v := os.Getenv("AZURE_DOCINT_KEY"); v != "" {
		c.Azure.Key = v
	}
	if v := os.Getenv("AZURE_DOCINT_MODEL"); v != "" {
		c.Azure.Model = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
}
