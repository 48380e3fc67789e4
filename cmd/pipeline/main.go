package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"hedgepnl/pkg/core/config"
	"hedgepnl/pkg/core/document"
	"hedgepnl/pkg/core/files"
	"hedgepnl/pkg/core/llm"
	"hedgepnl/pkg/core/mail"
	"hedgepnl/pkg/core/ocr"
	"hedgepnl/pkg/core/pipeline"
	"hedgepnl/pkg/core/prompt"
	"hedgepnl/pkg/core/store"
	"hedgepnl/pkg/core/workbook"
	"hedgepnl/pkg/models"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	mode := flag.String("mode", "all", "batch mode: all, date or new")
	date := flag.String("date", "", "YYYYMMDD date code for -mode date")
	file := flag.String("file", "", "process a single file instead of a batch")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.PromptsDir != "" {
		prompt.RegisterBuiltins()
		if err := prompt.LoadFromDirectory(cfg.PromptsDir); err != nil {
			log.Fatalf("Prompt override error: %v", err)
		}
	}

	provider, ok := llm.New(cfg.LLM.Provider)
	if !ok {
		log.Fatalf("Unknown LLM provider %q", cfg.LLM.Provider)
	}
	transformer := &llm.ProviderTransformer{Provider: provider, Model: cfg.LLM.Model}

	orch := &pipeline.Orchestrator{
		Workbook: &workbook.Processor{
			Sheets:      cfg.Sheets,
			Transformer: transformer,
		},
		Document: &document.Processor{
			Reader:     &mail.MIMEReader{},
			PreScreen:  &ocr.Tesseract{},
			Classifier: &llm.GeminiVision{Model: cfg.LLM.VisionModel},
			Layout: &ocr.AzureLayout{
				Endpoint: cfg.Azure.Endpoint,
				Key:      cfg.Azure.Key,
				Model:    cfg.Azure.Model,
			},
			Transformers: map[models.TableStyle]llm.TableTransformer{
				models.StyleBlue: transformer,
				models.StyleRed:  transformer,
			},
		},
		Files: &files.Manager{InputDir: cfg.InputDir, Extensions: cfg.Extensions},
	}

	orch.Log, err = store.NewRunLog(cfg.LogDir)
	if err != nil {
		log.Fatalf("Log setup error: %v", err)
	}
	orch.Output, err = store.NewOutput(cfg.OutputDir)
	if err != nil {
		log.Fatalf("Output setup error: %v", err)
	}

	ctx := context.Background()

	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database error: %v", err)
		}
		defer store.Close()
		orch.Sink = store.NewValidationRepo()
	}

	if *file != "" {
		state, err := orch.ProcessFile(ctx, *file)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}
		log.Printf("[Pipeline] %s: %s", *file, state.Validation.Verdict())
		return
	}

	summary, err := orch.RunBatch(ctx, *mode, *date)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	if summary.Errors > 0 {
		os.Exit(1)
	}
}
