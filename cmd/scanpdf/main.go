package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/pdf-classifier/constants"
	"github.com/joseph-ayodele/pdf-classifier/internal/batch"
	"github.com/joseph-ayodele/pdf-classifier/internal/common"
	"github.com/joseph-ayodele/pdf-classifier/internal/export"
	"github.com/joseph-ayodele/pdf-classifier/internal/extract"
	"github.com/joseph-ayodele/pdf-classifier/internal/llm"
	"github.com/joseph-ayodele/pdf-classifier/internal/tokens"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", constants.DefaultScanDir, "root directory of labeled PDF subdirectories")
		out        = flag.String("out", constants.DefaultReportFile, "output CSV report path")
		xlsxOut    = flag.String("xlsx", "", "also mirror the report to this XLSX file (optional)")
		workers    = flag.Int("workers", 1, "number of concurrent documents")
		configPath = flag.String("config", "config.json", "path to config.json")
		promptPath = flag.String("prompt", "prompt.txt", "path to the instruction prompt")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// First run convenience: create the scan directory and tell the user
	// where to put files instead of failing.
	if _, err := os.Stat(*dir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(*dir, 0o755); mkErr != nil {
			printError("Error: cannot create %q: %v\n", *dir, mkErr)
			os.Exit(1)
		}
		fmt.Printf("Created %q directory. Place your PDF files in per-type subdirectories (e.g. %s/NDA/doc.pdf) and rerun.\n", *dir, *dir)
		return
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	prompt, err := common.LoadPrompt(*promptPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	report, err := export.NewReport(*out, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIBase,
		Model:   cfg.Model,
	}, logger)
	estimator := tokens.ForModel(cfg.Model, logger)
	extractor := extract.NewPDFExtractor(logger)

	pipe := batch.NewPipeline(extractor, client, estimator, prompt, cfg, logger)
	runner := batch.NewRunner(pipe, report, logger, batch.WithWorkers(*workers))

	stats, runErr := runner.Run(context.Background(), *dir)

	if err := report.Close(); err != nil {
		logger.Error("report close failed", "error", err)
	}
	if runErr != nil {
		printError("Error: %v\n", runErr)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		if err := export.WriteXLSX(*xlsxOut, report.Rows(), logger); err != nil {
			logger.Error("xlsx export failed", "error", err)
		}
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Files matched: %d\n", stats.Matched)
	fmt.Printf("- Processed: %d\n", stats.Processed)
	fmt.Printf("- Correctly classified: %d\n", stats.Correct)
	fmt.Printf("- Failures: %d\n", stats.Failed)
	fmt.Printf("- Report: %s\n", *out)
}
