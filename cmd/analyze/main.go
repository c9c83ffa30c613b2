// Command analyze runs the extraction pipeline for a single PDF and prints
// the raw model reply, for prompt iteration without a full batch run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/pdf-classifier/constants"
	"github.com/joseph-ayodele/pdf-classifier/internal/chunk"
	"github.com/joseph-ayodele/pdf-classifier/internal/common"
	"github.com/joseph-ayodele/pdf-classifier/internal/extract"
	"github.com/joseph-ayodele/pdf-classifier/internal/llm"
	"github.com/joseph-ayodele/pdf-classifier/internal/tokens"
)

func main() {
	var (
		configPath = flag.String("config", "config.json", "path to config.json")
		promptPath = flag.String("prompt", "prompt.txt", "path to the instruction prompt")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if flag.NArg() < 1 {
		fmt.Println("usage: analyze [flags] <file.pdf>")
		fmt.Printf("The file is looked up under the %q directory.\n", constants.DefaultScanDir)
		os.Exit(2)
	}

	if _, err := os.Stat(constants.DefaultScanDir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(constants.DefaultScanDir, 0o755); mkErr != nil {
			fmt.Printf("Error: cannot create %q: %v\n", constants.DefaultScanDir, mkErr)
			os.Exit(1)
		}
		fmt.Printf("Created %q directory for PDF files.\n", constants.DefaultScanDir)
		fmt.Printf("Please place your PDF files in the %q directory.\n", constants.DefaultScanDir)
		return
	}

	if err := run(*configPath, *promptPath, flag.Arg(0)); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func run(configPath, promptPath, name string) error {
	path := filepath.Join(constants.DefaultScanDir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("PDF file not found: %s (place it in the %q directory)", name, constants.DefaultScanDir)
	}

	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	prompt, err := common.LoadPrompt(promptPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	extractor := extract.NewPDFExtractor(nil)

	fmt.Println("Extracting text from PDF...")
	res, err := extractor.Extract(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully extracted text, length: %d characters\n", len(res.Text))

	// Single-chunk mode: truncate to budget instead of chunking so the
	// reply reflects exactly one call.
	estimator := tokens.ForModel(cfg.Model, nil)
	budget, err := chunk.Budget(cfg.MaxTokens, estimator.Estimate(prompt), cfg.ReservedTokens)
	if err != nil {
		return err
	}
	text := chunk.Truncate(res.Text, budget)

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIBase,
		Model:   cfg.Model,
	}, nil)

	fmt.Println("Processing text ...")
	reply, err := client.Analyze(ctx, chunk.Chunk{Index: 1, Total: 1, Content: text}, prompt)
	if err != nil {
		return err
	}

	fmt.Println("\nResult:")
	fmt.Println(reply)
	return nil
}
