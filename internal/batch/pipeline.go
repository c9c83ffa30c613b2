package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pdf-classifier/internal/chunk"
	"github.com/joseph-ayodele/pdf-classifier/internal/common"
	"github.com/joseph-ayodele/pdf-classifier/internal/extract"
	"github.com/joseph-ayodele/pdf-classifier/internal/llm"
	"github.com/joseph-ayodele/pdf-classifier/internal/record"
	"github.com/joseph-ayodele/pdf-classifier/internal/tokens"
)

// Analyzer is the LLM call the pipeline depends on; satisfied by llm.Client.
type Analyzer interface {
	Analyze(ctx context.Context, ch chunk.Chunk, systemPrompt string) (string, error)
}

// Pipeline runs one document end to end: text extraction, token budgeting,
// chunking, per-chunk analysis and repair, normalization, and the merge.
type Pipeline struct {
	Extractor extract.TextExtractor
	Client    Analyzer
	Estimator tokens.Estimator
	Prompt    string
	Cfg       *common.Config
	Log       *slog.Logger
}

func NewPipeline(ex extract.TextExtractor, client Analyzer, est tokens.Estimator, prompt string, cfg *common.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Extractor: ex, Client: client, Estimator: est, Prompt: prompt, Cfg: cfg, Log: logger}
}

// Budget computes the per-chunk token budget for document text under the
// current prompt. A non-positive budget means the configuration can never
// make a call and is fatal to the batch.
func (p *Pipeline) Budget() (int, error) {
	return chunk.Budget(p.Cfg.MaxTokens, p.Estimator.Estimate(p.Prompt), p.Cfg.ReservedTokens)
}

// ProcessFile analyzes one document and returns its merged extraction.
// Chunks are processed sequentially and merged in chunk order.
func (p *Pipeline) ProcessFile(ctx context.Context, job record.Job) (record.Extraction, error) {
	start := time.Now()

	budget, err := p.Budget()
	if err != nil {
		return record.Extraction{}, err
	}

	res, err := p.Extractor.Extract(ctx, job.Path)
	if err != nil {
		return record.Extraction{}, err
	}
	if res.Text == "" {
		return record.Extraction{}, common.ExtractionError(fmt.Sprintf("no text in %s", job.Path), nil)
	}

	chunks := chunk.Split(res.Text, budget)
	p.Log.Info("batch.file.start",
		"path", job.Path,
		"expected_type", job.ExpectedType,
		"chars", len(res.Text),
		"chunks", len(chunks),
	)

	extractions := make([]record.Extraction, 0, len(chunks))
	for _, ch := range chunks {
		reply, err := p.Client.Analyze(ctx, ch, p.Prompt)
		if err != nil {
			return record.Extraction{}, err
		}
		rec, strict := llm.Repair(reply, p.Log)
		if !strict {
			p.Log.Warn("batch.chunk.parse_degraded", "path", job.Path, "chunk", ch.Index)
		}
		rec.DocDate = record.NormalizeDate(rec.DocDate)
		rec.InvestmentName = record.NormalizeName(rec.InvestmentName)
		extractions = append(extractions, rec)
	}

	merged := record.Merge(extractions)
	merged.IsDocTypeCorrect = merged.DocumentType == job.ExpectedType

	p.Log.Info("batch.file.ok",
		"path", job.Path,
		"document_type", merged.DocumentType,
		"doc_date", merged.DocDate,
		"match", merged.IsDocTypeCorrect,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return merged, nil
}
