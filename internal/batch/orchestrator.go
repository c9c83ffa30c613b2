package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/pdf-classifier/constants"
	"github.com/joseph-ayodele/pdf-classifier/internal/export"
	"github.com/joseph-ayodele/pdf-classifier/internal/record"
)

// Stats aggregates one batch run.
type Stats struct {
	Scanned   uint32
	Matched   uint32
	Processed uint32
	Correct   uint32
	Failed    uint32
}

// Runner walks a scan root and feeds every matching document through the
// pipeline, appending one report row per file. A single file's failure never
// stops the walk: it becomes an ERROR row and the batch moves on.
type Runner struct {
	pipe    *Pipeline
	report  *export.Report
	workers int
	log     *slog.Logger
}

type Option func(*Runner)

// WithWorkers processes independent documents concurrently. Report writes
// stay serialized inside export.Report, so output rows are the same set for
// any worker count.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func NewRunner(pipe *Pipeline, report *export.Report, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{pipe: pipe, report: report, workers: 1, log: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run walks root and processes every allowed document. The expected label
// for a file is the name of its immediate parent directory.
func (r *Runner) Run(ctx context.Context, root string) (Stats, error) {
	// Fail before the first call if the prompt can never fit the window.
	if _, err := r.pipe.Budget(); err != nil {
		return Stats{}, err
	}

	jobs, stats, err := discover(root)
	if err != nil {
		return stats, err
	}

	var mu sync.Mutex // guards stats
	work := make(chan record.Job)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range work {
				ok, correct := r.processOne(ctx, job)
				mu.Lock()
				if ok {
					stats.Processed++
					if correct {
						stats.Correct++
					}
				} else {
					stats.Failed++
				}
				mu.Unlock()
			}
		}(i + 1)
	}

	for _, job := range jobs {
		work <- job
	}
	close(work)
	wg.Wait()

	r.log.Info("batch.done",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"processed", stats.Processed,
		"correct", stats.Correct,
		"failed", stats.Failed,
	)
	return stats, nil
}

// processOne runs the pipeline for a single job and writes its row. Returns
// (row written without error, classification matched the folder label).
func (r *Runner) processOne(ctx context.Context, job record.Job) (ok, correct bool) {
	fileName := filepath.Base(job.Path)
	merged, err := r.pipe.ProcessFile(ctx, job)
	if err != nil {
		r.log.Error("batch.file.error", "path", job.Path, "error", err)
		if wErr := r.report.Append(export.ErrorRow(fileName, job.RootFolder, err)); wErr != nil {
			r.log.Error("batch.report.write_error", "path", job.Path, "error", wErr)
		}
		return false, false
	}
	row := export.Row{FileName: fileName, RootFolder: job.RootFolder, Extraction: merged}
	if err := r.report.Append(row); err != nil {
		r.log.Error("batch.report.write_error", "path", job.Path, "error", err)
		return false, false
	}
	return true, merged.IsDocTypeCorrect
}

// discover walks root and builds one job per allowed file. The expected
// document type is the immediate parent directory name, which also serves as
// the reported root_folder value.
func discover(root string) ([]record.Job, Stats, error) {
	var jobs []record.Job
	var stats Stats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && constants.IsHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if constants.IsHidden(path) {
			return nil
		}
		stats.Scanned++
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		parent := filepath.Base(filepath.Dir(path))
		jobs = append(jobs, record.Job{
			Path:         path,
			ExpectedType: parent,
			RootFolder:   parent,
		})
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return jobs, stats, nil
}
