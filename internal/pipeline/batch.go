package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
	"git.home.luguber.info/inful/vaultmark/internal/metrics"
)

// Job is one root note to convert.
type Job struct {
	Path   string
	Source []byte
}

// Batch is the outcome of TransformAll. Results are in job order.
type Batch struct {
	RunID   string
	Results []Result
}

// Result is the outcome of one Job.
type Result struct {
	Path     string
	HTML     []byte
	Document *markdown.Document
	Duration time.Duration
	Err      error
}

// TransformAll converts jobs on a bounded pool of workers. A failing job does
// not stop the others; cancellation marks the jobs that never ran.
func (t *Transformer) TransformAll(ctx context.Context, jobs []Job) Batch {
	runID := uuid.NewString()
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return Batch{RunID: runID, Results: results}
	}

	logger := t.logger.With(logfields.RunID(runID))
	workers := min(t.workers, len(jobs))
	start := time.Now()
	logger.Info("Transform run started", logfields.Count(len(jobs)), logfields.Workers(workers))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				t.recorder.IncDocumentResult(metrics.ResultCanceled)
				results[i] = Result{Path: job.Path, Err: err}
				return
			}
			jobStart := time.Now()
			html, doc, err := t.Convert(ctx, job.Path, job.Source)
			results[i] = Result{Path: job.Path, HTML: html, Document: doc, Duration: time.Since(jobStart), Err: err}
			if err != nil {
				logger.Error("Note failed", logfields.Document(job.Path), logfields.Error(err))
			}
		}(i, job)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	t.recorder.ObserveBatchDuration(time.Since(start))
	logger.Info("Transform run finished",
		logfields.Count(len(jobs)),
		slog.Int("failed", failed),
		logfields.Since(start))
	return Batch{RunID: runID, Results: results}
}
