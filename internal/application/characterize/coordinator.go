package characterize

import (
	"context"
	"errors"
	"sync"

	"github.com/analogtools/gmsweep/internal/ctxlog"
	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// prefetchFactor bounds in-flight jobs beyond the worker count so peak
// transient-file and process pressure stays proportional to the pool size.
const prefetchFactor = 2

// jobResult pairs one job's outcome with its position in the input order.
type jobResult struct {
	Record sweep.MeasurementRecord
	Err    error
}

// coordinator fans jobs out across a bounded worker pool. Output ordering
// matches input ordering regardless of completion order; a single job
// failure never aborts its siblings.
type coordinator struct {
	runner  sweep.Runner
	parser  sweep.Parser
	workers int
	retries int

	// onSuccess runs in the worker goroutine for each successful record.
	// Callees write disjoint state per grid point (the assembler arena).
	onSuccess func(sweep.MeasurementRecord)
	// onDone runs in the worker goroutine after every attempted job.
	onDone func(failed bool)
}

type indexedJob struct {
	pos int
	job sweep.SimulationJob
}

// execute runs all jobs to completion (or per-job timeout, or run-level
// cancellation) and returns one result per job, input-ordered.
func (c *coordinator) execute(ctx context.Context, jobs []sweep.SimulationJob) []jobResult {
	logger := ctxlog.FromContext(ctx)
	results := make([]jobResult, len(jobs))

	workers := c.workers
	if workers < 1 {
		workers = 1
	}
	feed := make(chan indexedJob, workers*prefetchFactor)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for ij := range feed {
				results[ij.pos] = c.runOne(ctx, ij.job)
				failed := results[ij.pos].Err != nil
				if failed {
					logger.Debug("job failed",
						"workerID", workerID,
						"index", ij.job.Point.Index.String(),
						"error", results[ij.pos].Err)
				}
				if c.onDone != nil {
					c.onDone(failed)
				}
			}
		}(w)
	}

	for i, job := range jobs {
		feed <- indexedJob{pos: i, job: job}
	}
	close(feed)
	wg.Wait()

	return results
}

// runOne attempts one job, retrying job-scoped failures up to the
// configured count. Cancellation is never retried.
func (c *coordinator) runOne(ctx context.Context, job sweep.SimulationJob) jobResult {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return jobResult{Err: &sweep.JobError{
				Index: job.Point.Index, Linear: job.Point.Linear, Wrapped: err,
			}}
		}

		raw, err := c.runner.Run(ctx, job)
		if err == nil {
			var rec sweep.MeasurementRecord
			rec, err = c.parser.Parse(raw, job)
			if err == nil {
				if c.onSuccess != nil {
					c.onSuccess(rec)
				}
				return jobResult{Record: rec}
			}
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return jobResult{Err: &sweep.JobError{
		Index: job.Point.Index, Linear: job.Point.Linear, Wrapped: lastErr,
	}}
}

// retryable reports whether an error is job-scoped and worth another
// attempt. Fatal and cancellation errors are not.
func retryable(err error) bool {
	var timeout *sweep.TimeoutError
	var simfail *sweep.SimulationError
	var missing *sweep.MissingQuantityError
	return errors.As(err, &timeout) || errors.As(err, &simfail) || errors.As(err, &missing)
}
