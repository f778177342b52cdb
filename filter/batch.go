package filter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/internal/parallel"
	"github.com/gogpu/photofx/raster"
)

// Job is one filter invocation of a batch.
type Job struct {
	// ID identifies the job in logs and results. Empty IDs are replaced
	// by a random UUID.
	ID string

	// Filter is the filter to run.
	Filter Filter

	// Progress receives the job's progress. It is called from the worker
	// running the job.
	Progress ProgressFunc
}

// Result is the outcome of one Job.
type Result struct {
	ID       string
	Kind     Kind
	Image    *raster.Image
	Status   Status
	Err      error
	Duration time.Duration
}

// RunBatch runs independent filter jobs on at most workers goroutines
// (GOMAXPROCS if workers <= 0) and returns one result per job, in job
// order. Each filter instance stays single-threaded; parallelism is only
// across jobs. Cancelling ctx cancels running jobs and marks jobs that
// never started as cancelled.
func RunBatch(ctx context.Context, jobs []Job, workers int) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	pool := parallel.NewWorkerPool(min(workers, len(jobs)))
	defer pool.Close()

	log := photofx.Logger()
	work := make([]func(context.Context), len(jobs))
	for i, job := range jobs {
		id := job.ID
		if id == "" {
			id = uuid.NewString()
		}
		results[i] = Result{ID: id, Status: StatusCancelled, Err: ErrCancelled}
		if job.Filter == nil {
			results[i].Status = StatusFailed
			results[i].Err = ErrEmptySource
			continue
		}
		results[i].Kind = job.Filter.Kind()

		work[i] = func(ctx context.Context) {
			start := time.Now()
			img, err := job.Filter.Run(ctx, job.Progress)
			results[i].Image = img
			results[i].Err = err
			results[i].Status = StatusOf(err)
			results[i].Duration = time.Since(start)
			log.Debug("filter: batch job done", "id", id, "kind", job.Filter.Kind(),
				"status", results[i].Status, "duration", results[i].Duration)
		}
	}

	// Drop placeholders of jobs without a filter.
	runnable := work[:0:0]
	for _, w := range work {
		if w != nil {
			runnable = append(runnable, w)
		}
	}
	if err := pool.ExecuteAll(ctx, runnable); err != nil {
		log.Debug("filter: batch cancelled", "err", err)
	}
	return results
}
