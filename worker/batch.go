package worker

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Batch validates a whole table of rows.
type Batch struct {
	validator   RowValidator
	workers     int
	stopOnError bool
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// StopOnError cancels the remaining rows once one row returns an error.
func StopOnError(stop bool) BatchOption {
	return func(b *Batch) { b.stopOnError = stop }
}

// NewBatch creates a batch validator. If workers <= 0, it defaults to
// runtime.NumCPU().
func NewBatch(validator RowValidator, workers int, opts ...BatchOption) *Batch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	b := &Batch{validator: validator, workers: workers}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run validates rows; row i gets row number i. Results are in row order.
func (b *Batch) Run(ctx context.Context, rows [][]string) *BatchResult {
	start := time.Now()
	var res *BatchResult
	if len(rows) <= 2 || b.workers == 1 {
		res = b.runSequential(ctx, rows)
	} else {
		res = b.runParallel(ctx, rows)
	}
	res.TotalDuration = time.Since(start)
	return res
}

func (b *Batch) runSequential(ctx context.Context, rows [][]string) *BatchResult {
	res := &BatchResult{Results: make([]*JobResult, len(rows)), TotalJobs: len(rows)}
	for i, cells := range rows {
		if ctx.Err() != nil {
			break
		}
		r := b.validate(ctx, i, cells)
		res.Results[i] = r
		res.CompletedJobs++
		if r.Err != nil {
			res.FailedJobs++
			if b.stopOnError {
				break
			}
		}
	}
	return res
}

func (b *Batch) runParallel(ctx context.Context, rows [][]string) *BatchResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := min(b.workers, len(rows))
	jobs := make(chan Job, numWorkers*2)
	results := make(chan *JobResult, numWorkers*2)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results <- b.validate(ctx, job.Row, job.Cells)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, cells := range rows {
			select {
			case <-ctx.Done():
				return
			case jobs <- Job{Row: i, Cells: cells}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	res := &BatchResult{Results: make([]*JobResult, len(rows)), TotalJobs: len(rows)}
	for r := range results {
		res.Results[r.Row] = r
		res.CompletedJobs++
		if r.Err != nil {
			res.FailedJobs++
			if b.stopOnError {
				cancel()
			}
		}
	}
	return res
}

func (b *Batch) validate(ctx context.Context, row int, cells []string) *JobResult {
	start := time.Now()
	r := &JobResult{Row: row}
	if b.validator == nil {
		r.Err = ErrNoValidator
	} else {
		r.Instance, r.Err = b.validator.ValidateRow(ctx, row, cells)
	}
	r.Duration = time.Since(start)
	return r
}
