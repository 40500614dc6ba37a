package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoValidator is returned when the pool has no validator configured.
var ErrNoValidator = errors.New("worker: no row validator configured")

// Pool manages worker goroutines validating rows as they are submitted.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	validator  RowValidator
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsFailed    atomic.Uint64
	totalDuration atomic.Int64
}

// NewPool starts a pool. If workers <= 0, it defaults to runtime.NumCPU().
// The pool stops when ctx is cancelled.
func NewPool(ctx context.Context, validator RowValidator, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		validator:  validator,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Submit queues a row, blocking while the queue is full. It returns false
// once the pool is closed or cancelled.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// Results returns the channel of completed rows. It is closed by Wait.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Cancel stops the workers after their current row.
func (p *Pool) Cancel() {
	p.cancel()
}

// Wait stops accepting rows, lets the workers finish the queued ones and
// closes Results. Results must be drained concurrently.
func (p *Pool) Wait() {
	if p.closed.Swap(true) {
		return
	}
	close(p.jobsChan)
	p.wg.Wait()
	close(p.resultChan)
	p.cancel()
}

// Close cancels the pool, discards pending results and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.cancel()
	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()
	p.Wait()
	<-done
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	AvgDuration   time.Duration
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	s := PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		JobsFailed:    p.jobsFailed.Load(),
	}
	if s.JobsCompleted > 0 {
		s.AvgDuration = time.Duration(p.totalDuration.Load() / int64(s.JobsCompleted))
	}
	return s
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		if p.ctx.Err() != nil {
			continue
		}

		result := p.process(job)
		p.jobsCompleted.Add(1)
		if result.Err != nil {
			p.jobsFailed.Add(1)
		}
		p.totalDuration.Add(int64(result.Duration))

		select {
		case <-p.ctx.Done():
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) process(job Job) *JobResult {
	start := time.Now()
	result := &JobResult{Row: job.Row}
	if p.validator == nil {
		result.Err = ErrNoValidator
	} else {
		result.Instance, result.Err = p.validator.ValidateRow(p.ctx, job.Row, job.Cells)
	}
	result.Duration = time.Since(start)
	return result
}
