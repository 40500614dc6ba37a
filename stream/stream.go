// Package stream validates tables row by row while they are read, for
// datasets too large to hold in memory.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/worker"
)

// Source yields data rows. Next returns io.EOF after the last row.
type Source interface {
	Next() ([]string, error)
}

// Rows adapts an in-memory slice to Source.
func Rows(rows [][]string) Source {
	return &sliceSource{rows: rows}
}

type sliceSource struct {
	rows [][]string
	next int
}

func (s *sliceSource) Next() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	s.next++
	return s.rows[s.next-1], nil
}

// Validator validates the rows of a Source on a worker pool.
type Validator struct {
	rows        worker.RowValidator
	bufferSize  int
	workerCount int
	stopOnError bool
}

// New creates a streaming validator around rows.
func New(rows worker.RowValidator) *Validator {
	return &Validator{
		rows:        rows,
		bufferSize:  100,
		workerCount: 4,
	}
}

// WithBufferSize sets the output channel buffer size.
func (v *Validator) WithBufferSize(size int) *Validator {
	if size > 0 {
		v.bufferSize = size
	}
	return v
}

// WithWorkerCount sets the number of parallel workers.
func (v *Validator) WithWorkerCount(count int) *Validator {
	if count > 0 {
		v.workerCount = count
	}
	return v
}

// WithStopOnError stops reading at the first row whose validation fails.
func (v *Validator) WithStopOnError(stop bool) *Validator {
	v.stopOnError = stop
	return v
}

// Validate reads src until io.EOF and emits one result per row in row
// order. A read failure is emitted last with Row -1. The channel must be
// drained; it is closed when the run ends.
func (v *Validator) Validate(ctx context.Context, src Source) <-chan *worker.JobResult {
	out := make(chan *worker.JobResult, v.bufferSize)
	pool := worker.NewPool(ctx, v.rows, v.workerCount)

	var readErr error
	go func() {
		defer pool.Wait()
		for row := 0; ; row++ {
			cells, err := src.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				readErr = err
				return
			}
			if !pool.Submit(worker.Job{Row: row, Cells: cells}) {
				return
			}
		}
	}()

	go func() {
		defer close(out)

		emit := func(r *worker.JobResult) bool {
			select {
			case <-ctx.Done():
				return false
			case out <- r:
				return true
			}
		}

		pending := make(map[int]*worker.JobResult)
		next := 0
		stopped := false
		for r := range pool.Results() {
			if stopped {
				continue
			}
			pending[r.Row] = r
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if !emit(p) {
					stopped = true
					pool.Cancel()
					break
				}
				if p.Err != nil && v.stopOnError {
					stopped = true
					pool.Cancel()
					break
				}
			}
		}
		if stopped {
			return
		}

		// Rows skipped after a cancellation leave gaps.
		rest := make([]int, 0, len(pending))
		for row := range pending {
			rest = append(rest, row)
		}
		slices.Sort(rest)
		for _, row := range rest {
			if !emit(pending[row]) {
				return
			}
		}
		if readErr != nil {
			emit(&worker.JobResult{Row: -1, Err: fmt.Errorf("stream: %w", readErr)})
		}
	}()

	return out
}

// Summary aggregates the results of a streaming run.
type Summary struct {
	// Rows is the number of rows validated.
	Rows int `json:"rows"`

	// ValidRows is the number of rows without error-level issues.
	ValidRows int `json:"validRows"`

	// FailedRows is the number of rows whose validation returned an error.
	FailedRows int `json:"failedRows"`

	// Issues holds the issues of each row that had any.
	Issues map[int][]issue.Issue `json:"issues,omitempty"`

	// ReadErrors are failures of the source, not of validation.
	ReadErrors []error `json:"-"`
}

// Aggregate drains results into a Summary.
func Aggregate(results <-chan *worker.JobResult) *Summary {
	s := &Summary{Issues: make(map[int][]issue.Issue)}
	for r := range results {
		if r.Row < 0 {
			s.ReadErrors = append(s.ReadErrors, r.Err)
			continue
		}
		s.Rows++
		if r.Err != nil {
			s.FailedRows++
		}
		if r.Instance == nil {
			continue
		}
		if r.Instance.Valid() && r.Err == nil {
			s.ValidRows++
		}
		if issues := r.Instance.Issues(); len(issues) > 0 {
			s.Issues[r.Row] = issues
		}
	}
	return s
}

// HasErrors reports whether any row was invalid or the source failed.
func (s *Summary) HasErrors() bool {
	return s.ValidRows < s.Rows || len(s.ReadErrors) > 0
}
