package worker

import (
	"context"
	"time"

	"github.com/gofhir/phenomapper/model"
)

// RowValidator validates the cells of a single row.
type RowValidator interface {
	ValidateRow(ctx context.Context, rowNo int, cells []string) (*model.Instance, error)
}

// RowValidatorFunc adapts a function to RowValidator.
type RowValidatorFunc func(ctx context.Context, rowNo int, cells []string) (*model.Instance, error)

// ValidateRow calls f.
func (f RowValidatorFunc) ValidateRow(ctx context.Context, rowNo int, cells []string) (*model.Instance, error) {
	return f(ctx, rowNo, cells)
}

// Job is one row to validate.
type Job struct {
	Row   int
	Cells []string
}

// JobResult is the outcome of a Job.
type JobResult struct {
	Row      int
	Instance *model.Instance
	Err      error
	Duration time.Duration
}

// BatchResult aggregates the results of a run.
type BatchResult struct {
	// Results holds one entry per completed row. Rows skipped after a
	// cancellation have a nil entry.
	Results []*JobResult

	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	TotalDuration time.Duration
}

// Instances returns the instances of the completed rows in order.
func (br *BatchResult) Instances() []*model.Instance {
	out := make([]*model.Instance, 0, len(br.Results))
	for _, r := range br.Results {
		if r != nil && r.Instance != nil {
			out = append(out, r.Instance)
		}
	}
	return out
}

// FirstError returns the error of the lowest failing row, or nil.
func (br *BatchResult) FirstError() error {
	for _, r := range br.Results {
		if r != nil && r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Invalid returns the number of completed rows that did not validate.
func (br *BatchResult) Invalid() int {
	n := 0
	for _, r := range br.Results {
		if r != nil && (r.Err != nil || (r.Instance != nil && !r.Instance.Valid())) {
			n++
		}
	}
	return n
}
