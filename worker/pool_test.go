package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/logger"
)

func init() {
	logger.Disable()
}

var errBadRow = errors.New("bad row")

// ageValidator validates single-cell rows against an integer age field.
type ageValidator struct {
	m     *model.DataModel
	calls atomic.Int32
	delay time.Duration
	fail  map[int]bool
}

func newAgeValidator(t *testing.T) *ageValidator {
	t.Helper()
	m, err := model.NewDataModel("ages", []model.DataField{model.MustField("Age", datatype.KindInt)}, nil)
	if err != nil {
		t.Fatalf("NewDataModel() error: %v", err)
	}
	return &ageValidator{m: m}
}

func (v *ageValidator) ValidateRow(ctx context.Context, rowNo int, cells []string) (*model.Instance, error) {
	v.calls.Add(1)
	if v.delay > 0 {
		select {
		case <-time.After(v.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if v.fail[rowNo] {
		return nil, errBadRow
	}
	f, _ := v.m.Field("age")
	n, err := strconv.Atoi(cells[0])
	var value any = cells[0]
	if err == nil {
		value = n
	}
	return model.NewInstance(rowNo, v.m, []model.DataFieldValue{{RowNo: rowNo, Field: f, Value: value}}, compliance.Lenient)
}

func rows(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{strconv.Itoa(i)}
	}
	return out
}

func TestPoolSubmitAndReceive(t *testing.T) {
	v := newAgeValidator(t)
	pool := NewPool(context.Background(), v, 2)

	go func() {
		for i, r := range rows(5) {
			pool.Submit(Job{Row: i, Cells: r})
		}
		pool.Wait()
	}()

	seen := map[int]bool{}
	for r := range pool.Results() {
		if r.Err != nil {
			t.Errorf("row %d error: %v", r.Row, r.Err)
		}
		if r.Instance == nil || !r.Instance.Valid() {
			t.Errorf("row %d should be valid", r.Row)
		}
		seen[r.Row] = true
	}
	if len(seen) != 5 {
		t.Errorf("received %d rows; want 5", len(seen))
	}

	s := pool.Stats()
	if s.Workers != 2 || s.JobsSubmitted != 5 || s.JobsCompleted != 5 {
		t.Errorf("Stats() = %+v", s)
	}
	if pool.Submit(Job{}) {
		t.Error("Submit after Wait should fail")
	}
}

func TestPoolDefaultWorkers(t *testing.T) {
	pool := NewPool(context.Background(), newAgeValidator(t), 0)
	defer pool.Close()
	if pool.Stats().Workers <= 0 {
		t.Error("workers should default to the CPU count")
	}
}

func TestPoolNoValidator(t *testing.T) {
	pool := NewPool(context.Background(), nil, 1)
	go func() {
		pool.Submit(Job{Row: 0})
		pool.Wait()
	}()
	for r := range pool.Results() {
		if !errors.Is(r.Err, ErrNoValidator) {
			t.Errorf("error = %v; want ErrNoValidator", r.Err)
		}
	}
}

func TestPoolCloseIdempotent(t *testing.T) {
	pool := NewPool(context.Background(), newAgeValidator(t), 2)
	pool.Submit(Job{Row: 0, Cells: []string{"1"}})
	pool.Close()
	pool.Close()
}

func TestBatchOrdered(t *testing.T) {
	v := newAgeValidator(t)
	for _, workers := range []int{1, 4} {
		t.Run(strconv.Itoa(workers), func(t *testing.T) {
			res := NewBatch(v, workers).Run(context.Background(), rows(20))
			if res.TotalJobs != 20 || res.CompletedJobs != 20 || res.FailedJobs != 0 {
				t.Fatalf("result = %+v", res)
			}
			for i, r := range res.Results {
				if r.Row != i {
					t.Fatalf("Results[%d].Row = %d", i, r.Row)
				}
			}
			if len(res.Instances()) != 20 || res.Invalid() != 0 {
				t.Errorf("Instances() = %d, Invalid() = %d", len(res.Instances()), res.Invalid())
			}
		})
	}
}

func TestBatchInvalidRows(t *testing.T) {
	v := newAgeValidator(t)
	in := rows(6)
	in[2][0] = "two"
	res := NewBatch(v, 3).Run(context.Background(), in)
	if res.FailedJobs != 0 {
		t.Errorf("lenient invalid rows should not fail: %+v", res)
	}
	if res.Invalid() != 1 {
		t.Errorf("Invalid() = %d; want 1", res.Invalid())
	}
}

func TestBatchKeepGoing(t *testing.T) {
	v := newAgeValidator(t)
	v.fail = map[int]bool{3: true, 7: true}
	res := NewBatch(v, 4).Run(context.Background(), rows(10))
	if res.FailedJobs != 2 || res.CompletedJobs != 10 {
		t.Errorf("result = %+v", res)
	}
	if !errors.Is(res.FirstError(), errBadRow) {
		t.Errorf("FirstError() = %v", res.FirstError())
	}
}

func TestBatchStopOnError(t *testing.T) {
	v := newAgeValidator(t)
	v.delay = 5 * time.Millisecond
	v.fail = map[int]bool{0: true}
	res := NewBatch(v, 2, StopOnError(true)).Run(context.Background(), rows(200))
	if res.FailedJobs == 0 {
		t.Fatal("the failing row should be reported")
	}
	if res.CompletedJobs == 200 {
		t.Error("remaining rows should be cancelled")
	}
	if res.FirstError() == nil {
		t.Error("FirstError() should not be nil")
	}
}

func TestBatchSequentialStopOnError(t *testing.T) {
	v := newAgeValidator(t)
	v.fail = map[int]bool{1: true}
	res := NewBatch(v, 1, StopOnError(true)).Run(context.Background(), rows(5))
	if res.CompletedJobs != 2 || res.Results[2] != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewBatch(newAgeValidator(t), 4).Run(ctx, rows(10))
	if res.CompletedJobs != 0 {
		t.Errorf("CompletedJobs = %d; want 0", res.CompletedJobs)
	}
}
