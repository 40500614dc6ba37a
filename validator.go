package phenomapper

import (
	"context"
	"fmt"
	"time"

	"github.com/gofhir/phenomapper/cache"
	"github.com/gofhir/phenomapper/constraint"
	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/stream"
	"github.com/gofhir/phenomapper/terminology"
	"github.com/gofhir/phenomapper/worker"
)

// Validator validates tables against a data model. It is safe for
// concurrent use and reuses parsed cells across runs.
type Validator struct {
	model       *model.DataModel
	opts        *Options
	invariants  []model.Invariant
	cells       *cache.LRU[cache.Key, any]
	constraints *constraint.Evaluator
	metrics     *Metrics
}

// New creates a Validator for m. Row invariants of the model and of
// WithConstraints are compiled up front.
func New(m *model.DataModel, opts ...Option) (*Validator, error) {
	if m == nil {
		return nil, fmt.Errorf("phenomapper: nil data model")
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	v := &Validator{
		model:       m,
		opts:        o,
		cells:       cache.New[cache.Key, any](o.CellCacheSize),
		constraints: constraint.New(),
		metrics:     NewMetrics(),
	}
	if o.ValidateConstraints {
		v.invariants = append(append([]model.Invariant(nil), m.Constraints...), o.Constraints...)
		if err := v.constraints.Compile(v.invariants); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Model returns the data model.
func (v *Validator) Model() *model.DataModel {
	return v.model
}

// Options returns a copy of the configuration.
func (v *Validator) Options() Options {
	return *v.opts
}

// Metrics returns the counters accumulated over all runs.
func (v *Validator) Metrics() *Metrics {
	return v.metrics
}

// ValidateTable validates every row of table. columns maps "<id>_column"
// keys to header names.
//
// Under lenient compliance every row is validated and the problems are
// reported in the Result. Under strict compliance the run stops at the
// first invalid row, whose error is returned along with the partial
// Result.
func (v *Validator) ValidateTable(ctx context.Context, table model.Table, columns map[string]string) (*Result, error) {
	level := v.opts.Compliance
	res := NewResult(v.model.Name, v.opts.MaxIssues)
	res.Compliance = level.String()

	binding, err := v.model.Bind(table.Header, columns, level)
	if err != nil {
		return res, err
	}
	res.AddIssues(binding.Issues())

	before := v.cells.Stats()
	rows := v.rowValidator(binding)
	batch := worker.NewBatch(rows, v.opts.WorkerCount, worker.StopOnError(level.IsStrict()))
	out := batch.Run(ctx, table.Rows)

	instances := out.Instances()
	for _, inst := range instances {
		res.AddIssues(inst.Issues())
		if inst.Valid() {
			res.ValidRows++
		}
	}
	res.Rows = len(instances)
	res.DataSet = model.NewDataSet(v.model, instances, level)
	for _, iss := range res.Issues {
		v.metrics.RecordIssue(iss)
	}

	after := v.cells.Stats()
	v.metrics.RecordCache(after.Hits-before.Hits, after.Misses-before.Misses)
	res.Duration = time.Since(res.Started)

	logger.Info("run %s: validated %d rows against %s (%d valid, %d issues) in %s",
		res.RunID, res.Rows, v.model.Name, res.ValidRows, len(res.Issues), res.Duration)

	if err := out.FirstError(); err != nil {
		return res, fmt.Errorf("row %d: %w", firstFailedRow(out), err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// ValidateRecords is ValidateTable with every field bound to the header
// equal to its name.
func (v *Validator) ValidateRecords(ctx context.Context, header []string, rows [][]string) (*Result, error) {
	columns := make(map[string]string, v.model.Len())
	for _, f := range v.model.Fields() {
		columns[f.ID+model.ColumnSuffix] = f.Name
	}
	return v.ValidateTable(ctx, model.Table{Header: header, Rows: rows}, columns)
}

// ValidateStream validates the rows of src as they are read and emits the
// results in row order. header is the header of the source table. Under
// strict compliance reading stops at the first invalid row. Row timings go
// to Metrics; row issues stay on the emitted instances.
func (v *Validator) ValidateStream(ctx context.Context, header []string, src stream.Source, columns map[string]string) (<-chan *worker.JobResult, error) {
	binding, err := v.model.Bind(header, columns, v.opts.Compliance)
	if err != nil {
		return nil, err
	}
	for _, iss := range binding.Issues() {
		v.metrics.RecordIssue(iss)
	}
	sv := stream.New(v.rowValidator(binding)).
		WithWorkerCount(v.opts.WorkerCount).
		WithStopOnError(v.opts.Compliance.IsStrict())
	return sv.Validate(ctx, src), nil
}

func (v *Validator) rowValidator(binding *model.Binding) worker.RowValidator {
	level := v.opts.Compliance
	parse := v.cellParser()
	return worker.RowValidatorFunc(func(ctx context.Context, rowNo int, cells []string) (*model.Instance, error) {
		start := time.Now()
		values := binding.Values(rowNo, cells, parse)
		concepts := v.describe(rowNo, values)
		inst, err := model.NewInstance(rowNo, v.model, values, level)
		for _, iss := range concepts {
			if err != nil {
				break
			}
			inst.AddIssue(iss)
			if iss.IsError() {
				err = iss.Err()
				continue
			}
			logger.Issue(iss)
		}
		if err == nil && len(v.invariants) > 0 {
			err = v.constraints.Apply(inst, v.invariants)
		}
		v.metrics.RecordRow(time.Since(start), err == nil && inst.Valid())
		return inst, err
	})
}

// describe resolves the codings among values against the terminology
// registry in place, filling their display. Codes absent from a loaded
// concept table are returned as issues, error-level under strict
// compliance.
func (v *Validator) describe(rowNo int, values []model.DataFieldValue) []issue.Issue {
	reg := v.opts.Terminology
	if reg == nil {
		return nil
	}
	severity := issue.SeverityWarning
	if v.opts.Compliance.IsStrict() {
		severity = issue.SeverityError
	}

	var issues []issue.Issue
	check := func(field string, c terminology.Coding) terminology.Coding {
		described, err := reg.Describe(c)
		if err == nil {
			return described
		}
		if issue.CodeOf(err) == issue.CodeNotInValueSet {
			issues = append(issues, issue.Issue{
				Severity:    severity,
				Code:        issue.CodeNotInValueSet,
				Diagnostics: err.Error(),
				Row:         rowNo,
				Field:       field,
			})
		}
		return c
	}

	for i := range values {
		id := values[i].Field.ID
		switch x := values[i].Value.(type) {
		case terminology.Coding:
			values[i].Value = check(id, x)
		case terminology.CodeableConcept:
			codings := make([]terminology.Coding, len(x.Coding))
			for j, c := range x.Coding {
				codings[j] = check(id, c)
			}
			x.Coding = codings
			values[i].Value = x
		}
	}
	return issues
}

func (v *Validator) cellParser() model.ParseFunc {
	parse := model.CellParser(v.model.Resources, v.opts.DateOrder)
	return func(f model.DataField, cell string) any {
		return v.cells.Memo(cache.Key{Field: f.ID, Text: cell}, func() any {
			return parse(f, cell)
		})
	}
}

func firstFailedRow(br *worker.BatchResult) int {
	for _, r := range br.Results {
		if r != nil && r.Err != nil {
			return r.Row
		}
	}
	return -1
}
