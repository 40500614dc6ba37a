package phenomapper

import (
	"runtime"

	"github.com/gofhir/phenomapper/cache"
	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/terminology"
)

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Compliance decides whether problems fail the run or are reported
	// as warnings.
	Compliance compliance.Level

	// DateOrder resolves dates whose day and month cannot be told apart.
	DateOrder date.Order

	// Performance
	WorkerCount   int
	CellCacheSize int

	// MaxIssues caps the issues kept in a Result. 0 keeps all of them.
	MaxIssues int

	// Row constraints
	ValidateConstraints bool
	Constraints         []model.Invariant

	// Terminology checks codings against loaded concept tables and fills
	// their display. Nil disables the check.
	Terminology *terminology.Registry
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Compliance:          compliance.Lenient,
		DateOrder:           date.DayFirst,
		WorkerCount:         runtime.NumCPU(),
		CellCacheSize:       cache.DefaultCapacity * 4,
		MaxIssues:           0,
		ValidateConstraints: true,
	}
}

// WithCompliance sets the compliance level.
func WithCompliance(level compliance.Level) Option {
	return func(o *Options) {
		o.Compliance = level
	}
}

// WithDateOrder sets how ambiguous day and month are read.
func WithDateOrder(order date.Order) Option {
	return func(o *Options) {
		o.DateOrder = order
	}
}

// WithWorkerCount sets the number of workers validating rows.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithCellCache sets the number of parsed cells kept in memory.
func WithCellCache(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.CellCacheSize = size
		}
	}
}

// WithMaxIssues caps the issues kept in a Result. Use 0 for unlimited.
func WithMaxIssues(limit int) Option {
	return func(o *Options) {
		o.MaxIssues = max(limit, 0)
	}
}

// WithConstraints adds row invariants on top of those of the data model.
func WithConstraints(invariants ...model.Invariant) Option {
	return func(o *Options) {
		o.Constraints = append(o.Constraints, invariants...)
	}
}

// WithConstraintValidation enables evaluation of row invariants.
func WithConstraintValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateConstraints = enable
	}
}

// WithTerminology checks parsed codings against the concept tables of reg.
// A code missing from a loaded table fails the row under strict
// compliance and is a warning under lenient compliance.
func WithTerminology(reg *terminology.Registry) Option {
	return func(o *Options) {
		o.Terminology = reg
	}
}

// --- Presets ---

// StrictOptions fails the run on the first invalid row.
func StrictOptions() []Option {
	return []Option{
		WithCompliance(compliance.Strict),
		WithConstraintValidation(true),
	}
}

// SurveyOptions reports every problem of a table without stopping.
func SurveyOptions() []Option {
	return []Option{
		WithCompliance(compliance.Lenient),
		WithConstraintValidation(true),
		WithMaxIssues(0),
	}
}
