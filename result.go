package phenomapper

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/issue"
)

// Result contains the outcome of validating a table.
type Result struct {
	// RunID identifies the validation run in logs and reports
	RunID string `json:"runId"`

	// Model is the name of the data model the table was validated against
	Model string `json:"model"`

	// Compliance is the level the run used
	Compliance string `json:"compliance"`

	// Valid is true if no errors were found (warnings are allowed)
	Valid bool `json:"valid"`

	// Rows is the number of rows validated; ValidRows of them passed
	Rows      int `json:"rows"`
	ValidRows int `json:"validRows"`

	// Issues contains the issues found, capped by MaxIssues
	Issues []issue.Issue `json:"issues,omitempty"`

	// Truncated is set when issues were dropped because of MaxIssues
	Truncated bool `json:"truncated,omitempty"`

	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`

	// DataSet holds the validated rows
	DataSet *model.DataSet `json:"-"`

	maxIssues int
	mu        sync.Mutex
}

// NewResult creates an empty valid result with a fresh run id.
func NewResult(modelName string, maxIssues int) *Result {
	return &Result{
		RunID:     uuid.NewString(),
		Model:     modelName,
		Valid:     true,
		Issues:    make([]issue.Issue, 0, 8),
		Started:   time.Now(),
		maxIssues: maxIssues,
	}
}

// AddIssue adds an issue to the result.
// This method is thread-safe.
func (r *Result) AddIssue(iss issue.Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(iss)
}

// AddIssues adds multiple issues to the result.
// This method is thread-safe.
func (r *Result) AddIssues(issues []issue.Issue) {
	if len(issues) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, iss := range issues {
		r.addLocked(iss)
	}
}

func (r *Result) addLocked(iss issue.Issue) {
	if iss.IsError() {
		r.Valid = false
	}
	if r.maxIssues > 0 && len(r.Issues) >= r.maxIssues {
		r.Truncated = true
		return
	}
	r.Issues = append(r.Issues, iss)
}

// HasErrors returns true if there are any error issues.
func (r *Result) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.Valid
}

// ErrorCount returns the number of error issues kept.
func (r *Result) ErrorCount() int {
	return len(r.Errors())
}

// WarningCount returns the number of warning issues kept.
func (r *Result) WarningCount() int {
	return len(r.Warnings())
}

// Errors returns all error issues.
func (r *Result) Errors() []issue.Issue {
	return r.filter(func(i issue.Issue) bool { return i.IsError() })
}

// Warnings returns all warning issues.
func (r *Result) Warnings() []issue.Issue {
	return r.filter(func(i issue.Issue) bool { return !i.IsError() })
}

// RowIssues returns the issues of one row.
func (r *Result) RowIssues(row int) []issue.Issue {
	return r.filter(func(i issue.Issue) bool { return i.Row == row })
}

func (r *Result) filter(keep func(issue.Issue) bool) []issue.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []issue.Issue
	for _, iss := range r.Issues {
		if keep(iss) {
			out = append(out, iss)
		}
	}
	return out
}
