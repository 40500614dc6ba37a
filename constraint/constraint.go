// Package constraint evaluates FHIRPath invariants against validated rows.
//
// A row is evaluated as the JSON object of its record: field ids are the
// keys, dates are ISO 8601 strings and codings are objects with system,
// prefix, code and display. An invariant passes when its expression is
// empty or true.
package constraint

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofhir/fhirpath"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
)

// Evaluator evaluates invariants, caching compiled expressions.
type Evaluator struct {
	exprCache   map[string]*fhirpath.Expression
	exprCacheMu sync.RWMutex
}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{exprCache: make(map[string]*fhirpath.Expression)}
}

// Compile checks that every invariant has a key and a compilable
// expression.
func (e *Evaluator) Compile(invariants []model.Invariant) error {
	for _, inv := range invariants {
		if inv.Key == "" {
			return issue.Errorf(issue.CodeConstraintFailed, "invariant %q has no key", inv.Expression)
		}
		if _, err := e.compiled(inv.Expression); err != nil {
			return fmt.Errorf("invariant %s: %w", inv.Key, err)
		}
	}
	return nil
}

// Check evaluates the invariants against one row. Failed invariants are
// reported with their own severity, errors by default. Expressions that do
// not compile or evaluate are reported as warnings.
func (e *Evaluator) Check(inst *model.Instance, invariants []model.Invariant) []issue.Issue {
	if len(invariants) == 0 {
		return nil
	}
	data, err := json.Marshal(inst.Record())
	if err != nil {
		return []issue.Issue{{
			Severity:    issue.SeverityWarning,
			Code:        issue.CodeConstraintFailed,
			Diagnostics: fmt.Sprintf("cannot encode row for constraint evaluation: %v", err),
			Row:         inst.RowNo,
		}}
	}

	var issues []issue.Issue
	for _, inv := range invariants {
		if inv.Expression == "" {
			continue
		}
		iss, failed := e.evaluate(data, inv)
		if failed {
			iss.Row = inst.RowNo
			issues = append(issues, iss)
		}
	}
	return issues
}

func (e *Evaluator) evaluate(data []byte, inv model.Invariant) (issue.Issue, bool) {
	expr, err := e.compiled(inv.Expression)
	if err != nil {
		return warning(inv, "compile", err), true
	}
	result, err := expr.Evaluate(data)
	if err != nil {
		return warning(inv, "evaluate", err), true
	}
	if passed(result) {
		return issue.Issue{}, false
	}

	severity := inv.Severity
	if severity == "" {
		severity = issue.SeverityError
	}
	diag := fmt.Sprintf("constraint failed: %s: '%s'", inv.Key, inv.Human)
	if inv.Human == "" {
		diag = fmt.Sprintf("constraint failed: %s: '%s'", inv.Key, inv.Expression)
	}
	return issue.Issue{Severity: severity, Code: issue.CodeConstraintFailed, Diagnostics: diag}, true
}

func warning(inv model.Invariant, stage string, err error) issue.Issue {
	return issue.Issue{
		Severity:    issue.SeverityWarning,
		Code:        issue.CodeConstraintFailed,
		Diagnostics: fmt.Sprintf("cannot %s constraint %s: %v", stage, inv.Key, err),
	}
}

// Apply checks the invariants and records the issues on the row. Under
// strict compliance the first failed error-level invariant is returned.
func (e *Evaluator) Apply(inst *model.Instance, invariants []model.Invariant) error {
	strict := inst.Level().IsStrict()
	var first error
	for _, iss := range e.Check(inst, invariants) {
		inst.AddIssue(iss)
		switch {
		case strict && iss.IsError():
			if first == nil {
				first = iss.Err()
			}
		default:
			iss.Severity = issue.SeverityWarning
			logger.Issue(iss)
		}
	}
	return first
}

func (e *Evaluator) compiled(expr string) (*fhirpath.Expression, error) {
	e.exprCacheMu.RLock()
	compiled, ok := e.exprCache[expr]
	e.exprCacheMu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := fhirpath.Compile(expr)
	if err != nil {
		return nil, err
	}

	e.exprCacheMu.Lock()
	e.exprCache[expr] = compiled
	e.exprCacheMu.Unlock()
	return compiled, nil
}

// CacheSize returns the number of compiled expressions.
func (e *Evaluator) CacheSize() int {
	e.exprCacheMu.RLock()
	defer e.exprCacheMu.RUnlock()
	return len(e.exprCache)
}

// passed treats an empty result as not applicable.
func passed(result fhirpath.Collection) bool {
	if result.Empty() {
		return true
	}
	b, err := result.ToBoolean()
	if err != nil {
		return true
	}
	return b
}
