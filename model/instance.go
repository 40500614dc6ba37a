package model

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
)

// Instance is one validated row of a data set.
type Instance struct {
	RowNo int

	model  *DataModel
	values []DataFieldValue
	level  compliance.Level
	issues []issue.Issue
	valid  bool
}

// NewInstance creates and validates a row. Under strict compliance an
// invalid row is returned together with the first error.
func NewInstance(rowNo int, m *DataModel, values []DataFieldValue, level compliance.Level) (*Instance, error) {
	inst := &Instance{
		RowNo:  rowNo,
		model:  m,
		values: values,
		level:  level,
	}
	_, err := inst.Validate()
	return inst, err
}

// Validate checks every value against its field and that all required
// fields are present. Under lenient compliance problems are logged as
// warnings and false is returned.
func (inst *Instance) Validate() (bool, error) {
	inst.issues = inst.issues[:0]

	present := make(map[string]bool, len(inst.values))
	for _, v := range inst.values {
		present[v.Field.ID] = true
		if err := v.Err(); err != nil {
			inst.addError(err)
		}
	}

	var missing []string
	for _, f := range inst.model.fields {
		if f.Required && !present[f.ID] {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		inst.issues = append(inst.issues, issue.Issue{
			Severity:    issue.SeverityError,
			Code:        issue.CodeMissingRequiredField,
			Diagnostics: "required fields missing: " + strings.Join(missing, ", "),
			Row:         inst.RowNo,
		})
	}

	inst.valid = len(inst.issues) == 0
	if inst.valid {
		return true, nil
	}
	if inst.level.IsStrict() {
		return false, inst.issues[0].Err()
	}
	for _, iss := range inst.issues {
		iss.Severity = issue.SeverityWarning
		logger.Issue(iss)
	}
	return false, nil
}

func (inst *Instance) addError(err error) {
	var e *issue.Error
	if errors.As(err, &e) {
		inst.issues = append(inst.issues, e.Issue())
		return
	}
	inst.issues = append(inst.issues, issue.Issue{
		Severity:    issue.SeverityError,
		Code:        issue.CodeUnparsableValue,
		Diagnostics: err.Error(),
		Row:         inst.RowNo,
	})
}

// AddIssue records an issue found outside of field validation, such as a
// failed row constraint. Errors mark the instance invalid.
func (inst *Instance) AddIssue(iss issue.Issue) {
	iss.Row = inst.RowNo
	inst.issues = append(inst.issues, iss)
	if iss.IsError() {
		inst.valid = false
	}
}

// Model returns the data model the row belongs to.
func (inst *Instance) Model() *DataModel {
	return inst.model
}

// Level returns the compliance the row was validated under.
func (inst *Instance) Level() compliance.Level {
	return inst.level
}

// Valid reports the outcome of the last validation.
func (inst *Instance) Valid() bool {
	return inst.valid
}

// Issues returns the issues of the last validation.
func (inst *Instance) Issues() []issue.Issue {
	return append([]issue.Issue(nil), inst.issues...)
}

// Value returns the value of a field.
func (inst *Instance) Value(id string) (DataFieldValue, bool) {
	for _, v := range inst.values {
		if v.Field.ID == id {
			return v, true
		}
	}
	return DataFieldValue{}, false
}

// Values returns a copy of the row values.
func (inst *Instance) Values() []DataFieldValue {
	return append([]DataFieldValue(nil), inst.values...)
}

func (inst *Instance) setValue(id string, value any) {
	for i := range inst.values {
		if inst.values[i].Field.ID == id {
			inst.values[i].Value = value
			return
		}
	}
}

// Record returns the row as a map from field id to a JSON friendly value:
// dates become ISO 8601 strings and codings become objects with system,
// prefix, code and display.
func (inst *Instance) Record() map[string]any {
	rec := make(map[string]any, len(inst.values))
	for _, v := range inst.values {
		rec[v.Field.ID] = recordValue(v.Value)
	}
	return rec
}
