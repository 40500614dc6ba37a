// Package issue defines the issues raised while parsing and validating
// tabular data against a data model.
package issue

import (
	"fmt"
	"strings"
)

// Severity represents the severity of an issue.
type Severity string

// Severity constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of issue.
type Code string

// Code constants. InvalidCalendarDate and InvalidIdentifier are always
// fatal; every other code is subject to the compliance level.
const (
	CodeMalformedDate        Code = "malformed-date"
	CodeAmbiguousDate        Code = "ambiguous-date"
	CodeInvalidCalendarDate  Code = "invalid-calendar-date"
	CodeMalformedCoding      Code = "malformed-coding"
	CodeUnresolvedCodeSystem Code = "unresolved-code-system"
	CodeUnrecognizedType     Code = "unrecognized-type"
	CodeUnparsableValue      Code = "unparsable-value"
	CodeEmptyValueSet        Code = "empty-value-set"
	CodeDuplicateFieldID     Code = "duplicate-field-id"
	CodeInvalidIdentifier    Code = "invalid-identifier"
	CodeFieldNotFound        Code = "field-not-found"
	CodeMissingRequiredField Code = "missing-required-field"
	CodeNotInValueSet        Code = "value-not-in-value-set"
	CodeMissingColumn        Code = "missing-column"
	CodeInvalidMapping       Code = "invalid-mapping"
	CodeConstraintFailed     Code = "constraint-failed"
)

// Issue represents a single problem found in a schema or a row.
type Issue struct {
	// Severity indicates whether the issue made the row invalid
	Severity Severity `json:"severity"`

	// Code indicates the kind of issue
	Code Code `json:"code"`

	// Diagnostics is the human-readable description of the issue
	Diagnostics string `json:"diagnostics"`

	// Row is the row number the issue belongs to, -1 when not row bound
	Row int `json:"row"`

	// Field is the id of the field the issue belongs to, if any
	Field string `json:"field,omitempty"`
}

// IsError returns true if the issue is an error.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	b.WriteString(" [")
	b.WriteString(string(i.Code))
	b.WriteString("] ")
	b.WriteString(i.Diagnostics)
	if i.Field != "" {
		b.WriteString(" (field ")
		b.WriteString(i.Field)
		b.WriteString(")")
	}
	if i.Row >= 0 {
		fmt.Fprintf(&b, " (row %d)", i.Row)
	}
	return b.String()
}

// Err converts the issue to an error carrying the same code.
func (i Issue) Err() error {
	return &Error{Code: i.Code, Diagnostics: i.Diagnostics, Row: i.Row, Field: i.Field}
}
