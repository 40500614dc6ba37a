package issue

import (
	"errors"
	"fmt"
)

// Error is an error carrying an issue code.
//
// Two errors match under errors.Is when their codes are equal, so callers
// can test against the sentinel values below:
//
//	if errors.Is(err, issue.ErrMalformedDate) { ... }
type Error struct {
	Code        Code
	Diagnostics string
	Row         int
	Field       string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Diagnostics == "" {
		return string(e.Code)
	}
	return e.Diagnostics
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Issue converts the error into an error-level issue.
func (e *Error) Issue() Issue {
	return Issue{
		Severity:    SeverityError,
		Code:        e.Code,
		Diagnostics: e.Diagnostics,
		Row:         e.Row,
		Field:       e.Field,
	}
}

// Sentinel errors, one per code.
var (
	ErrMalformedDate        = &Error{Code: CodeMalformedDate}
	ErrAmbiguousDate        = &Error{Code: CodeAmbiguousDate}
	ErrInvalidCalendarDate  = &Error{Code: CodeInvalidCalendarDate}
	ErrMalformedCoding      = &Error{Code: CodeMalformedCoding}
	ErrUnresolvedCodeSystem = &Error{Code: CodeUnresolvedCodeSystem}
	ErrUnrecognizedType     = &Error{Code: CodeUnrecognizedType}
	ErrUnparsableValue      = &Error{Code: CodeUnparsableValue}
	ErrEmptyValueSet        = &Error{Code: CodeEmptyValueSet}
	ErrDuplicateFieldID     = &Error{Code: CodeDuplicateFieldID}
	ErrInvalidIdentifier    = &Error{Code: CodeInvalidIdentifier}
	ErrFieldNotFound        = &Error{Code: CodeFieldNotFound}
	ErrMissingRequiredField = &Error{Code: CodeMissingRequiredField}
	ErrNotInValueSet        = &Error{Code: CodeNotInValueSet}
	ErrMissingColumn        = &Error{Code: CodeMissingColumn}
	ErrInvalidMapping       = &Error{Code: CodeInvalidMapping}
	ErrConstraintFailed     = &Error{Code: CodeConstraintFailed}
)

// Errorf creates an *Error with a formatted diagnostic.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Diagnostics: fmt.Sprintf(format, args...), Row: -1}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
