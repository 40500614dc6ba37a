// Package datatype parses the type declarations of data fields and the
// literal values of value sets and cells.
package datatype

import (
	"github.com/gofhir/phenomapper/pkg/date"
)

// Kind is a type token a value set may admit.
type Kind int

// Kinds. KindAny admits every value.
const (
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDate
)

var kindNames = map[Kind]string{
	KindAny:    "any",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindDate:   "date",
}

// String returns the canonical spelling of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf returns the kind of a parsed value. The boolean is false for
// values that are not primitives or dates.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case int:
		return KindInt, true
	case float64:
		return KindFloat, true
	case bool:
		return KindBool, true
	case date.Date:
		return KindDate, true
	default:
		return KindAny, false
	}
}
