// Package preprocess rewrites cell values before validation, either by a
// lookup table or by a function.
package preprocess

import (
	"fmt"
	"reflect"

	"github.com/gofhir/phenomapper/pkg/issue"
)

// Dict maps original values to replacements.
type Dict map[any]any

// Func transforms a single value. kwargs carries caller supplied options.
type Func func(value any, kwargs map[string]any) (any, error)

// MultiFunc transforms the values of several fields of one row at once.
// It receives the values keyed by field id and returns the replacements
// for the ids it wants to change.
type MultiFunc func(values map[string]any, kwargs map[string]any) (map[string]any, error)

// Lookup returns the replacement of value in d. Values that cannot be map
// keys are never found.
func (d Dict) Lookup(value any) (any, bool) {
	if value != nil && !reflect.ValueOf(value).Comparable() {
		return nil, false
	}
	v, ok := d[value]
	return v, ok
}

// Apply preprocesses a single value with a Dict or a Func. A value missing
// from the dict, or a function error, keeps the original value and is
// reported through the returned error, which callers treat as a warning.
// Any other mapping is an invalid-mapping error and the value is kept.
func Apply(value any, mapping any, kwargs map[string]any) (any, error) {
	switch m := mapping.(type) {
	case Dict:
		if v, ok := m.Lookup(value); ok {
			return v, nil
		}
		return value, fmt.Errorf("value %v not found in mapping dictionary", value)
	case map[any]any:
		return Apply(value, Dict(m), kwargs)
	case Func:
		return applyFunc(value, m, kwargs)
	case func(any, map[string]any) (any, error):
		return applyFunc(value, m, kwargs)
	default:
		return value, issue.Errorf(issue.CodeInvalidMapping, "mapping type %T is not supported for preprocessing", mapping)
	}
}

func applyFunc(value any, fn Func, kwargs map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = value, fmt.Errorf("preprocessing %v panicked: %v", value, r)
		}
	}()
	v, err := fn(value, kwargs)
	if err != nil {
		return value, fmt.Errorf("preprocessing %v: %w", value, err)
	}
	return v, nil
}

// ApplyMulti runs a MultiFunc over one row's values. On error the original
// values are returned unchanged.
func ApplyMulti(values map[string]any, mapping any, kwargs map[string]any) (map[string]any, error) {
	var fn MultiFunc
	switch m := mapping.(type) {
	case MultiFunc:
		fn = m
	case func(map[string]any, map[string]any) (map[string]any, error):
		fn = m
	default:
		return values, issue.Errorf(issue.CodeInvalidMapping,
			"preprocessing several fields requires a MultiFunc, got %T", mapping)
	}
	out, err := fn(values, kwargs)
	if err != nil {
		return values, fmt.Errorf("preprocessing %v: %w", values, err)
	}
	return out, nil
}
