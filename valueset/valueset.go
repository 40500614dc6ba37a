// Package valueset implements the sets of permissible values attached to
// data fields.
//
// A value set holds literal values (string, int, float64, bool, date.Date),
// datatype.Kind tokens, code systems and codings. KindAny admits every
// value.
package valueset

import (
	"fmt"
	"strings"

	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/terminology"
)

// FieldValuer is implemented by wrappers around a cell value, such as a
// data field value. Membership tests unwrap them.
type FieldValuer interface {
	FieldValue() any
}

// ValueSet is an immutable ordered collection of permissible elements.
type ValueSet struct {
	Name        string
	Description string
	elements    []any
}

// New creates a value set. The elements are copied.
func New(name, description string, elements ...any) ValueSet {
	return ValueSet{
		Name:        name,
		Description: description,
		elements:    append([]any(nil), elements...),
	}
}

// Any returns a value set admitting every value.
func Any() ValueSet {
	return New("", "", datatype.KindAny)
}

// Elements returns a copy of the elements.
func (vs ValueSet) Elements() []any {
	return append([]any(nil), vs.elements...)
}

// Len returns the number of elements.
func (vs ValueSet) Len() int {
	return len(vs.elements)
}

// IsAny reports whether vs contains KindAny.
func (vs ValueSet) IsAny() bool {
	for _, e := range vs.elements {
		if k, ok := e.(datatype.Kind); ok && k == datatype.KindAny {
			return true
		}
	}
	return false
}

// Extend returns the union of vs and other under a new name and
// description. Duplicates are dropped and first occurrences keep their
// order; vs and other are unchanged.
func (vs ValueSet) Extend(name string, other ValueSet, description string) ValueSet {
	out := ValueSet{Name: name, Description: description}
	out.elements = dedup(append(vs.Elements(), other.elements...))
	return out
}

// RemoveDuplicates returns vs without repeated elements.
func (vs ValueSet) RemoveDuplicates() ValueSet {
	return ValueSet{Name: vs.Name, Description: vs.Description, elements: dedup(vs.Elements())}
}

func dedup(elems []any) []any {
	out := make([]any, 0, len(elems))
	for _, e := range elems {
		seen := false
		for _, o := range out {
			if Equal(o, e) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether item equals one of the elements, or vs
// contains KindAny. Booleans only ever equal booleans.
func (vs ValueSet) Contains(item any) bool {
	if fv, ok := item.(FieldValuer); ok {
		item = fv.FieldValue()
	}
	if vs.IsAny() {
		return true
	}
	for _, e := range vs.elements {
		if Equal(e, item) {
			return true
		}
	}
	return false
}

// Admits reports whether a parsed cell value is permitted by vs. On top
// of Contains, a Kind admits values of that kind (KindFloat also admits
// ints), a code system admits its codings, and a codeable concept is
// admitted when one of its codings is.
func (vs ValueSet) Admits(value any) bool {
	if fv, ok := value.(FieldValuer); ok {
		value = fv.FieldValue()
	}
	if vs.Contains(value) {
		return true
	}
	if cc, ok := value.(terminology.CodeableConcept); ok {
		for _, c := range cc.Coding {
			if vs.Admits(c) {
				return true
			}
		}
		return false
	}

	kind, hasKind := datatype.KindOf(value)
	for _, e := range vs.elements {
		switch el := e.(type) {
		case datatype.Kind:
			if !hasKind {
				continue
			}
			if el == kind || (el == datatype.KindFloat && kind == datatype.KindInt) {
				return true
			}
		case *terminology.CodeSystem:
			if c, ok := value.(terminology.Coding); ok && el.Contains(c) {
				return true
			}
		}
	}
	return false
}

// Equal reports whether two elements are equal, using the equalities of
// code systems, codings and codeable concepts.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *terminology.CodeSystem:
		bv, ok := b.(*terminology.CodeSystem)
		return ok && av.Equal(bv)
	case terminology.Coding:
		bv, ok := b.(terminology.Coding)
		return ok && av.Equal(bv)
	case terminology.CodeableConcept:
		bv, ok := b.(terminology.CodeableConcept)
		return ok && av.Equal(bv)
	case string, int, float64, bool, date.Date, datatype.Kind:
		return a == b
	default:
		return false
	}
}

// Equal reports whether vs and other have the same name, description and
// elements in the same order.
func (vs ValueSet) Equal(other ValueSet) bool {
	if vs.Name != other.Name || vs.Description != other.Description || len(vs.elements) != len(other.elements) {
		return false
	}
	for i := range vs.elements {
		if !Equal(vs.elements[i], other.elements[i]) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (vs ValueSet) String() string {
	parts := make([]string, len(vs.elements))
	for i, e := range vs.elements {
		switch el := e.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", el)
		case *terminology.CodeSystem:
			parts[i] = el.NamespacePrefix
		default:
			parts[i] = fmt.Sprint(el)
		}
	}
	return fmt.Sprintf("ValueSet(name=%q, elements=[%s])", vs.Name, strings.Join(parts, ", "))
}

// Built-in value sets.
var (
	TrueFalse = New("TrueFalseValueSet", "A value set for True and False", true, false)

	Unknown = New("UnknownValueSet", "A value set for Unknown", "unknown")

	TrueFalseUnknown = TrueFalse.Extend("TrueFalseUnknownValueSet", Unknown,
		"A value set for True, False, and Unknown")
)
