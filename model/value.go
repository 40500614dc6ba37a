package model

import (
	"strings"

	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/primitive"
	"github.com/gofhir/phenomapper/terminology"
)

// DataFieldValue is the value of one field in one row. A nil Value means
// the cell was empty.
type DataFieldValue struct {
	RowNo int
	Field DataField
	Value any
}

// FieldValue returns the wrapped value.
func (v DataFieldValue) FieldValue() any {
	return v.Value
}

// Validate reports whether the value is admitted by the field.
func (v DataFieldValue) Validate() bool {
	return v.Err() == nil
}

// Err explains why the value is not admitted, or returns nil.
func (v DataFieldValue) Err() error {
	if v.Value == nil {
		if v.Field.Required {
			return &issue.Error{
				Code:        issue.CodeMissingRequiredField,
				Diagnostics: "required field " + v.Field.ID + " has no value",
				Row:         v.RowNo,
				Field:       v.Field.ID,
			}
		}
		return nil
	}
	if !v.Field.ValueSet.Admits(v.Value) {
		return &issue.Error{
			Code:        issue.CodeNotInValueSet,
			Diagnostics: "value " + formatValue(v.Value) + " is not in value set " + v.Field.ValueSet.String(),
			Row:         v.RowNo,
			Field:       v.Field.ID,
		}
	}
	return nil
}

// ParseFunc turns the text of a cell into a value for field f.
type ParseFunc func(f DataField, cell string) any

// CellParser returns the default ParseFunc for the given code systems and
// day/month order.
func CellParser(resources []*terminology.CodeSystem, first date.Order) ParseFunc {
	return func(f DataField, cell string) any {
		return ParseCell(f, cell, resources, first)
	}
}

// ParseCell infers the value of a cell. An empty cell is nil. The inferred
// value is preferred when the field admits it; otherwise the plain
// primitive reading, then the raw text are tried before giving back the
// inferred value for the caller to reject.
func ParseCell(f DataField, cell string, resources []*terminology.CodeSystem, first date.Order) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	v, _ := datatype.ParseValueOrder(cell, resources, first)
	if f.ValueSet.Admits(v) {
		return v
	}
	if p := primitive.Parse(cell); f.ValueSet.Admits(p) {
		return p
	}
	if f.ValueSet.Admits(cell) {
		return cell
	}
	return v
}
