package model

import (
	"fmt"
	"iter"
	"strings"

	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/terminology"
)

// Invariant is a FHIRPath expression evaluated against every row record.
type Invariant struct {
	Key        string
	Expression string
	Human      string
	Severity   issue.Severity
}

// DataModel is an ordered set of fields with unique ids and the code
// systems their values are drawn from.
type DataModel struct {
	Name        string
	Resources   []*terminology.CodeSystem
	Constraints []Invariant

	fields []DataField
	index  map[string]int
}

// ModelOption configures a DataModel.
type ModelOption func(*DataModel)

// WithConstraints attaches row invariants to the model.
func WithConstraints(invariants ...Invariant) ModelOption {
	return func(m *DataModel) {
		m.Constraints = append(m.Constraints, invariants...)
	}
}

// NewDataModel creates a data model. Field ids must be unique.
func NewDataModel(name string, fields []DataField, resources []*terminology.CodeSystem, opts ...ModelOption) (*DataModel, error) {
	m := &DataModel{
		Name:      name,
		Resources: append([]*terminology.CodeSystem(nil), resources...),
		fields:    make([]DataField, 0, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := m.index[f.ID]; dup {
			return nil, issue.Errorf(issue.CodeDuplicateFieldID, "duplicate field id %q (from name %q)", f.ID, f.Name)
		}
		m.index[f.ID] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Field returns the field with the given id.
func (m *DataModel) Field(id string) (DataField, bool) {
	i, ok := m.index[id]
	if !ok {
		return DataField{}, false
	}
	return m.fields[i], true
}

// GetField returns the field with the given id or a field-not-found error.
func (m *DataModel) GetField(id string) (DataField, error) {
	f, ok := m.Field(id)
	if !ok {
		return DataField{}, issue.Errorf(issue.CodeFieldNotFound, "data model %q has no field %q", m.Name, id)
	}
	return f, nil
}

// FieldOr returns the field with the given id, or def.
func (m *DataModel) FieldOr(id string, def DataField) DataField {
	if f, ok := m.Field(id); ok {
		return f
	}
	return def
}

// FieldIDs returns the field ids in order.
func (m *DataModel) FieldIDs() []string {
	ids := make([]string, len(m.fields))
	for i, f := range m.fields {
		ids[i] = f.ID
	}
	return ids
}

// Fields returns a copy of the fields in order.
func (m *DataModel) Fields() []DataField {
	return append([]DataField(nil), m.fields...)
}

// All iterates over the fields in order.
func (m *DataModel) All() iter.Seq2[int, DataField] {
	return func(yield func(int, DataField) bool) {
		for i, f := range m.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Len returns the number of fields.
func (m *DataModel) Len() int {
	return len(m.fields)
}

func (m *DataModel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DataModel(%s)", m.Name)
	for _, f := range m.fields {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}
