package model

import (
	"fmt"

	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/terminology"
	"github.com/gofhir/phenomapper/valueset"
)

// DataField is a single column of a data model.
type DataField struct {
	Name          string
	ID            string
	ValueSet      valueset.ValueSet
	Description   string
	Section       string
	Required      bool
	Specification string
	Ordinal       string
}

// FieldOption configures a DataField.
type FieldOption func(*DataField)

// WithID sets an explicit identifier instead of deriving one from the name.
func WithID(id string) FieldOption {
	return func(f *DataField) { f.ID = id }
}

// WithDescription sets the field description.
func WithDescription(desc string) FieldOption {
	return func(f *DataField) { f.Description = desc }
}

// WithSection sets the section the field belongs to.
func WithSection(section string) FieldOption {
	return func(f *DataField) { f.Section = section }
}

// WithRequired sets whether a value must be present. Fields are required
// by default.
func WithRequired(required bool) FieldOption {
	return func(f *DataField) { f.Required = required }
}

// WithSpecification keeps the free text type specification the field was
// read from.
func WithSpecification(spec string) FieldOption {
	return func(f *DataField) { f.Specification = spec }
}

// WithOrdinal sets the section number of the field.
func WithOrdinal(ordinal string) FieldOption {
	return func(f *DataField) { f.Ordinal = ordinal }
}

// NewField creates a field. spec is coerced into a value set; it may be a
// datatype.Kind, a []datatype.Kind, a *terminology.CodeSystem, a []any of
// elements or a valueset.ValueSet. A nil spec admits any value.
func NewField(name string, spec any, opts ...FieldOption) (DataField, error) {
	f := DataField{Name: name, Required: true}
	for _, opt := range opts {
		opt(&f)
	}

	if f.ID == "" {
		id, err := DeriveID(name)
		if err != nil {
			return DataField{}, err
		}
		f.ID = id
	} else if err := ValidateID(f.ID); err != nil {
		return DataField{}, err
	}

	vs, err := coerceValueSet(spec, f.ID)
	if err != nil {
		return DataField{}, err
	}
	f.ValueSet = vs
	return f, nil
}

// MustField is like NewField but panics on error.
func MustField(name string, spec any, opts ...FieldOption) DataField {
	f, err := NewField(name, spec, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func coerceValueSet(spec any, id string) (valueset.ValueSet, error) {
	switch s := spec.(type) {
	case nil:
		return valueset.Any(), nil
	case valueset.ValueSet:
		return s, nil
	case *valueset.ValueSet:
		if s == nil {
			return valueset.Any(), nil
		}
		return *s, nil
	case datatype.Kind:
		return valueset.New(id, "", s), nil
	case []datatype.Kind:
		elems := make([]any, len(s))
		for i, k := range s {
			elems[i] = k
		}
		return valueset.New(id, "", elems...), nil
	case *terminology.CodeSystem:
		return valueset.New(id, "", s), nil
	case []any:
		return valueset.New(id, "", s...), nil
	case []string:
		elems := make([]any, len(s))
		for i, v := range s {
			elems[i] = v
		}
		return valueset.New(id, "", elems...), nil
	default:
		return valueset.ValueSet{}, issue.Errorf(issue.CodeUnrecognizedType,
			"field %q: cannot build a value set from %T", id, spec)
	}
}

// Equal compares id, value set and required-ness.
func (f DataField) Equal(other DataField) bool {
	return f.ID == other.ID && f.Required == other.Required && f.ValueSet.Equal(other.ValueSet)
}

// String returns a short description of the field.
func (f DataField) String() string {
	req := "optional"
	if f.Required {
		req = "required"
	}
	return fmt.Sprintf("%s (%s, %s) %s", f.ID, f.Name, req, f.ValueSet)
}
