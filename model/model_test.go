package model

import (
	"errors"
	"testing"

	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/terminology"
	"github.com/gofhir/phenomapper/valueset"
)

func init() {
	logger.Disable()
}

func testModel(t *testing.T) *DataModel {
	t.Helper()
	fields := []DataField{
		MustField("Pseudonym", datatype.KindString),
		MustField("Age", datatype.KindInt),
		MustField("Date of Birth", datatype.KindDate, WithRequired(false)),
		MustField("Sex", []any{"male", "female"}, WithRequired(false)),
		MustField("Phenotype", terminology.HPO, WithRequired(false)),
	}
	m, err := NewDataModel("cohort", fields, terminology.Builtin())
	if err != nil {
		t.Fatalf("NewDataModel() error: %v", err)
	}
	return m
}

func TestNewField(t *testing.T) {
	f, err := NewField("1.1. Pseudonym", datatype.KindString, WithOrdinal("1.1"), WithSection("Identity"))
	if err != nil {
		t.Fatalf("NewField() error: %v", err)
	}
	if f.ID != "_1_1_pseudonym" {
		t.Errorf("ID = %q", f.ID)
	}
	if !f.Required {
		t.Error("fields should be required by default")
	}
	if f.Ordinal != "1.1" || f.Section != "Identity" {
		t.Errorf("Ordinal/Section = %q/%q", f.Ordinal, f.Section)
	}
	if !f.ValueSet.Admits("abc") {
		t.Error("string field should admit strings")
	}
}

func TestNewFieldSpecs(t *testing.T) {
	tests := []struct {
		name  string
		spec  any
		admit any
	}{
		{"nil", nil, 3},
		{"kind", datatype.KindFloat, 2},
		{"kinds", []datatype.Kind{datatype.KindInt, datatype.KindBool}, true},
		{"code system", terminology.HPO, terminology.Coding{System: terminology.HPO, Code: "0001250"}},
		{"elements", []any{"a", 1}, 1},
		{"strings", []string{"a", "b"}, "b"},
		{"value set", valueset.TrueFalse, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewField("x", tt.spec)
			if err != nil {
				t.Fatalf("NewField() error: %v", err)
			}
			if !f.ValueSet.Admits(tt.admit) {
				t.Errorf("value set %v should admit %v", f.ValueSet, tt.admit)
			}
		})
	}

	if _, err := NewField("x", 42); !errors.Is(err, issue.ErrUnrecognizedType) {
		t.Errorf("NewField(42) error = %v; want unrecognized-type", err)
	}
}

func TestNewFieldExplicitID(t *testing.T) {
	if _, err := NewField("Pseudonym", nil, WithID("12pseudonym")); !errors.Is(err, issue.ErrInvalidIdentifier) {
		t.Errorf("error = %v; want invalid-identifier", err)
	}
	f, err := NewField("Pseudonym", nil, WithID("pid"))
	if err != nil || f.ID != "pid" {
		t.Errorf("NewField() = %v, %v", f.ID, err)
	}
}

func TestNewDataModelDuplicate(t *testing.T) {
	fields := []DataField{
		MustField("Date of Birth", datatype.KindDate),
		MustField("date of birth", datatype.KindDate),
	}
	if _, err := NewDataModel("dup", fields, nil); !errors.Is(err, issue.ErrDuplicateFieldID) {
		t.Errorf("error = %v; want duplicate-field-id", err)
	}
}

func TestDataModelAccess(t *testing.T) {
	m := testModel(t)

	if m.Len() != 5 {
		t.Errorf("Len() = %d", m.Len())
	}
	want := []string{"pseudonym", "age", "date_of_birth", "sex", "phenotype"}
	ids := m.FieldIDs()
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("FieldIDs() = %v; want %v", ids, want)
		}
	}

	if f, ok := m.Field("age"); !ok || f.Name != "Age" {
		t.Errorf("Field(age) = %v, %v", f, ok)
	}
	if _, err := m.GetField("weight"); !errors.Is(err, issue.ErrFieldNotFound) {
		t.Errorf("GetField(weight) error = %v; want field-not-found", err)
	}
	def := MustField("Weight", datatype.KindFloat)
	if got := m.FieldOr("weight", def); got.ID != "weight" {
		t.Errorf("FieldOr() = %v", got)
	}

	n := 0
	for i, f := range m.All() {
		if f.ID != want[i] {
			t.Errorf("All()[%d] = %q", i, f.ID)
		}
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("All() should stop when yield returns false")
	}
}

func TestDataFieldEqual(t *testing.T) {
	a := MustField("Age", datatype.KindInt)
	b := MustField("age", datatype.KindInt, WithDescription("other"))
	c := MustField("Age", datatype.KindInt, WithRequired(false))
	if !a.Equal(b) {
		t.Error("fields with the same id and value set should be equal")
	}
	if a.Equal(c) {
		t.Error("required-ness should take part in equality")
	}
}
