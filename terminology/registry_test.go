package terminology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/phenomapper/pkg/issue"
)

func ptr(s string) *string { return &s }

func sexCodeSystem() *r4.CodeSystem {
	return &r4.CodeSystem{
		Url: ptr("http://example.org/CodeSystem/sex"),
		Concept: []r4.CodeSystemConcept{
			{
				Code:    ptr("known"),
				Display: ptr("Known"),
				Concept: []r4.CodeSystemConcept{
					{Code: ptr("male"), Display: ptr("Male")},
					{Code: ptr("female"), Display: ptr("Female")},
				},
			},
			{Code: ptr("unknown"), Display: ptr("Unknown")},
		},
	}
}

func TestRegistryLoadR4CodeSystem(t *testing.T) {
	r := NewBuiltinRegistry()

	cs, err := r.LoadR4CodeSystem(sexCodeSystem())
	if err != nil {
		t.Fatalf("LoadR4CodeSystem() error = %v", err)
	}
	if cs.NamespacePrefix != "sex" {
		t.Errorf("NamespacePrefix = %q; want sex", cs.NamespacePrefix)
	}
	if r.ByPrefix("sex") != cs {
		t.Error("new code system should be registered")
	}
	if r.CountConcepts() != 4 {
		t.Errorf("CountConcepts() = %d; want 4", r.CountConcepts())
	}

	display, ok := r.Lookup(Coding{System: cs, Code: "female"})
	if !ok || display != "Female" {
		t.Errorf("Lookup(female) = %q, %v; want Female, true", display, ok)
	}
	if _, ok := r.Lookup(Coding{System: cs, Code: "other"}); ok {
		t.Error("Lookup(other) should fail")
	}

	desc := r.Descendants(cs, "known")
	if len(desc) != 2 || desc[0] != "male" || desc[1] != "female" {
		t.Errorf("Descendants(known) = %v; want [male female]", desc)
	}

	if _, err := r.LoadR4CodeSystem(&r4.CodeSystem{}); err == nil {
		t.Error("expected error for CodeSystem without URL")
	}
}

func TestRegistryAttachesToKnownURL(t *testing.T) {
	r := NewBuiltinRegistry()
	cs, err := r.LoadR4CodeSystem(&r4.CodeSystem{
		Url:     ptr("https://omim.org"),
		Concept: []r4.CodeSystemConcept{{Code: ptr("100100"), Display: ptr("Prune belly syndrome")}},
	})
	if err != nil {
		t.Fatalf("LoadR4CodeSystem() error = %v", err)
	}
	if cs != OMIM {
		t.Errorf("concepts attached to %v; want OMIM", cs)
	}
	if !r.HasConcepts(OMIM) || r.HasConcepts(HPO) {
		t.Error("HasConcepts() mismatch")
	}
}

func TestRegistryDescribe(t *testing.T) {
	r := NewBuiltinRegistry()
	cs, _ := r.LoadR4CodeSystem(sexCodeSystem())

	c, err := r.Describe(Coding{Namespace: "SEX", Code: "male"})
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if c.System != cs || c.Display != "Male" {
		t.Errorf("Describe() = %+v", c)
	}

	if _, err := r.Describe(Coding{System: cs, Code: "other"}); !errors.Is(err, issue.ErrNotInValueSet) {
		t.Errorf("Describe(other) error = %v; want value-not-in-value-set", err)
	}
	if _, err := r.Describe(Coding{Namespace: "nope", Code: "1"}); !errors.Is(err, issue.ErrUnresolvedCodeSystem) {
		t.Errorf("Describe(nope) error = %v; want unresolved-code-system", err)
	}

	// systems without concept tables accept any code
	c, err = r.Describe(Coding{System: HPO, Code: "0001250"})
	if err != nil || c.System != HPO {
		t.Errorf("Describe(HP) = %+v, %v", c, err)
	}
}

func TestRegistryLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"CodeSystem-sex.json": `{"resourceType":"CodeSystem","url":"http://example.org/CodeSystem/sex","concept":[{"code":"male","display":"Male"}]}`,
		"CodeSystem-bad.json": `{not json`,
		"ValueSet-x.json":     `{"resourceType":"ValueSet"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	r := NewRegistry()
	stats, err := r.LoadFromDirectory(dir)
	if err != nil {
		t.Fatalf("LoadFromDirectory() error = %v", err)
	}
	if stats.CodeSystemsLoaded != 1 || stats.Errors != 1 {
		t.Errorf("stats = %+v; want 1 loaded, 1 error", stats)
	}

	if _, err := r.LoadFromDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRegistryLoadFromJSONBundle(t *testing.T) {
	data := []byte(`{"resourceType":"Bundle","entry":[
		{"resource":{"resourceType":"CodeSystem","url":"http://example.org/a","concept":[{"code":"1"}]}},
		{"resource":{"resourceType":"ValueSet","url":"http://example.org/vs"}},
		{"resource":{"resourceType":"CodeSystem"}}
	]}`)
	r := NewRegistry()
	stats, err := r.LoadFromJSON(data)
	if err != nil {
		t.Fatalf("LoadFromJSON() error = %v", err)
	}
	if stats.CodeSystemsLoaded != 1 || stats.Errors != 1 {
		t.Errorf("stats = %+v; want 1 loaded, 1 error", stats)
	}

	if _, err := r.LoadFromJSON([]byte(`{"resourceType":"Patient"}`)); err == nil {
		t.Error("expected error for unsupported resourceType")
	}
}

func TestR4Conversion(t *testing.T) {
	c := Coding{System: HPO, Namespace: "HP", Code: "0001250", Display: "Seizure"}
	rc := ToR4Coding(c)
	if rc.System == nil || *rc.System != HPO.URL || *rc.Code != "0001250" || *rc.Display != "Seizure" {
		t.Errorf("ToR4Coding() = %+v", rc)
	}
	if rc.Version != nil {
		t.Error("default version should not be exported")
	}

	back := FromR4Coding(rc, Builtin())
	if !back.Equal(c) || back.Display != "Seizure" {
		t.Errorf("FromR4Coding() = %+v; want %+v", back, c)
	}

	cc := CodeableConcept{Coding: []Coding{c}, Text: "fits"}
	rcc := ToR4CodeableConcept(cc)
	if len(rcc.Coding) != 1 || *rcc.Text != "fits" {
		t.Errorf("ToR4CodeableConcept() = %+v", rcc)
	}
	if !FromR4CodeableConcept(rcc, Builtin()).Equal(cc) {
		t.Error("CodeableConcept round trip changed the concept")
	}

	unresolved := FromR4Coding(r4.Coding{System: ptr("urn:local"), Code: ptr("x")}, Builtin())
	if unresolved.Resolved() || unresolved.Namespace != "urn:local" {
		t.Errorf("FromR4Coding(urn:local) = %+v", unresolved)
	}
}
