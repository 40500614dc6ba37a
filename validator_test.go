package phenomapper

import (
	"context"
	"errors"
	"testing"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/stream"
	"github.com/gofhir/phenomapper/terminology"
)

func init() {
	logger.Disable()
}

func cohortModel(t *testing.T, opts ...model.ModelOption) *model.DataModel {
	t.Helper()
	fields := []model.DataField{
		model.MustField("Pseudonym", datatype.KindString),
		model.MustField("Age", datatype.KindInt),
		model.MustField("Sex", []any{"male", "female"}, model.WithRequired(false)),
	}
	m, err := model.NewDataModel("cohort", fields, terminology.Builtin(), opts...)
	if err != nil {
		t.Fatalf("NewDataModel() error: %v", err)
	}
	return m
}

var cohortHeader = []string{"Pseudonym", "Age", "Sex"}

func TestValidateRecordsLenient(t *testing.T) {
	v, err := New(cohortModel(t), WithWorkerCount(4))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	rows := [][]string{
		{"p1", "34", "male"},
		{"p2", "abc", "female"},
		{"p3", "51", "other"},
		{"p4", "27", ""},
	}
	res, err := v.ValidateRecords(context.Background(), cohortHeader, rows)
	if err != nil {
		t.Fatalf("ValidateRecords() error: %v", err)
	}
	if res.Rows != 4 || res.ValidRows != 2 {
		t.Errorf("Rows/ValidRows = %d/%d; want 4/2", res.Rows, res.ValidRows)
	}
	if res.Valid || res.ErrorCount() != 2 {
		t.Errorf("Valid = %v, ErrorCount() = %d", res.Valid, res.ErrorCount())
	}
	if got := res.RowIssues(1); len(got) != 1 || got[0].Field != "age" {
		t.Errorf("RowIssues(1) = %v", got)
	}
	if res.DataSet == nil || res.DataSet.Height() != 4 {
		t.Fatalf("DataSet = %v", res.DataSet)
	}
	ages, err := res.DataSet.Column("age")
	if err != nil {
		t.Fatalf("Column() error: %v", err)
	}
	if ages[0] != 34 {
		t.Errorf("ages[0] = %v (%T); want 34", ages[0], ages[0])
	}
	if v.Metrics().RowsTotal() != 4 || v.Metrics().ErrorsTotal() != 2 {
		t.Errorf("metrics = %+v", v.Metrics().Snapshot())
	}
}

func TestValidateTableStrict(t *testing.T) {
	v, err := New(cohortModel(t), WithCompliance(compliance.Strict), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	rows := [][]string{
		{"p1", "34", "male"},
		{"p2", "40", "unknown"},
		{"p3", "51", "female"},
	}
	res, err := v.ValidateRecords(context.Background(), cohortHeader, rows)
	if err == nil {
		t.Fatal("ValidateRecords() should fail under strict compliance")
	}
	if !errors.Is(err, issue.ErrNotInValueSet) {
		t.Errorf("error = %v; want value-not-in-value-set", err)
	}
	if res == nil || res.Compliance != "strict" {
		t.Errorf("partial result = %+v", res)
	}
}

func TestValidateTableColumns(t *testing.T) {
	v, err := New(cohortModel(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	table := model.Table{
		Header: []string{"ID", "AGE_YEARS", "gender"},
		Rows:   [][]string{{"p1", "34", "male"}},
	}
	columns := map[string]string{
		"pseudonym_column": "ID",
		"age_column":       "AGE_YEARS",
		"sex_column":       "gender",
	}
	res, err := v.ValidateTable(context.Background(), table, columns)
	if err != nil {
		t.Fatalf("ValidateTable() error: %v", err)
	}
	if !res.Valid || res.ValidRows != 1 {
		t.Errorf("result = %+v", res)
	}

	delete(columns, "sex_column")
	if _, err := v.ValidateTable(context.Background(), table, columns); !errors.Is(err, issue.ErrInvalidMapping) {
		t.Errorf("missing column key: error = %v; want invalid-mapping", err)
	}
}

func TestValidateConstraints(t *testing.T) {
	adult := model.Invariant{Key: "adult", Expression: "age >= 18", Human: "Participants must be adults"}
	rows := [][]string{{"p1", "34", "male"}, {"p2", "12", "female"}}

	tests := []struct {
		name      string
		opts      []Option
		wantValid int
	}{
		{"enabled", []Option{WithConstraints(adult)}, 1},
		{"disabled", []Option{WithConstraints(adult), WithConstraintValidation(false)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(cohortModel(t), tt.opts...)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			res, err := v.ValidateRecords(context.Background(), cohortHeader, rows)
			if err != nil {
				t.Fatalf("ValidateRecords() error: %v", err)
			}
			if res.ValidRows != tt.wantValid {
				t.Errorf("ValidRows = %d; want %d (issues %v)", res.ValidRows, tt.wantValid, res.Issues)
			}
		})
	}
}

func TestNewRejectsBadConstraint(t *testing.T) {
	bad := model.Invariant{Key: "bad", Expression: "age >>> ("}
	if _, err := New(cohortModel(t, model.WithConstraints(bad))); err == nil {
		t.Error("New() should reject a malformed model invariant")
	}
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestValidateMaxIssues(t *testing.T) {
	v, err := New(cohortModel(t), WithMaxIssues(2))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	rows := make([][]string, 5)
	for i := range rows {
		rows[i] = []string{"p", "x", "other"}
	}
	res, err := v.ValidateRecords(context.Background(), cohortHeader, rows)
	if err != nil {
		t.Fatalf("ValidateRecords() error: %v", err)
	}
	if len(res.Issues) != 2 || !res.Truncated {
		t.Errorf("Issues = %d, Truncated = %v", len(res.Issues), res.Truncated)
	}
}

func TestValidateCellCache(t *testing.T) {
	v, err := New(cohortModel(t), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	rows := [][]string{{"p1", "34", "male"}, {"p2", "34", "male"}}
	if _, err := v.ValidateRecords(context.Background(), cohortHeader, rows); err != nil {
		t.Fatalf("ValidateRecords() error: %v", err)
	}
	s := v.Metrics().Snapshot()
	if s.CacheMisses != 4 || s.CacheHits != 2 {
		t.Errorf("cache hits/misses = %d/%d; want 2/4", s.CacheHits, s.CacheMisses)
	}
}

func TestValidateCancelled(t *testing.T) {
	v, err := New(cohortModel(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.ValidateRecords(ctx, cohortHeader, [][]string{{"p1", "34", "male"}}); err == nil {
		t.Error("a cancelled context should fail the run")
	}
}

func TestValidateStream(t *testing.T) {
	v, err := New(cohortModel(t), WithWorkerCount(3))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	columns := map[string]string{
		"pseudonym_column": "Pseudonym",
		"age_column":       "Age",
		"sex_column":       "Sex",
	}
	rows := [][]string{
		{"p1", "34", "male"},
		{"p2", "abc", "female"},
		{"p3", "51", ""},
	}
	results, err := v.ValidateStream(context.Background(), cohortHeader, stream.Rows(rows), columns)
	if err != nil {
		t.Fatalf("ValidateStream() error: %v", err)
	}
	s := stream.Aggregate(results)
	if s.Rows != 3 || s.ValidRows != 2 {
		t.Errorf("Rows/ValidRows = %d/%d; want 3/2", s.Rows, s.ValidRows)
	}
	if len(s.Issues[1]) != 1 {
		t.Errorf("Issues = %v", s.Issues)
	}

	if _, err := v.ValidateStream(context.Background(), cohortHeader, stream.Rows(rows), nil); !errors.Is(err, issue.ErrInvalidMapping) {
		t.Errorf("nil mapping: error = %v; want invalid-mapping", err)
	}
}

func omimRegistry(t *testing.T) *terminology.Registry {
	t.Helper()
	url, code, display := "https://omim.org/", "100100", "Prune belly syndrome"
	reg := terminology.NewBuiltinRegistry()
	if _, err := reg.LoadR4CodeSystem(&r4.CodeSystem{
		Url:     &url,
		Concept: []r4.CodeSystemConcept{{Code: &code, Display: &display}},
	}); err != nil {
		t.Fatalf("LoadR4CodeSystem() error: %v", err)
	}
	return reg
}

func TestValidateTerminology(t *testing.T) {
	fields := []model.DataField{
		model.MustField("Pseudonym", datatype.KindString),
		model.MustField("Disease", terminology.OMIM),
	}
	m, err := model.NewDataModel("diagnoses", fields, terminology.Builtin())
	if err != nil {
		t.Fatalf("NewDataModel() error: %v", err)
	}
	header := []string{"Pseudonym", "Disease"}
	rows := [][]string{{"p1", "OMIM:100100"}, {"p2", "OMIM:999999"}}

	t.Run("lenient", func(t *testing.T) {
		v, err := New(m, WithTerminology(omimRegistry(t)), WithWorkerCount(1))
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		res, err := v.ValidateRecords(context.Background(), header, rows)
		if err != nil {
			t.Fatalf("ValidateRecords() error: %v", err)
		}
		if res.ValidRows != 2 || res.WarningCount() != 1 {
			t.Errorf("ValidRows = %d, WarningCount() = %d; want 2, 1", res.ValidRows, res.WarningCount())
		}
		if got := res.RowIssues(1); len(got) != 1 || got[0].Code != issue.CodeNotInValueSet || got[0].Field != "disease" {
			t.Errorf("RowIssues(1) = %v", got)
		}
		diseases, err := res.DataSet.Column("disease")
		if err != nil {
			t.Fatalf("Column() error: %v", err)
		}
		if c, ok := diseases[0].(terminology.Coding); !ok || c.Display != "Prune belly syndrome" {
			t.Errorf("diseases[0] = %#v; want the display filled in", diseases[0])
		}
	})

	t.Run("strict", func(t *testing.T) {
		v, err := New(m, WithTerminology(omimRegistry(t)), WithCompliance(compliance.Strict), WithWorkerCount(1))
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		_, err = v.ValidateRecords(context.Background(), header, rows)
		if !errors.Is(err, issue.ErrNotInValueSet) {
			t.Errorf("error = %v; want value-not-in-value-set", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		v, err := New(m, WithWorkerCount(1))
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		res, err := v.ValidateRecords(context.Background(), header, rows)
		if err != nil || res.ValidRows != 2 || len(res.Issues) != 0 {
			t.Errorf("result = %+v, %v; want two clean rows", res, err)
		}
	})
}
