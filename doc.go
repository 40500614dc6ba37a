// Package phenomapper validates tabular clinical datasets against a typed
// data model.
//
// A data model lists fields with permissible value sets, which mix
// primitives, dates and codes from external code systems such as HPO or
// SNOMED CT. Spreadsheet cells are free text; their values are inferred
// and checked against the value set of their field.
//
// # Quick Start
//
//	m, err := model.NewDataModel("cohort", []model.DataField{
//	    model.MustField("Pseudonym", datatype.KindString),
//	    model.MustField("Age", datatype.KindInt),
//	    model.MustField("Phenotype", terminology.HPO, model.WithRequired(false)),
//	}, terminology.Builtin())
//
//	v, err := phenomapper.New(m, phenomapper.WithCompliance(compliance.Strict))
//	table, err := loader.ReadTableFile("cohort.csv")
//	res, err := v.ValidateTable(ctx, table, map[string]string{
//	    "pseudonym_column": "Patient ID",
//	    "age_column":       "Age",
//	    "phenotype_column": "HPO",
//	})
//
// # Compliance
//
// Every parser shares one strictness policy. Lenient compliance logs a
// warning and keeps a best-effort value; strict compliance returns the
// first problem as an *issue.Error, matched with errors.Is against the
// issue.ErrX sentinels.
//
// # Packages
//
//   - pkg/primitive, pkg/date, pkg/datatype: cell and type parsing
//   - terminology: code systems, codings and the code system registry
//   - valueset: permissible values of a field
//   - model: fields, data models, instances and data sets
//   - constraint: FHIRPath row invariants
//   - worker: parallel row validation
//   - loader: CSV, YAML and SQL sources
package phenomapper
