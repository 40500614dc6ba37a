// Package model describes tabular datasets as a data model of fields with
// permissible value sets, and validates spreadsheet rows against it.
//
// A DataField is created from a human readable name and a type
// specification:
//
//	age, _ := model.NewField("Age at diagnosis", datatype.KindInt)
//	sex, _ := model.NewField("Sex", []any{"male", "female"}, model.WithRequired(false))
//	m, _ := model.NewDataModel("cohort", []model.DataField{age, sex}, terminology.Builtin())
//
// Rows are bound to fields through a column mapping whose keys are
// "<field id>_column".
package model
