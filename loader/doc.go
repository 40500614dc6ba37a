// Package loader reads data model schemas and the tables validated
// against them.
//
// Schemas come from a delimited table or Excel worksheet with one field
// per row (the conventional columns are data_field_name,
// data_model_section, description, data_type, required, specification and
// ordinal) or from a YAML file:
//
//	name: cohort
//	resources: [HP, SCT]
//	fields:
//	  - name: Age
//	    type: int
//	  - name: Sex
//	    values: [male, female]
//	    required: false
//	constraints:
//	  - key: age-1
//	    expression: age >= 0
//
// Tables come from CSV/TSV files, Excel workbooks (excelize) or from a SQL
// query through sqlx.
package loader
