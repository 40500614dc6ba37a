package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/terminology"
	"github.com/gofhir/phenomapper/valueset"
)

// SchemaColumns maps each field attribute to a column of a schema table.
// An empty entry leaves the attribute unset.
type SchemaColumns struct {
	Name          string `yaml:"name" mapstructure:"name"`
	Section       string `yaml:"section" mapstructure:"section"`
	Description   string `yaml:"description" mapstructure:"description"`
	DataType      string `yaml:"data_type" mapstructure:"data_type"`
	Required      string `yaml:"required" mapstructure:"required"`
	Specification string `yaml:"specification" mapstructure:"specification"`
	Ordinal       string `yaml:"ordinal" mapstructure:"ordinal"`
}

// DefaultSchemaColumns returns the conventional schema column names.
func DefaultSchemaColumns() SchemaColumns {
	return SchemaColumns{
		Name:          "data_field_name",
		Section:       "data_model_section",
		Description:   "description",
		DataType:      "data_type",
		Required:      "required",
		Specification: "specification",
		Ordinal:       "ordinal",
	}
}

// SchemaOptions controls how a schema table becomes a data model.
type SchemaOptions struct {
	// Name of the resulting data model.
	Name string

	// Resources are the code systems value sets may refer to.
	Resources []*terminology.CodeSystem

	// Columns maps field attributes to schema columns. The zero value
	// means DefaultSchemaColumns.
	Columns SchemaColumns

	// ParseValueSets parses the data type column into value sets.
	// Otherwise every field admits any value and keeps the declaration
	// as its value set description.
	ParseValueSets bool

	// Level applies to value set parsing.
	Level compliance.Level

	// RemoveLineBreaks replaces line breaks in text attributes by spaces.
	RemoveLineBreaks bool

	// ParseOrdinals splits a leading section number off the field name.
	ParseOrdinals bool
}

// ReadSchema builds a data model from a schema table with one field per
// row. Mapped columns missing from the table are ignored; if none remain
// the mapping is rejected.
func ReadSchema(table model.Table, opts SchemaOptions) (*model.DataModel, error) {
	cols := opts.Columns
	if cols == (SchemaColumns{}) {
		cols = DefaultSchemaColumns()
	}

	idx := map[string]int{}
	found := 0
	for attr, name := range cols.attributes() {
		idx[attr] = -1
		if name == "" {
			continue
		}
		for i, h := range table.Header {
			if strings.TrimSpace(h) == name {
				idx[attr] = i
				found++
				break
			}
		}
	}
	if found == 0 {
		return nil, issue.Errorf(issue.CodeInvalidMapping, "none of the schema columns %v appear in header %v", cols, table.Header)
	}
	if idx["name"] < 0 {
		return nil, issue.Errorf(issue.CodeInvalidMapping, "schema column %q for field names not found", cols.Name)
	}

	fields := make([]model.DataField, 0, len(table.Rows))
	for rowNo, row := range table.Rows {
		cell := func(attr string) string {
			i := idx[attr]
			if i < 0 || i >= len(row) {
				return ""
			}
			v := strings.TrimSpace(row[i])
			if opts.RemoveLineBreaks {
				v = removeLineBreaks(v)
			}
			return v
		}

		name := cell("name")
		if name == "" {
			logger.Warn("schema row %d has no field name, skipping", rowNo)
			continue
		}
		ordinal := cell("ordinal")
		if opts.ParseOrdinals {
			if o, rest := model.ParseOrdinal(name); o != "" {
				ordinal, name = o, rest
			}
		}

		id, err := model.DeriveID(name)
		if err != nil {
			return nil, fmt.Errorf("schema row %d: %w", rowNo, err)
		}
		typeText := cell("data_type")
		var vs valueset.ValueSet
		if opts.ParseValueSets {
			vs, err = valueset.Parse(typeText, id, typeText, opts.Resources, opts.Level)
			if err != nil {
				return nil, fmt.Errorf("schema row %d (%s): %w", rowNo, name, err)
			}
		} else {
			vs = valueset.Any()
			vs.Name, vs.Description = id, typeText
		}

		f, err := model.NewField(name, vs,
			model.WithID(id),
			model.WithSection(cell("section")),
			model.WithDescription(cell("description")),
			model.WithRequired(parseRequired(cell("required"))),
			model.WithSpecification(cell("specification")),
			model.WithOrdinal(ordinal),
		)
		if err != nil {
			return nil, fmt.Errorf("schema row %d: %w", rowNo, err)
		}
		fields = append(fields, f)
	}

	return model.NewDataModel(opts.Name, fields, opts.Resources)
}

// ReadSchemaFile reads a schema table from path, a delimited file or an
// Excel workbook.
func ReadSchemaFile(path string, opts SchemaOptions, tableOpts ...TableOption) (*model.DataModel, error) {
	table, err := ReadTableFile(path, tableOpts...)
	if err != nil {
		return nil, err
	}
	m, err := ReadSchema(table, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadSchemaCSV reads a comma separated schema table from r.
func ReadSchemaCSV(r io.Reader, opts SchemaOptions) (*model.DataModel, error) {
	table, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return ReadSchema(table, opts)
}

func (c SchemaColumns) attributes() map[string]string {
	return map[string]string{
		"name":          c.Name,
		"section":       c.Section,
		"description":   c.Description,
		"data_type":     c.DataType,
		"required":      c.Required,
		"specification": c.Specification,
		"ordinal":       c.Ordinal,
	}
}

func removeLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

// parseRequired reads the required column. Empty and negative answers are
// false; anything else is true.
func parseRequired(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "f", "no", "n", "0", "optional":
		return false
	default:
		return true
	}
}

// OpenSchema opens path, reading YAML schemas by extension and treating
// anything else as a delimited table or Excel workbook.
func OpenSchema(path string, opts SchemaOptions) (*Schema, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open schema %s: %w", path, err)
		}
		defer f.Close()
		s, err := ReadYAMLSchema(f, opts.Resources, opts.Level)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	}
	m, err := ReadSchemaFile(path, opts)
	if err != nil {
		return nil, err
	}
	return &Schema{Model: m}, nil
}
