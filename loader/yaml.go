package loader

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/terminology"
	"github.com/gofhir/phenomapper/valueset"
)

// Schema is a data model together with the column mapping used to load
// tables into it.
type Schema struct {
	Model   *model.DataModel
	Columns map[string]string
}

// ColumnMapping returns the "<id>_column" mapping for every field. Fields
// without an explicit column map to a header equal to their name.
func (s *Schema) ColumnMapping() map[string]string {
	out := make(map[string]string, s.Model.Len())
	for _, f := range s.Model.Fields() {
		key := f.ID + model.ColumnSuffix
		if col, ok := s.Columns[key]; ok && col != "" {
			out[key] = col
			continue
		}
		out[key] = f.Name
	}
	return out
}

// SchemaFile is the YAML form of a schema.
type SchemaFile struct {
	Name        string            `yaml:"name"`
	Resources   []string          `yaml:"resources,omitempty"`
	Fields      []FieldSpec       `yaml:"fields"`
	Constraints []InvariantSpec   `yaml:"constraints,omitempty"`
	Columns     map[string]string `yaml:"columns,omitempty"`
}

// FieldSpec declares one field. Type is a value set declaration such as
// "int" or "hp, str"; Values lists additional literal elements.
type FieldSpec struct {
	Name          string `yaml:"name"`
	ID            string `yaml:"id,omitempty"`
	Type          string `yaml:"type,omitempty"`
	Values        []any  `yaml:"values,omitempty"`
	Required      *bool  `yaml:"required,omitempty"`
	Section       string `yaml:"section,omitempty"`
	Description   string `yaml:"description,omitempty"`
	Specification string `yaml:"specification,omitempty"`
	Ordinal       string `yaml:"ordinal,omitempty"`
	Column        string `yaml:"column,omitempty"`
}

// InvariantSpec declares a row constraint.
type InvariantSpec struct {
	Key        string `yaml:"key"`
	Expression string `yaml:"expression"`
	Human      string `yaml:"human,omitempty"`
	Severity   string `yaml:"severity,omitempty"`
}

// ParseYAMLSchema parses a YAML schema. Resource names are resolved
// against pool by prefix, name or synonym; without a resources list every
// code system of pool is available.
func ParseYAMLSchema(data []byte, pool []*terminology.CodeSystem, level compliance.Level) (*Schema, error) {
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return sf.Build(pool, level)
}

// ReadYAMLSchema reads a YAML schema from r.
func ReadYAMLSchema(r io.Reader, pool []*terminology.CodeSystem, level compliance.Level) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return ParseYAMLSchema(data, pool, level)
}

// LoadYAMLSchemaFile reads a YAML schema from path.
func LoadYAMLSchemaFile(path string, pool []*terminology.CodeSystem, level compliance.Level) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseYAMLSchema(data, pool, level)
}

// Build turns the declarations into a Schema.
func (sf *SchemaFile) Build(pool []*terminology.CodeSystem, level compliance.Level) (*Schema, error) {
	resources, err := resolveResources(sf.Resources, pool, level)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]string, len(sf.Columns)+len(sf.Fields))
	for k, v := range sf.Columns {
		columns[k] = v
	}

	fields := make([]model.DataField, 0, len(sf.Fields))
	for i, fs := range sf.Fields {
		f, err := fs.build(resources, level)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, fs.Name, err)
		}
		if fs.Column != "" {
			columns[f.ID+model.ColumnSuffix] = fs.Column
		}
		fields = append(fields, f)
	}

	invariants := make([]model.Invariant, 0, len(sf.Constraints))
	for _, c := range sf.Constraints {
		sev := issue.Severity(strings.ToLower(strings.TrimSpace(c.Severity)))
		if sev == "" {
			sev = issue.SeverityError
		}
		if sev != issue.SeverityError && sev != issue.SeverityWarning {
			return nil, fmt.Errorf("constraint %s: unknown severity %q", c.Key, c.Severity)
		}
		invariants = append(invariants, model.Invariant{Key: c.Key, Expression: c.Expression, Human: c.Human, Severity: sev})
	}

	m, err := model.NewDataModel(sf.Name, fields, resources, model.WithConstraints(invariants...))
	if err != nil {
		return nil, err
	}
	return &Schema{Model: m, Columns: columns}, nil
}

func (fs FieldSpec) build(resources []*terminology.CodeSystem, level compliance.Level) (model.DataField, error) {
	id := fs.ID
	if id == "" {
		derived, err := model.DeriveID(fs.Name)
		if err != nil {
			return model.DataField{}, err
		}
		id = derived
	}

	var vs valueset.ValueSet
	switch {
	case strings.TrimSpace(fs.Type) != "":
		parsed, err := valueset.Parse(fs.Type, id, fs.Description, resources, level)
		if err != nil {
			return model.DataField{}, err
		}
		vs = parsed
	case len(fs.Values) == 0:
		vs = valueset.Any()
	}
	if len(fs.Values) > 0 {
		elems := make([]any, 0, len(fs.Values))
		for _, v := range fs.Values {
			elems = append(elems, literal(v, resources))
		}
		vs = vs.Extend(id, valueset.New(id, "", elems...), fs.Description)
	}

	required := true
	if fs.Required != nil {
		required = *fs.Required
	}
	spec := fs.Specification
	if spec == "" {
		spec = fs.Type
	}
	return model.NewField(fs.Name, vs,
		model.WithID(id),
		model.WithRequired(required),
		model.WithSection(fs.Section),
		model.WithDescription(fs.Description),
		model.WithSpecification(spec),
		model.WithOrdinal(fs.Ordinal),
	)
}

// literal converts a decoded YAML scalar into a value set element.
func literal(v any, resources []*terminology.CodeSystem) any {
	switch x := v.(type) {
	case string:
		parsed, _ := datatype.ParseValue(x, resources)
		return parsed
	case time.Time:
		return date.FromTime(x)
	case int64:
		return int(x)
	case uint64:
		return int(x)
	default:
		return v
	}
}

func resolveResources(names []string, pool []*terminology.CodeSystem, level compliance.Level) ([]*terminology.CodeSystem, error) {
	if len(names) == 0 {
		return pool, nil
	}
	out := make([]*terminology.CodeSystem, 0, len(names))
	for _, name := range names {
		cs := terminology.ByPrefix(name, pool)
		if cs != nil {
			out = append(out, cs)
			continue
		}
		err := issue.Errorf(issue.CodeUnresolvedCodeSystem, "unknown code system %q in schema resources", name)
		if level.IsStrict() {
			return nil, err
		}
		logger.Issue(issue.Issue{Severity: issue.SeverityWarning, Code: issue.CodeUnresolvedCodeSystem, Diagnostics: err.Error(), Row: -1})
	}
	return out, nil
}

// MarshalSchema renders a data model and column mapping as YAML. Value
// sets are written through their field specification.
func MarshalSchema(s *Schema) ([]byte, error) {
	sf := SchemaFile{Name: s.Model.Name, Columns: s.Columns}
	for _, cs := range s.Model.Resources {
		sf.Resources = append(sf.Resources, cs.NamespacePrefix)
	}
	for _, f := range s.Model.Fields() {
		required := f.Required
		sf.Fields = append(sf.Fields, FieldSpec{
			Name:          f.Name,
			ID:            f.ID,
			Type:          f.Specification,
			Required:      &required,
			Section:       f.Section,
			Description:   f.Description,
			Specification: f.Specification,
			Ordinal:       f.Ordinal,
		})
	}
	for _, inv := range s.Model.Constraints {
		sf.Constraints = append(sf.Constraints, InvariantSpec{
			Key: inv.Key, Expression: inv.Expression, Human: inv.Human, Severity: string(inv.Severity),
		})
	}
	return yaml.Marshal(&sf)
}
