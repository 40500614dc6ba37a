package model

import (
	"fmt"
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/pkg/preprocess"
)

// ColumnSuffix is appended to a field id to form its column mapping key.
const ColumnSuffix = "_column"

// Table is tabular cell text with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// Binding locates the column of every field in a table header.
type Binding struct {
	model   *DataModel
	columns []int
	issues  []issue.Issue
}

// Bind resolves a column mapping against header. Every field needs a
// "<id>_column" entry. A mapped column absent from the header is an error
// under strict compliance; under lenient compliance the field is left out
// of every row and a warning is logged.
func (m *DataModel) Bind(header []string, columns map[string]string, level compliance.Level) (*Binding, error) {
	b := &Binding{model: m, columns: make([]int, len(m.fields))}
	for i, f := range m.fields {
		name, ok := columns[f.ID+ColumnSuffix]
		if !ok {
			return nil, issue.Errorf(issue.CodeInvalidMapping, "no column mapping %q for field %q", f.ID+ColumnSuffix, f.ID)
		}
		b.columns[i] = headerIndex(header, name)
		if b.columns[i] >= 0 {
			continue
		}
		err := &issue.Error{
			Code:        issue.CodeMissingColumn,
			Diagnostics: fmt.Sprintf("column %q mapped to field %q not found", name, f.ID),
			Row:         -1,
			Field:       f.ID,
		}
		if level.IsStrict() {
			return nil, err
		}
		iss := err.Issue()
		iss.Severity = issue.SeverityWarning
		b.issues = append(b.issues, iss)
		logger.Issue(iss)
	}
	return b, nil
}

func headerIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	name = strings.TrimSpace(name)
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Model returns the bound data model.
func (b *Binding) Model() *DataModel {
	return b.model
}

// Issues returns the warnings raised while binding.
func (b *Binding) Issues() []issue.Issue {
	return append([]issue.Issue(nil), b.issues...)
}

// Values parses the cells of one row. Fields whose column is missing are
// left out.
func (b *Binding) Values(rowNo int, cells []string, parse ParseFunc) []DataFieldValue {
	values := make([]DataFieldValue, 0, len(b.columns))
	for i, col := range b.columns {
		if col < 0 {
			continue
		}
		cell := ""
		if col < len(cells) {
			cell = cells[col]
		}
		f := b.model.fields[i]
		values = append(values, DataFieldValue{RowNo: rowNo, Field: f, Value: parse(f, cell)})
	}
	return values
}

type loadConfig struct {
	parse ParseFunc
	order date.Order
}

// LoadOption configures LoadData.
type LoadOption func(*loadConfig)

// WithCellParser replaces the default cell parser.
func WithCellParser(parse ParseFunc) LoadOption {
	return func(c *loadConfig) { c.parse = parse }
}

// WithDateOrder sets how ambiguous day and month are read. Day first is
// the default.
func WithDateOrder(order date.Order) LoadOption {
	return func(c *loadConfig) { c.order = order }
}

// LoadData validates every row of table. Under strict compliance the first
// invalid row aborts the load.
func (m *DataModel) LoadData(table Table, level compliance.Level, columns map[string]string, opts ...LoadOption) (*DataSet, error) {
	cfg := loadConfig{order: date.DayFirst}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parse == nil {
		cfg.parse = CellParser(m.Resources, cfg.order)
	}

	b, err := m.Bind(table.Header, columns, level)
	if err != nil {
		return nil, err
	}

	instances := make([]*Instance, 0, len(table.Rows))
	for rowNo, cells := range table.Rows {
		inst, err := NewInstance(rowNo, m, b.Values(rowNo, cells, cfg.parse), level)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNo, err)
		}
		instances = append(instances, inst)
	}
	return NewDataSet(m, instances, level), nil
}

// DataSet is a data model together with its validated rows.
type DataSet struct {
	model     *DataModel
	instances []*Instance
	level     compliance.Level
}

// NewDataSet groups validated instances.
func NewDataSet(m *DataModel, instances []*Instance, level compliance.Level) *DataSet {
	return &DataSet{model: m, instances: instances, level: level}
}

// Model returns the data model.
func (ds *DataSet) Model() *DataModel {
	return ds.model
}

// Height returns the number of rows.
func (ds *DataSet) Height() int {
	return len(ds.instances)
}

// Width returns the number of fields.
func (ds *DataSet) Width() int {
	return ds.model.Len()
}

// Instances returns the rows.
func (ds *DataSet) Instances() []*Instance {
	return append([]*Instance(nil), ds.instances...)
}

// Valid returns the number of valid rows.
func (ds *DataSet) Valid() int {
	n := 0
	for _, inst := range ds.instances {
		if inst.Valid() {
			n++
		}
	}
	return n
}

// Table returns the field ids and one row of values per instance. Values
// of fields missing from a row are nil.
func (ds *DataSet) Table() (header []string, rows [][]any) {
	return ds.model.FieldIDs(), ds.rows(len(ds.instances))
}

// Head returns the first n rows of Table.
func (ds *DataSet) Head(n int) [][]any {
	return ds.rows(min(max(n, 0), len(ds.instances)))
}

func (ds *DataSet) rows(n int) [][]any {
	rows := make([][]any, n)
	for r, inst := range ds.instances[:n] {
		row := make([]any, ds.model.Len())
		for _, v := range inst.values {
			i, ok := ds.model.index[v.Field.ID]
			if !ok {
				continue
			}
			row[i] = v.Value
		}
		rows[r] = row
	}
	return rows
}

// Column returns the values of one field across the rows.
func (ds *DataSet) Column(id string) ([]any, error) {
	if _, err := ds.model.GetField(id); err != nil {
		return nil, err
	}
	col := make([]any, len(ds.instances))
	for r, inst := range ds.instances {
		if v, ok := inst.Value(id); ok {
			col[r] = v.Value
		}
	}
	return col, nil
}

// Preprocess rewrites field values in place. A single field accepts a
// preprocess.Dict or preprocess.Func; several fields need a
// preprocess.MultiFunc, called once per row with the values of all of
// them. Values that cannot be mapped are kept and a warning is logged.
// Rows are not revalidated.
func (ds *DataSet) Preprocess(ids []string, mapping any, kwargs map[string]any) error {
	if len(ids) == 0 {
		return issue.Errorf(issue.CodeInvalidMapping, "no fields given to preprocess")
	}
	for _, id := range ids {
		if _, err := ds.model.GetField(id); err != nil {
			return err
		}
	}
	if len(ids) == 1 {
		return ds.preprocessField(ids[0], mapping, kwargs)
	}
	return ds.preprocessFields(ids, mapping, kwargs)
}

func (ds *DataSet) preprocessField(id string, mapping any, kwargs map[string]any) error {
	for _, inst := range ds.instances {
		v, ok := inst.Value(id)
		if !ok {
			continue
		}
		out, err := preprocess.Apply(v.Value, mapping, kwargs)
		if err != nil {
			if issue.CodeOf(err) == issue.CodeInvalidMapping {
				return err
			}
			warnPreprocess(inst.RowNo, id, err)
			continue
		}
		inst.setValue(id, out)
	}
	return nil
}

func (ds *DataSet) preprocessFields(ids []string, mapping any, kwargs map[string]any) error {
	for _, inst := range ds.instances {
		values := make(map[string]any, len(ids))
		for _, id := range ids {
			if v, ok := inst.Value(id); ok {
				values[id] = v.Value
			}
		}
		out, err := preprocess.ApplyMulti(values, mapping, kwargs)
		if err != nil {
			if issue.CodeOf(err) == issue.CodeInvalidMapping {
				return err
			}
			warnPreprocess(inst.RowNo, strings.Join(ids, ","), err)
			continue
		}
		for _, id := range ids {
			if nv, ok := out[id]; ok {
				inst.setValue(id, nv)
			}
		}
	}
	return nil
}

func warnPreprocess(row int, field string, err error) {
	logger.Issue(issue.Issue{
		Severity:    issue.SeverityWarning,
		Code:        issue.CodeInvalidMapping,
		Diagnostics: err.Error(),
		Row:         row,
		Field:       field,
	})
}
