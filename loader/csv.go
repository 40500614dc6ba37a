package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofhir/phenomapper/model"
)

type tableConfig struct {
	comma rune
	sheet string
}

// TableOption configures how tables are read.
type TableOption func(*tableConfig)

// WithComma sets the field delimiter of delimited files. The default is
// ','.
func WithComma(comma rune) TableOption {
	return func(c *tableConfig) { c.comma = comma }
}

// WithSheet selects the worksheet of a workbook. The default is the first
// sheet.
func WithSheet(name string) TableOption {
	return func(c *tableConfig) { c.sheet = name }
}

func newTableConfig(opts []TableOption) tableConfig {
	c := tableConfig{comma: ','}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// RowReader reads a table one row at a time. Blank records are skipped
// and short records are padded to the header width.
type RowReader struct {
	read   func() ([]string, error)
	header []string
	rows   int
}

// NewRowReader reads the header of the delimited table r and returns a
// reader positioned at the first data row.
func NewRowReader(r io.Reader, opts ...TableOption) (*RowReader, error) {
	cfg := newTableConfig(opts)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = cfg.comma
	return newRowReader(cr.Read)
}

func newRowReader(read func() ([]string, error)) (*RowReader, error) {
	header, err := read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty table: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return &RowReader{read: read, header: header}, nil
}

// Header returns the header row.
func (rr *RowReader) Header() []string {
	return rr.header
}

// Next returns the next data row, or io.EOF after the last one.
func (rr *RowReader) Next() ([]string, error) {
	for {
		record, err := rr.read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rr.rows, err)
		}
		if isBlank(record) {
			continue
		}
		for len(record) < len(rr.header) {
			record = append(record, "")
		}
		rr.rows++
		return record, nil
	}
}

// ReadTable reads a delimited table whose first record is the header.
func ReadTable(r io.Reader, opts ...TableOption) (model.Table, error) {
	rr, err := NewRowReader(r, opts...)
	if err != nil {
		return model.Table{}, err
	}
	return collect(rr)
}

func collect(rr *RowReader) (model.Table, error) {
	table := model.Table{Header: rr.Header()}
	for {
		record, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		if err != nil {
			return model.Table{}, err
		}
		table.Rows = append(table.Rows, record)
	}
}

// OpenTableFile opens a table file for row-by-row reading. Excel
// workbooks (.xlsx, .xlsm) are read from a worksheet; files ending in .tsv
// default to tab delimited; anything else is comma separated. The caller
// closes the returned closer.
func OpenTableFile(path string, opts ...TableOption) (*RowReader, io.Closer, error) {
	if isWorkbook(path) {
		return openWorkbook(path, newTableConfig(opts))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	rr, err := NewRowReader(f, fileOptions(path, opts)...)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rr, f, nil
}

// ReadTableFile reads a whole table file, dispatching on the extension as
// OpenTableFile does.
func ReadTableFile(path string, opts ...TableOption) (model.Table, error) {
	rr, closer, err := OpenTableFile(path, opts...)
	if err != nil {
		return model.Table{}, err
	}
	defer closer.Close()

	table, err := collect(rr)
	if err != nil {
		return model.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func fileOptions(path string, opts []TableOption) []TableOption {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return append([]TableOption{WithComma('\t')}, opts...)
	}
	return opts
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
