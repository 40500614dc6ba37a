package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gofhir/phenomapper/model"
)

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadXLSX reads a worksheet of the workbook r as a table whose first row
// is the header. Cells are read as displayed. WithSheet selects the sheet.
func ReadXLSX(r io.Reader, opts ...TableOption) (model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rr, rows, err := sheetReader(f, newTableConfig(opts))
	if err != nil {
		return model.Table{}, err
	}
	defer rows.Close()
	return collect(rr)
}

func openWorkbook(path string, cfg tableConfig) (*RowReader, io.Closer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	rr, rows, err := sheetReader(f, cfg)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rr, workbook{f: f, rows: rows}, nil
}

func sheetReader(f *excelize.File, cfg tableConfig) (*RowReader, *excelize.Rows, error) {
	sheet := cfg.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	read := func() ([]string, error) {
		if !rows.Next() {
			if err := rows.Error(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return rows.Columns()
	}
	rr, err := newRowReader(read)
	if err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return rr, rows, nil
}

// workbook closes the row iterator and then the file.
type workbook struct {
	f    *excelize.File
	rows *excelize.Rows
}

func (w workbook) Close() error {
	return errors.Join(w.rows.Close(), w.f.Close())
}
