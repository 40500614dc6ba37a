package loader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gofhir/phenomapper/model"
)

// SQLSource reads tables from a database query.
type SQLSource struct {
	db *sqlx.DB
}

// NewSQLSource wraps an open database.
func NewSQLSource(db *sqlx.DB) *SQLSource {
	return &SQLSource{db: db}
}

// OpenSQL connects to a database. The driver must be registered by the
// caller, for example with a blank import of github.com/lib/pq.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return &SQLSource{db: db}, nil
}

// Close closes the database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Table runs query and returns its result as cell text. The column names
// form the header; NULL becomes an empty cell.
func (s *SQLSource) Table(ctx context.Context, query string, args ...any) (model.Table, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return model.Table{}, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return model.Table{}, fmt.Errorf("error reading columns: %w", err)
	}

	table := model.Table{Header: header}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return model.Table{}, fmt.Errorf("error scanning row %d: %w", len(table.Rows), err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellText(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("error iterating over rows: %w", err)
	}
	return table, nil
}

// cellText renders a scanned database value the way it would appear in a
// spreadsheet export.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
