package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/utils/logging"
)

// queryTable runs sql and returns the result as a header row plus value rows,
// the same shape the spreadsheet reader produces
func (d *DB) queryTable(ctx context.Context, source, sql string, args ...any) ([]string, [][]any, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s: %w", source, err)
	}
	defer rows.Close()

	headers, values, err := collectTable(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	d.logger.Debug("Queried table",
		zap.String(logging.FieldSource, source),
		zap.Int(logging.FieldRows, len(values)))
	return headers, values, nil
}

func collectTable(rows pgx.Rows) ([]string, [][]any, error) {
	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return headers, out, nil
}

// normalizeValue turns pgx decoded values into the plain types the ingest
// coercions understand
func normalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Text:
		if !x.Valid {
			return nil
		}
		return x.String
	}
	return v
}
