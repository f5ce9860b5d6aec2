package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/db"
)

// workLogColumns is the column order of derived_work_logs, matching workLogValues
var workLogColumns = []string{
	"id",
	"worker_id",
	"worker_name",
	"email",
	"bank_account_number",
	"date_of_birth",
	"work_type",
	"date_completed",
	"hours_worked",
	"units_completed",
	"hourly_rate",
	"role",
	"cost",
	"season",
	"comments",
}

func pgxIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func workLogValues(r db.StoredWorkLog) []any {
	return []any{
		r.ID,
		r.WorkerID,
		r.WorkerName,
		r.Email,
		r.BankAccountNumber,
		r.DateOfBirth,
		r.WorkType,
		r.DateCompleted,
		r.HoursWorked,
		r.UnitsCompleted,
		r.HourlyRate,
		r.Role,
		r.Cost,
		r.Season,
		r.Comments,
	}
}

// upsertSQL inserts one derived row, overwriting every column of an existing row with the same id
func upsertSQL() string {
	placeholders := make([]string, len(workLogColumns))
	updates := make([]string, 0, len(workLogColumns)-1)
	for i, col := range workLogColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		pgxIdent(db.TableDerivedWorkLogs),
		strings.Join(workLogColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))
}

// GetLegacyWorkLogs retrieves historical work logs completed within r.
// A zero range returns every row.
func (d *DB) GetLegacyWorkLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error) {
	sql := fmt.Sprintf("SELECT * FROM %s", pgxIdent(db.TableLegacyWorkLogs))
	var args []any
	if !r.IsZero() {
		sql += " WHERE date_completed BETWEEN $1 AND $2"
		args = append(args, r.From, r.To)
	}
	sql += " ORDER BY date_completed"

	headers, rows, err := d.queryTable(ctx, db.TableLegacyWorkLogs, sql, args...)
	if err != nil {
		return model.RecordSet{}, err
	}
	rs, err := ingest.FromTable(headers, rows)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to parse legacy work logs: %w", err)
	}
	return rs, nil
}

// UpsertWorkLogs writes derived rows and returns how many were written
func (d *DB) UpsertWorkLogs(ctx context.Context, rs model.RecordSet, mode db.WriteMode) (int, error) {
	rows := db.StoredRows(rs)

	var (
		n   int
		err error
	)
	switch mode {
	case db.WriteReplace:
		n, err = d.replaceWorkLogs(ctx, rows)
	case db.WriteAppend:
		n, err = d.appendWorkLogs(ctx, rows)
	case db.WriteMerge:
		n, err = d.mergeWorkLogs(ctx, rows)
	default:
		return 0, fmt.Errorf("unknown write mode %q", mode)
	}
	if err != nil {
		return 0, err
	}
	d.logger.Info("Wrote derived work logs", zap.String("mode", string(mode)), zap.Int("written", n))
	return n, nil
}

func copyRows(rows []db.StoredWorkLog) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return workLogValues(rows[i]), nil
	})
}

func (d *DB) replaceWorkLogs(ctx context.Context, rows []db.StoredWorkLog) (int, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+pgxIdent(db.TableDerivedWorkLogs)); err != nil {
		return 0, fmt.Errorf("failed to truncate work logs: %w", err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{db.TableDerivedWorkLogs}, workLogColumns, copyRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy work logs: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit work logs: %w", err)
	}
	return int(n), nil
}

func (d *DB) appendWorkLogs(ctx context.Context, rows []db.StoredWorkLog) (int, error) {
	var latest *time.Time
	err := d.pool.QueryRow(ctx, "SELECT MAX(date_completed) FROM "+pgxIdent(db.TableDerivedWorkLogs)).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("failed to query latest work log: %w", err)
	}
	if latest != nil {
		rows = db.NewerThan(rows, *latest)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := d.pool.CopyFrom(ctx, pgx.Identifier{db.TableDerivedWorkLogs}, workLogColumns, copyRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to append work logs: %w", err)
	}
	return int(n), nil
}

func (d *DB) mergeWorkLogs(ctx context.Context, rows []db.StoredWorkLog) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql := upsertSQL()
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(sql, workLogValues(r)...)
	}

	results := d.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to merge work log %s: %w", rows[i].ID, err)
		}
	}
	return len(rows), nil
}
