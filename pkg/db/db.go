// Package db defines the warehouse interfaces and the Google Sheets backed
// implementation. Reference tables are hand-maintained tabs; derived work logs
// live in a SheetsSQL table.
package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/sheetssql"
	"github.com/genf/workreport/pkg/utils/logging"
)

// DB implements Database on top of a spreadsheet
type DB struct {
	ssql   *sheetssql.DB
	logger *zap.Logger
}

// Schema is the SheetsSQL schema of the tables this package writes
func Schema() (*sheetssql.Schema, error) {
	return sheetssql.SchemaFromModels(StoredWorkLog{})
}

// NewDB opens the warehouse spreadsheet, creating the derived work log tab if needed
func NewDB(ctx context.Context, client sheetssql.SheetsClient, spreadsheetID string, logger *zap.Logger) (*DB, error) {
	schema, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	ssql, err := sheetssql.NewDB(ctx, client, spreadsheetID, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse spreadsheet: %w", err)
	}
	return &DB{ssql: ssql, logger: logging.OrNop(logger)}, nil
}

func readReference[T any](ctx context.Context, d *DB, tab string, parse func([]string, [][]any) (T, error)) (T, error) {
	var zero T
	headers, rows, err := d.ssql.ReadTable(ctx, tab)
	if err != nil {
		return zero, fmt.Errorf("failed to read %s: %w", tab, err)
	}
	out, err := parse(headers, rows)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", tab, err)
	}
	d.logger.Debug("Read reference table",
		zap.String(logging.FieldSource, tab),
		zap.Int(logging.FieldRows, len(rows)))
	return out, nil
}

func (d *DB) GetRates(ctx context.Context) (model.RateTable, error) {
	return readReference(ctx, d, TableRates, ingest.RatesFromTable)
}

func (d *DB) GetCampRates(ctx context.Context) (model.CampRateTable, error) {
	return readReference(ctx, d, TableCampRates, ingest.CampRatesFromTable)
}

func (d *DB) GetYearlyMemberCounts(ctx context.Context) ([]model.YearlyMemberCount, error) {
	return readReference(ctx, d, TableYearlyCounts, ingest.YearlyCountsFromTable)
}

func (d *DB) GetSeasonalMemberCounts(ctx context.Context) ([]model.SeasonalMemberCount, error) {
	return readReference(ctx, d, TableSeasonalCounts, ingest.SeasonalCountsFromTable)
}

// GetLegacyWorkLogs reads the historical work log tab and keeps the rows in r
func (d *DB) GetLegacyWorkLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error) {
	rs, err := readReference(ctx, d, TableLegacyWorkLogs, ingest.FromTable)
	if err != nil {
		return model.RecordSet{}, err
	}
	return InRange(rs, r), nil
}

// UpsertWorkLogs writes derived rows to the derived work log tab and returns
// how many rows were written
func (d *DB) UpsertWorkLogs(ctx context.Context, rs model.RecordSet, mode WriteMode) (int, error) {
	incoming := StoredRows(rs)

	switch mode {
	case WriteReplace:
		if err := sheetssql.ReplaceModels(ctx, d.ssql, incoming); err != nil {
			return 0, fmt.Errorf("failed to replace work logs: %w", err)
		}
		return len(incoming), nil

	case WriteAppend:
		existing, err := sheetssql.GetTableAs[StoredWorkLog](ctx, d.ssql)
		if err != nil {
			return 0, fmt.Errorf("failed to read stored work logs: %w", err)
		}
		fresh := NewerThan(incoming, MaxDate(existing))
		if len(fresh) == 0 {
			return 0, nil
		}
		if err := sheetssql.InsertModels(ctx, d.ssql, fresh); err != nil {
			return 0, fmt.Errorf("failed to append work logs: %w", err)
		}
		return len(fresh), nil

	case WriteMerge:
		existing, err := sheetssql.GetTableAs[StoredWorkLog](ctx, d.ssql)
		if err != nil {
			return 0, fmt.Errorf("failed to read stored work logs: %w", err)
		}
		if err := sheetssql.ReplaceModels(ctx, d.ssql, MergeByID(existing, incoming)); err != nil {
			return 0, fmt.Errorf("failed to merge work logs: %w", err)
		}
		return len(incoming), nil
	}
	return 0, fmt.Errorf("unknown write mode %q", mode)
}
