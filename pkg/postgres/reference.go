package postgres

import (
	"context"
	"fmt"

	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/db"
)

func (d *DB) readReference(ctx context.Context, table string) ([]string, [][]any, error) {
	return d.queryTable(ctx, table, fmt.Sprintf("SELECT * FROM %s ORDER BY 1", pgxIdent(table)))
}

// GetRates retrieves the season rate table
func (d *DB) GetRates(ctx context.Context) (model.RateTable, error) {
	headers, rows, err := d.readReference(ctx, db.TableRates)
	if err != nil {
		return nil, err
	}
	return ingest.RatesFromTable(headers, rows)
}

// GetCampRates retrieves per-year camp prices
func (d *DB) GetCampRates(ctx context.Context) (model.CampRateTable, error) {
	headers, rows, err := d.readReference(ctx, db.TableCampRates)
	if err != nil {
		return nil, err
	}
	return ingest.CampRatesFromTable(headers, rows)
}

// GetYearlyMemberCounts retrieves registered members per birth year
func (d *DB) GetYearlyMemberCounts(ctx context.Context) ([]model.YearlyMemberCount, error) {
	headers, rows, err := d.readReference(ctx, db.TableYearlyCounts)
	if err != nil {
		return nil, err
	}
	return ingest.YearlyCountsFromTable(headers, rows)
}

// GetSeasonalMemberCounts retrieves registered members per season and role
func (d *DB) GetSeasonalMemberCounts(ctx context.Context) ([]model.SeasonalMemberCount, error) {
	headers, rows, err := d.readReference(ctx, db.TableSeasonalCounts)
	if err != nil {
		return nil, err
	}
	return ingest.SeasonalCountsFromTable(headers, rows)
}
