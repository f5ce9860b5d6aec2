package db

import (
	"context"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// Table names shared by every warehouse backend
const (
	TableRates           = "rates"
	TableCampRates       = "camp_rates"
	TableYearlyCounts    = "yearly_member_count"
	TableSeasonalCounts  = "seasonal_member_count"
	TableLegacyWorkLogs  = "legacy_work_logs"
	TableDerivedWorkLogs = "derived_work_logs"
)

// ReferenceStore reads the administrator-maintained reference tables
type ReferenceStore interface {
	GetRates(ctx context.Context) (model.RateTable, error)
	GetCampRates(ctx context.Context) (model.CampRateTable, error)
	GetYearlyMemberCounts(ctx context.Context) ([]model.YearlyMemberCount, error)
	GetSeasonalMemberCounts(ctx context.Context) ([]model.SeasonalMemberCount, error)
}

// WorkLogStore reads historical work logs and persists derived ones
type WorkLogStore interface {
	GetLegacyWorkLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error)
	UpsertWorkLogs(ctx context.Context, rs model.RecordSet, mode WriteMode) (int, error)
}

// Database defines the interface for all warehouse operations.
// Both the SheetsSQL-backed db.DB and postgres.DB implement this interface.
type Database interface {
	ReferenceStore
	WorkLogStore
}
