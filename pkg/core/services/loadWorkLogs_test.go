package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/cache"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

func testRange(t *testing.T) period.DateRange {
	t.Helper()
	r, err := period.ParseDateRange("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	return r
}

func byName(rs model.RecordSet) map[string]model.WorkLog {
	out := make(map[string]model.WorkLog, rs.Len())
	for _, rec := range rs.Rows {
		out[rec.WorkerName] = rec
	}
	return out
}

func TestLoadWorkLogs_JoinsDerivesAndPrices(t *testing.T) {
	wh, live := testWarehouse(), testLive()
	sources := Sources{Warehouse: wh, Live: live}

	result, err := LoadWorkLogs(context.Background(), sources, &config.Config{}, zap.NewNop(), testRange(t))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Legacy)
	assert.Equal(t, 2, result.Live)
	require.Equal(t, 2, result.Records.Len())

	rows := byName(result.Records)
	ola := rows["Ola Nordmann"]
	assert.Equal(t, model.RoleGenf, ola.Role)
	assert.Equal(t, "ola@example.com", ola.Email, "identity comes from the profile")
	assert.Equal(t, "12345678903", ola.BankAccountNumber)
	assert.Equal(t, "24/25", ola.Season, "season is derived from the completion date")
	assert.Equal(t, 300.0, ola.Cost)
	assert.Equal(t, "bccof", ola.Group)
	assert.Equal(t, "snow removal", ola.Project)

	kari := rows["Kari"]
	assert.Equal(t, model.RoleMentor, kari.Role)
	assert.Equal(t, 400.0, kari.Cost)
	assert.Equal(t, "glenne", kari.Group)

	// the parent profile is never joined, so Per has no role and cannot be priced
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Per", result.Failures[0].WorkerName)
	var missing *model.MissingFieldError
	assert.True(t, errors.As(result.Failures[0], &missing))
}

func TestLoadWorkLogs_WarehouseOnly(t *testing.T) {
	result, err := LoadWorkLogs(context.Background(), Sources{Warehouse: testWarehouse()}, &config.Config{}, nil, period.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Live)
	assert.Equal(t, 1, result.Records.Len())
}

func TestLoadWorkLogs_ReadsThroughCache(t *testing.T) {
	wh, live := testWarehouse(), testLive()
	sources := Sources{Warehouse: wh, Live: live, Cache: cache.NewMemory()}
	r := testRange(t)

	first, err := LoadWorkLogs(context.Background(), sources, &config.Config{}, nil, r)
	require.NoError(t, err)
	second, err := LoadWorkLogs(context.Background(), sources, &config.Config{}, nil, r)
	require.NoError(t, err)

	assert.Equal(t, 1, wh.legacyCalls)
	assert.Equal(t, 1, wh.rateCalls)
	assert.Equal(t, 1, live.jobCalls)
	assert.Equal(t, first.Records.Len(), second.Records.Len())

	// a different range is a different cache entry
	_, err = LoadWorkLogs(context.Background(), sources, &config.Config{}, nil, period.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, wh.legacyCalls)
}

func TestLoadWorkLogs_StrictFallbackFailsUnknownSeason(t *testing.T) {
	wh := testWarehouse()
	wh.rates = model.RateTable{{Season: "23/24", Roles: map[model.Role]float64{model.RoleMentor: 180}}}

	strict, err := LoadWorkLogs(context.Background(), Sources{Warehouse: wh}, &config.Config{SeasonFallback: "strict"}, nil, period.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 0, strict.Records.Len())
	require.Len(t, strict.Failures, 1)
	var notFound *model.RateNotFoundError
	assert.True(t, errors.As(strict.Failures[0], &notFound))

	latest, err := LoadWorkLogs(context.Background(), Sources{Warehouse: wh}, &config.Config{SeasonFallback: "latest"}, nil, period.DateRange{})
	require.NoError(t, err)
	require.Equal(t, 1, latest.Records.Len())
	assert.Equal(t, 360.0, latest.Records.Rows[0].Cost)
}

func TestLoadWorkLogs_SourceError(t *testing.T) {
	wh := testWarehouse()
	wh.ratesErr = errors.New("connection refused")

	_, err := LoadWorkLogs(context.Background(), Sources{Warehouse: wh, Live: testLive()}, &config.Config{}, nil, testRange(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch rates")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLoadWorkLogs_NoWarehouse(t *testing.T) {
	_, err := LoadWorkLogs(context.Background(), Sources{}, &config.Config{}, nil, period.DateRange{})
	assert.Error(t, err)
}

func TestJoinProfiles_KeepsExistingValues(t *testing.T) {
	rs := model.NewRecordSet([]model.WorkLog{
		{WorkerID: "w1", WorkerName: "Ola", Email: "own@example.com"},
		{WorkerID: "w9", WorkerName: "Unknown"},
	}, model.ColWorkerID, model.ColWorkerName, model.ColEmail)
	profiles := []model.Member{{ID: "w1", Email: "profile@example.com", BankAccountNumber: "123"}}

	joined := joinProfiles(rs, profiles)
	require.Equal(t, 2, joined.Len())
	assert.Equal(t, "own@example.com", joined.Rows[0].Email)
	assert.Equal(t, "123", joined.Rows[0].BankAccountNumber)
	assert.Empty(t, joined.Rows[1].BankAccountNumber)
	assert.True(t, joined.Columns.Has(model.ColBankAccountNumber))
	assert.Empty(t, rs.Rows[0].BankAccountNumber, "input is not modified")
}
