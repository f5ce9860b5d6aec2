package services

import (
	"context"
	"sync"
	"time"

	"github.com/genf/workreport/pkg/clients/gmailclient"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/db"
)

// mockWarehouse implements WarehouseReader and WorkLogWriter
type mockWarehouse struct {
	mu sync.Mutex

	rates    model.RateTable
	camps    model.CampRateTable
	yearly   []model.YearlyMemberCount
	seasonal []model.SeasonalMemberCount
	legacy   model.RecordSet

	ratesErr  error
	legacyErr error
	upsertErr error

	rateCalls   int
	legacyCalls int
	lastRange   period.DateRange

	upserted   model.RecordSet
	upsertMode db.WriteMode
}

func (m *mockWarehouse) GetRates(context.Context) (model.RateTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateCalls++
	return m.rates, m.ratesErr
}

func (m *mockWarehouse) GetCampRates(context.Context) (model.CampRateTable, error) {
	return m.camps, nil
}

func (m *mockWarehouse) GetYearlyMemberCounts(context.Context) ([]model.YearlyMemberCount, error) {
	return m.yearly, nil
}

func (m *mockWarehouse) GetSeasonalMemberCounts(context.Context) ([]model.SeasonalMemberCount, error) {
	return m.seasonal, nil
}

func (m *mockWarehouse) GetLegacyWorkLogs(_ context.Context, r period.DateRange) (model.RecordSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legacyCalls++
	m.lastRange = r
	return m.legacy, m.legacyErr
}

func (m *mockWarehouse) UpsertWorkLogs(_ context.Context, rs model.RecordSet, mode db.WriteMode) (int, error) {
	m.upserted = rs
	m.upsertMode = mode
	return rs.Len(), m.upsertErr
}

type mockLive struct {
	mu       sync.Mutex
	jobs     model.RecordSet
	profiles []model.Member
	jobCalls int
}

func (m *mockLive) JobLogs(context.Context, period.DateRange) (model.RecordSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobCalls++
	return m.jobs, nil
}

func (m *mockLive) Profiles(context.Context) ([]model.Member, error) {
	return m.profiles, nil
}

type mockTableWriter struct {
	spreadsheetID string
	tab           string
	headers       []string
	rows          [][]any
}

func (m *mockTableWriter) WriteTable(_ context.Context, spreadsheetID, tab string, headers []string, rows [][]any) error {
	m.spreadsheetID, m.tab, m.headers, m.rows = spreadsheetID, tab, headers, rows
	return nil
}

type mockSender struct {
	sent []gmailclient.Message
}

func (m *mockSender) Send(_ context.Context, msg gmailclient.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

// testWarehouse holds one legacy row for Kari (mentor in 24/25) and the rates
// and camp prices both review services need
func testWarehouse() *mockWarehouse {
	return &mockWarehouse{
		rates: model.RateTable{{
			Season: "24/25",
			Roles:  map[model.Role]float64{model.RoleGenf: 100, model.RoleHjelpementor: 150, model.RoleMentor: 200},
		}},
		camps: model.NewCampRateTable([]model.CampRate{
			{Year: 2024, Under18: model.CampPrices{NewYear: 1000, Spring: 2000, Summer: 3000}, Over18: model.CampPrices{NewYear: 1500, Spring: 2500, Summer: 3500}},
			{Year: 2025, Under18: model.CampPrices{NewYear: 1100, Spring: 2000, Summer: 3000}, Over18: model.CampPrices{NewYear: 1600, Spring: 2500, Summer: 3500}},
		}),
		yearly: []model.YearlyMemberCount{{BirthYear: 2009, Members: 10}, {BirthYear: 2010, Members: 12}},
		seasonal: []model.SeasonalMemberCount{
			{Season: "24/25", Counts: map[model.Role]int{model.RoleGenf: 30, model.RoleMentor: 8}},
		},
		legacy: model.NewRecordSet([]model.WorkLog{{
			ID:            "legacy-1",
			WorkerName:    "Kari",
			Email:         "kari@example.com",
			DateOfBirth:   datePtr(2005, 1, 1),
			WorkType:      "glenne_snow_removal",
			DateCompleted: day(2025, 3, 1),
			HoursWorked:   2,
			Season:        "24/25",
		}},
			model.ColID, model.ColWorkerName, model.ColEmail, model.ColDateOfBirth,
			model.ColWorkType, model.ColDateCompleted, model.ColHoursWorked, model.ColSeason),
	}
}

// testLive holds a live row for Ola, whose identity comes from his profile, and a
// row for a worker whose only profile is a parent profile
func testLive() *mockLive {
	return &mockLive{
		jobs: model.NewRecordSet([]model.WorkLog{
			{ID: "live-1", WorkerID: "w1", WorkerName: "Ola Nordmann", WorkType: "bccof_snow_removal", DateCompleted: day(2025, 3, 10), HoursWorked: 3},
			{ID: "live-2", WorkerID: "p1", WorkerName: "Per", WorkType: "bccof_snow_removal", DateCompleted: day(2025, 3, 12), HoursWorked: 1},
		},
			model.ColID, model.ColWorkerID, model.ColWorkerName, model.ColWorkType, model.ColDateCompleted, model.ColHoursWorked, model.ColUnitsCompleted),
		profiles: []model.Member{
			{ID: "w1", FirstName: "Ola", LastName: "Nordmann", Email: "ola@example.com", BankAccountNumber: "12345678903", DateOfBirth: datePtr(2009, 5, 1), Role: "member"},
			{ID: "p1", FirstName: "Per", LastName: "Foreldre", Email: "per@example.com", DateOfBirth: datePtr(1980, 1, 1), Role: model.OrgRoleParent},
		},
	}
}
