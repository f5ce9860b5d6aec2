package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/role"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 {
	return &v
}

var fullColumns = []model.Column{
	model.ColID, model.ColWorkerName, model.ColEmail, model.ColBankAccountNumber, model.ColRole,
	model.ColWorkType, model.ColDateCompleted, model.ColHoursWorked, model.ColUnitsCompleted,
	model.ColCost, model.ColSeason,
}

func sampleSet() model.RecordSet {
	return model.NewRecordSet([]model.WorkLog{
		{ID: "1", WorkerName: "Kari", Email: "kari@example.com", BankAccountNumber: "1111", Role: model.RoleGenf,
			WorkType: "bccof_vask", DateCompleted: day(2025, 9, 1), HoursWorked: 2, Cost: 200, Season: "25/26"},
		{ID: "2", WorkerName: "Kari", Email: "kari@example.com", BankAccountNumber: "1111", Role: model.RoleGenf,
			WorkType: "glenne_vedpakking", DateCompleted: day(2025, 9, 15), UnitsCompleted: ptr(10), Cost: 200, Season: "25/26"},
		{ID: "3", WorkerName: "Ola", Email: "ola@example.com", BankAccountNumber: "2222", Role: model.RoleMentor,
			WorkType: "bccof_vask", DateCompleted: day(2025, 9, 30), HoursWorked: 3, Cost: 600, Season: "25/26"},
		{ID: "4", WorkerName: "Per", Email: "per@example.com", BankAccountNumber: "3333", Role: model.RoleHjelpementor,
			WorkType: "arvoll_kafe_og_vedpakking", DateCompleted: day(2025, 10, 1), HoursWorked: 4, Cost: 600, Season: "25/26"},
	}, fullColumns...)
}

func TestFilterDates_InclusiveBoundaries(t *testing.T) {
	p := New(zap.NewNop())
	r := period.DateRange{From: day(2025, 9, 1), To: day(2025, 9, 30)}

	got := p.FilterDates(sampleSet(), r)

	ids := make([]string, 0, got.Len())
	for _, rec := range got.Rows {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids, "both ends included, one day after excluded")
}

func TestFilterDates_OneDayOutside(t *testing.T) {
	p := New(zap.NewNop())
	got := p.FilterDates(sampleSet(), period.DateRange{From: day(2025, 9, 2), To: day(2025, 9, 29)})

	require.Len(t, got.Rows, 1)
	assert.Equal(t, "2", got.Rows[0].ID)
}

func TestFilterDates_MissingColumnIsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(zap.New(core))
	rs := model.NewRecordSet([]model.WorkLog{{WorkerName: "Kari"}, {WorkerName: "Ola"}}, model.ColWorkerName)

	got := p.FilterDates(rs, period.DateRange{From: day(2025, 9, 1), To: day(2025, 9, 30)})

	assert.Len(t, got.Rows, 2)
	assert.Equal(t, 1, logs.FilterMessage("Column not found, skipping stage").Len())
}

func TestFilterWorkTypes(t *testing.T) {
	p := New(zap.NewNop())

	assert.Len(t, p.FilterWorkTypes(sampleSet(), nil).Rows, 4, "no work types means no restriction")

	got := p.FilterWorkTypes(sampleSet(), []string{"bccof_vask"})
	require.Len(t, got.Rows, 2)
	for _, rec := range got.Rows {
		assert.Equal(t, "bccof_vask", rec.WorkType)
	}
}

func TestFilterWorkTypes_MissingColumnIsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(zap.New(core))
	rs := model.NewRecordSet([]model.WorkLog{{WorkerName: "Kari"}}, model.ColWorkerName)

	got := p.FilterWorkTypes(rs, []string{"bccof_vask"})
	assert.Len(t, got.Rows, 1)
	assert.Equal(t, 1, logs.Len())
}

func TestFilterRoles(t *testing.T) {
	p := New(zap.NewNop())

	got := p.FilterRoles(sampleSet(), []model.Role{model.RoleGenf, model.RoleMentor})
	assert.Len(t, got.Rows, 3)

	assert.Len(t, p.FilterRoles(sampleSet(), nil).Rows, 4)
}

func TestFilterGroupsAndWorkers(t *testing.T) {
	p := New(zap.NewNop())
	rs := sampleSet()
	for i := range rs.Rows {
		rs.Rows[i].Group = map[string]string{"1": "bccof", "2": "glenne", "3": "bccof", "4": "arvoll"}[rs.Rows[i].ID]
	}
	rs.Columns.Add(model.ColGroup)

	got := p.FilterGroups(rs, []string{"bccof"}, nil)
	assert.Len(t, got.Rows, 2)

	got = p.FilterWorkers(got, []string{"Ola"})
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "3", got.Rows[0].ID)
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	p := New(zap.NewNop())
	rs := sampleSet()

	_ = p.Filter(rs, ReportFilterConfig{
		Range:     period.DateRange{From: day(2025, 9, 1), To: day(2025, 9, 1)},
		WorkTypes: []string{"bccof_vask"},
		Roles:     []model.Role{model.RoleGenf},
	})

	assert.Len(t, rs.Rows, 4)
	assert.Equal(t, "1", rs.Rows[0].ID)
}

func TestSummarize_FullKey(t *testing.T) {
	p := New(zap.NewNop())

	summaries, key := p.Summarize(sampleSet())

	assert.Equal(t, FullKey, key)
	require.Len(t, summaries, 3)
	kari := summaries[0]
	assert.Equal(t, "Kari", kari.WorkerName)
	assert.Equal(t, "kari@example.com", kari.Email)
	assert.Equal(t, "1111", kari.BankAccountNumber)
	assert.Equal(t, 400.0, kari.Cost)
	assert.Equal(t, 2.0, kari.HoursWorked)
	assert.Equal(t, 10.0, kari.UnitsCompleted)
	assert.Equal(t, 2, kari.Records)
}

func TestSummarize_DegradesToMinimalKey(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(zap.New(core))
	rs := model.NewRecordSet([]model.WorkLog{
		{WorkerName: "Kari", Role: model.RoleGenf, HoursWorked: 1, Cost: 100},
		{WorkerName: "Kari", Role: model.RoleGenf, HoursWorked: 2, Cost: 200},
		{WorkerName: "Ola", Role: model.RoleMentor, HoursWorked: 1, Cost: 200},
	}, model.ColWorkerName, model.ColRole, model.ColHoursWorked, model.ColCost)

	var (
		summaries []Summary
		key       []model.Column
	)
	require.NotPanics(t, func() { summaries, key = p.Summarize(rs) })

	assert.Equal(t, MinimalKey, key)
	require.Len(t, summaries, 2)
	assert.Equal(t, 300.0, summaries[0].Cost)
	assert.Equal(t, 3.0, summaries[0].HoursWorked)
	assert.Empty(t, summaries[0].Email)
	assert.Equal(t, 1, logs.FilterMessage("Missing columns for full grouping, using minimal key").Len())
}

func TestRun_Idempotent(t *testing.T) {
	p := New(zap.NewNop())
	rs := sampleSet()
	cfg := ReportFilterConfig{Range: period.DateRange{From: day(2025, 9, 1), To: day(2025, 9, 30)}}

	first := p.Run(rs, cfg)
	second := p.Run(rs, cfg)

	assert.Equal(t, first.Summaries, second.Summaries)
	assert.Equal(t, first.Totals, second.Totals)
}

func TestRun_Itemized(t *testing.T) {
	p := New(zap.NewNop())

	report := p.Run(sampleSet(), ReportFilterConfig{Mode: ModeItemized})

	assert.Nil(t, report.Summaries)
	require.Len(t, report.Items.Rows, 4)
	assert.False(t, report.Items.Columns.Has(model.ColID))
	assert.False(t, report.Items.Columns.Has(model.ColSeason))
	assert.True(t, report.Items.Columns.Has(model.ColCost))
	assert.Empty(t, report.Items.Rows[0].ID)
	assert.Equal(t, "Kari", report.Items.Rows[0].WorkerName)
}

func TestRun_FiltersInactive(t *testing.T) {
	p := New(zap.NewNop())

	report := p.Run(sampleSet(), ReportFilterConfig{MinCost: 500})

	require.Len(t, report.Summaries, 2)
	assert.Equal(t, "Ola", report.Summaries[0].WorkerName)
	assert.Equal(t, "Per", report.Summaries[1].WorkerName)
	assert.Equal(t, Totals{Hours: 7, Cost: 1200, UniqueWorkers: 2, Records: 2}, report.Totals,
		"totals leave out the workers below the cut")
	assert.Equal(t, 4, report.Records.Len())
}

func TestRun_NoCutKeepsRowTotals(t *testing.T) {
	p := New(zap.NewNop())

	report := p.Run(sampleSet(), ReportFilterConfig{})

	assert.Equal(t, Totals{Hours: 9, Cost: 1600, Units: 10, UniqueWorkers: 3, Records: 4}, report.Totals)
	assert.Equal(t, Total(sampleSet()), SummaryTotals(report.Summaries))
}

func TestCompare_PreviousPeriod(t *testing.T) {
	p := New(zap.NewNop())
	rs := model.NewRecordSet([]model.WorkLog{
		{WorkerName: "A", DateCompleted: day(2026, 1, 10), HoursWorked: 1, Cost: 100},
		{WorkerName: "B", DateCompleted: day(2026, 1, 20), HoursWorked: 2, Cost: 200},
		{WorkerName: "A", DateCompleted: day(2026, 1, 9), HoursWorked: 4, Cost: 400},
		{WorkerName: "C", DateCompleted: day(2025, 12, 30), HoursWorked: 8, Cost: 800},
		{WorkerName: "D", DateCompleted: day(2025, 12, 29), HoursWorked: 16, Cost: 1600},
	}, model.ColWorkerName, model.ColDateCompleted, model.ColHoursWorked, model.ColCost)

	cmp, err := p.Compare(rs, ReportFilterConfig{Range: period.DateRange{From: day(2026, 1, 10), To: day(2026, 1, 20)}})
	require.NoError(t, err)

	assert.Equal(t, day(2025, 12, 30), cmp.PreviousRange.From)
	assert.Equal(t, day(2026, 1, 9), cmp.PreviousRange.To)
	assert.Equal(t, Totals{Hours: 3, Cost: 300, UniqueWorkers: 2, Records: 2}, cmp.Current)
	assert.Equal(t, Totals{Hours: 12, Cost: 1200, UniqueWorkers: 2, Records: 2}, cmp.Previous)
	assert.Equal(t, -900.0, cmp.Delta.Cost)
	assert.Equal(t, 0, cmp.Delta.UniqueWorkers)
}

func TestCompare_RequiresRange(t *testing.T) {
	p := New(zap.NewNop())
	_, err := p.Compare(sampleSet(), ReportFilterConfig{})
	var dateErr *model.InvalidDateError
	assert.ErrorAs(t, err, &dateErr)
}

func TestFilterInactive_ZeroCutoffKeepsAll(t *testing.T) {
	s := []Summary{{Cost: 0}, {Cost: 100}}
	assert.Len(t, FilterInactive(s, 0), 2)
	assert.Len(t, FilterInactive(s, 100), 0, "cutoff is exclusive")
}

func TestSummarizeBySeasonAndYear(t *testing.T) {
	p := New(zap.NewNop())
	rs := model.NewRecordSet([]model.WorkLog{
		{WorkerName: "Kari", Role: model.RoleGenf, Season: "24/25", DateCompleted: day(2024, 12, 1), Cost: 100},
		{WorkerName: "Kari", Role: model.RoleGenf, Season: "24/25", DateCompleted: day(2025, 2, 1), Cost: 100},
		{WorkerName: "Kari", Role: model.RoleGenf, Season: "25/26", DateCompleted: day(2025, 9, 1), Cost: 50},
	}, model.ColWorkerName, model.ColRole, model.ColSeason, model.ColDateCompleted, model.ColCost)

	bySeason := p.SummarizeBySeason(rs)
	require.Len(t, bySeason, 2)
	assert.Equal(t, "24/25", bySeason[0].Season)
	assert.Equal(t, 200.0, bySeason[0].Cost)

	byYear := p.SummarizeByYear(rs)
	require.Len(t, byYear, 2)
	assert.Equal(t, 2024, byYear[0].Year)
	assert.Equal(t, 100.0, byYear[0].Cost)
	assert.Equal(t, 2025, byYear[1].Year)
	assert.Equal(t, 150.0, byYear[1].Cost)
}

// Three workers priced from scratch: genf 5h, mentor 3h, u13 100h.
func TestEndToEnd_DeriveAndSummarize(t *testing.T) {
	rates := model.RateTable{{Season: "25/26", Roles: map[model.Role]float64{model.RoleGenf: 100, model.RoleMentor: 200}}}
	deriver := NewDeriver(role.NewClassifier(zap.NewNop()), cost.NewEngine(rates, cost.FallbackStrict, zap.NewNop()), zap.NewNop())

	rs := model.NewRecordSet([]model.WorkLog{
		{WorkerName: "A", Role: model.RoleGenf, WorkType: "bccof_vask", HoursWorked: 5, Season: "25/26", DateCompleted: day(2025, 9, 1)},
		{WorkerName: "B", Role: model.RoleMentor, WorkType: "bccof_vask", HoursWorked: 3, Season: "25/26", DateCompleted: day(2025, 9, 2)},
		{WorkerName: "C", Role: model.RoleU13, WorkType: "bccof_vask", HoursWorked: 100, Season: "25/26", DateCompleted: day(2025, 9, 3)},
	}, model.ColWorkerName, model.ColRole, model.ColWorkType, model.ColHoursWorked, model.ColSeason, model.ColDateCompleted)

	priced, failures := deriver.Derive(rs)
	require.Empty(t, failures)

	report := New(zap.NewNop()).Run(priced, ReportFilterConfig{})
	require.Len(t, report.Summaries, 3)
	assert.Equal(t, 500.0, report.Summaries[0].Cost)
	assert.Equal(t, 600.0, report.Summaries[1].Cost)
	assert.Equal(t, 0.0, report.Summaries[2].Cost)
	assert.Equal(t, 1100.0, report.Totals.Cost)
	assert.Equal(t, 108.0, report.Totals.Hours)
}
