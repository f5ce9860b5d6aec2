package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
)

func TestMonthlyCumulative(t *testing.T) {
	p := New(zap.NewNop())
	rs := model.NewRecordSet([]model.WorkLog{
		{DateCompleted: day(2025, 11, 3), Cost: 100},
		{DateCompleted: day(2025, 12, 24), Cost: 50},
		{DateCompleted: day(2025, 11, 20), Cost: 25},
		{DateCompleted: day(2026, 1, 2), Cost: 10},
	}, model.ColDateCompleted, model.ColCost)

	points := p.MonthlyCumulative(rs)

	require.Len(t, points, 3)
	assert.Equal(t, MonthlyPoint{Year: 2025, Month: time.November, Cost: 125, Cumulative: 125}, points[0])
	assert.Equal(t, MonthlyPoint{Year: 2025, Month: time.December, Cost: 50, Cumulative: 175}, points[1])
	assert.Equal(t, MonthlyPoint{Year: 2026, Month: time.January, Cost: 10, Cumulative: 10}, points[2], "running total restarts each year")
}

func TestMonthlyCumulative_MissingDateColumn(t *testing.T) {
	p := New(zap.NewNop())
	assert.Nil(t, p.MonthlyCumulative(model.NewRecordSet([]model.WorkLog{{Cost: 1}}, model.ColCost)))
}

func TestWorkTypeBreakdown_DerivesGroups(t *testing.T) {
	p := New(zap.NewNop())
	rs := model.NewRecordSet([]model.WorkLog{
		{WorkType: "bccof_vask", HoursWorked: 2, Cost: 200},
		{WorkType: "glenne_vedpakking", UnitsCompleted: ptr(10), Cost: 150},
		{WorkType: "bccof_vask", HoursWorked: 1, Cost: 100},
		{WorkType: "arvoll_kafe_og_vedpakking", HoursWorked: 1, Cost: 500},
	}, model.ColWorkType, model.ColHoursWorked, model.ColUnitsCompleted, model.ColCost)

	totals := p.WorkTypeBreakdown(rs)

	require.Len(t, totals, 3)
	assert.Equal(t, WorkTypeTotal{Group: "arvoll", Project: "kafe og vedpakking", Hours: 1, Cost: 500, Records: 1}, totals[0])
	assert.Equal(t, WorkTypeTotal{Group: "bccof", Project: "vask", Hours: 3, Cost: 300, Records: 2}, totals[1])
	assert.Equal(t, 10.0, totals[2].Units)
}
