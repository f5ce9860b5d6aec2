package pipeline

import (
	"sort"
	"time"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/worktype"
)

// MonthlyPoint is one month of cost with the running total for its year
type MonthlyPoint struct {
	Year       int
	Month      time.Month
	Cost       float64
	Hours      float64
	Cumulative float64
}

// MonthlyCumulative sums cost per month and accumulates it within each calendar year.
// Months without work are left out. Points are ordered by year then month.
func (p *Pipeline) MonthlyCumulative(rs model.RecordSet) []MonthlyPoint {
	if !p.requireColumn(rs, model.ColDateCompleted, "monthly_cumulative") {
		return nil
	}

	type ym struct {
		year  int
		month time.Month
	}
	sums := make(map[ym]*MonthlyPoint)
	for _, rec := range rs.Rows {
		if rec.DateCompleted.IsZero() {
			continue
		}
		k := ym{rec.DateCompleted.Year(), rec.DateCompleted.Month()}
		pt, ok := sums[k]
		if !ok {
			pt = &MonthlyPoint{Year: k.year, Month: k.month}
			sums[k] = pt
		}
		pt.Cost += rec.Cost
		pt.Hours += rec.HoursWorked
	}

	points := make([]MonthlyPoint, 0, len(sums))
	for _, pt := range sums {
		points = append(points, *pt)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})

	running := 0.0
	for i := range points {
		if i == 0 || points[i].Year != points[i-1].Year {
			running = 0
		}
		running += points[i].Cost
		points[i].Cumulative = running
	}
	return points
}

// WorkTypeTotal is the work done under one group and project
type WorkTypeTotal struct {
	Group   string
	Project string
	Hours   float64
	Cost    float64
	Units   float64
	Records int
}

// WorkTypeBreakdown sums work per group and project, largest cost first.
// Group and project are derived from work_type when the set does not carry them.
func (p *Pipeline) WorkTypeBreakdown(rs model.RecordSet) []WorkTypeTotal {
	derived := rs.Columns.Has(model.ColGroup) && rs.Columns.Has(model.ColProject)
	if !derived && !p.requireColumn(rs, model.ColWorkType, "work_type_breakdown") {
		return nil
	}

	type gp struct{ group, project string }
	index := make(map[gp]int)
	var out []WorkTypeTotal
	for _, rec := range rs.Rows {
		g, pr := rec.Group, rec.Project
		if !derived {
			g, pr = worktype.Split(rec.WorkType)
		}
		k := gp{g, pr}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, WorkTypeTotal{Group: g, Project: pr})
		}
		out[i].Hours += rec.HoursWorked
		out[i].Cost += rec.Cost
		out[i].Units += rec.Units()
		out[i].Records++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return out
}
