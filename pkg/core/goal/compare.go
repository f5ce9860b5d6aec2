package goal

import (
	"fmt"
	"sort"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/pipeline"
)

// Comparison is earnings against the camp-cost goal for one period and role
type Comparison struct {
	Season string
	Year   int
	Role   model.Role

	Earned float64
	Goal   float64
	// Active counts workers whose earnings in the period exceed the active threshold
	Active int
	// Registered counts members registered for the role (season counts, or the yearly population)
	Registered int
}

// Remaining is how much is left to reach the goal, never negative
func (c Comparison) Remaining() float64 {
	if c.Earned >= c.Goal {
		return 0
	}
	return c.Goal - c.Earned
}

// Progress is earned as a fraction of the goal, zero when there is no goal
func (c Comparison) Progress() float64 {
	if c.Goal == 0 {
		return 0
	}
	return c.Earned / c.Goal
}

func roleOrder(r model.Role) int {
	for i, x := range model.AllRoles {
		if x == r {
			return i
		}
	}
	return len(model.AllRoles)
}

// WorkerGoal is one worker's season earnings against their own camp cost
type WorkerGoal struct {
	pipeline.Summary
	Goal       float64
	Difference float64
}

// WorkerGoals pairs each per-season summary with the camp cost of that season.
// Summaries for roles without a camp bracket (u13) are skipped.
func (m *Model) WorkerGoals(summaries []pipeline.Summary) ([]WorkerGoal, error) {
	prices := make(map[string]float64)
	out := make([]WorkerGoal, 0, len(summaries))
	for _, s := range summaries {
		if _, ok := s.Role.Bracket(); !ok {
			continue
		}
		k := s.Season + "|" + string(s.Role)
		price, ok := prices[k]
		if !ok {
			var err error
			price, err = m.CampCostForSeason(s.Season, s.Role)
			if err != nil {
				return nil, fmt.Errorf("goal for %s (%s): %w", s.WorkerName, s.Season, err)
			}
			prices[k] = price
		}
		out = append(out, WorkerGoal{Summary: s, Goal: price, Difference: price - s.Cost})
	}
	return out, nil
}

// SeasonComparison totals per-season worker summaries by season and role. Each
// active worker contributes one season camp cost to the goal, so the goal
// reflects the people who worked, not everyone registered.
func (m *Model) SeasonComparison(summaries []pipeline.Summary, counts []model.SeasonalMemberCount) ([]Comparison, error) {
	goals, err := m.WorkerGoals(summaries)
	if err != nil {
		return nil, err
	}

	registered := make(map[string]map[model.Role]int, len(counts))
	for _, c := range counts {
		registered[c.Season] = c.Counts
	}

	type key struct {
		season string
		role   model.Role
	}
	index := make(map[key]int)
	var out []Comparison
	for _, g := range goals {
		k := key{g.Season, g.Role}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Comparison{Season: g.Season, Role: g.Role, Registered: registered[g.Season][g.Role]})
		}
		out[i].Earned += g.Cost
		out[i].Goal += g.Goal
		if m.isActive(g.Cost) {
			out[i].Active++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return seasonLess(out[i].Season, out[j].Season)
		}
		return roleOrder(out[i].Role) < roleOrder(out[j].Role)
	})
	return out, nil
}

func (m *Model) isActive(earned float64) bool {
	return earned > m.ActiveThreshold || m.ActiveThreshold <= 0
}

func seasonLess(a, b string) bool {
	sa, errA := model.ParseSeason(a)
	sb, errB := model.ParseSeason(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return sa.Before(sb)
}

// YearComparison compares per-year worker summaries with the yearly camp cost
// estimate for every role and every year listed.
func (m *Model) YearComparison(summaries []pipeline.Summary, years []int) ([]Comparison, error) {
	type key struct {
		year int
		role model.Role
	}
	earned := make(map[key]float64)
	active := make(map[key]int)
	for _, s := range summaries {
		k := key{s.Year, s.Role}
		earned[k] += s.Cost
		if m.isActive(s.Cost) {
			active[k]++
		}
	}

	out := make([]Comparison, 0, len(years)*len(model.AllRoles))
	for _, year := range years {
		for _, r := range model.AllRoles {
			g, err := m.CampCostForYear(year, r)
			if err != nil {
				return nil, fmt.Errorf("goal for %d: %w", year, err)
			}
			pop, err := m.Population(year, r)
			if err != nil {
				return nil, err
			}
			k := key{year, r}
			out = append(out, Comparison{
				Year:       year,
				Role:       r,
				Earned:     earned[k],
				Goal:       g,
				Active:     active[k],
				Registered: pop,
			})
		}
	}
	return out, nil
}
