package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genf/workreport/pkg/core/model"
)

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// RatesFromTable reads the season rate table. One row per season: a season
// column ("season" or "sesong"), one column per role, and any other numeric
// column is a piece rate keyed by its header (e.g. "vedsekk").
func RatesFromTable(headers []string, rows [][]any) (model.RateTable, error) {
	hs := normalizeHeaders(headers)
	seasonIdx := indexOf(hs, "season", "sesong")
	if seasonIdx < 0 {
		return nil, fmt.Errorf("rate table has no season column")
	}

	table := make(model.RateTable, 0, len(rows))
	for r, row := range rows {
		if seasonIdx >= len(row) {
			return nil, fmt.Errorf("rate row %d: missing season", r)
		}
		season, ok := String(row[seasonIdx])
		if !ok {
			return nil, fmt.Errorf("rate row %d: missing season", r)
		}
		rate := model.Rate{Season: season, Roles: map[model.Role]float64{}, PieceRates: map[string]float64{}}

		for i, v := range row {
			if i == seasonIdx || i >= len(hs) || hs[i] == "" || hs[i] == "id" {
				continue
			}
			f, ok, err := Float(v)
			if err != nil {
				return nil, fmt.Errorf("rate row %d (%s), column %q: %w", r, season, headers[i], err)
			}
			if !ok {
				continue
			}
			if role, err := model.ParseRole(hs[i]); err == nil {
				rate.Roles[role] = f
				continue
			}
			rate.PieceRates[hs[i]] = f
		}
		table = append(table, rate)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// campColumn is one camp price cell of a bracket
type campColumn struct {
	bracket model.Bracket
	set     func(r *model.CampRate, v float64)
}

// campPricesPerBracket is the number of camp events priced per bracket
const campPricesPerBracket = 3

// Camp rate columns: u18/o18 followed by _nc (New Year), _pc (Easter/spring) and _sc (summer)
var campColumns = map[string]campColumn{
	"u18_nc": {model.BracketUnder18, func(r *model.CampRate, v float64) { r.Under18.NewYear = v }},
	"u18_pc": {model.BracketUnder18, func(r *model.CampRate, v float64) { r.Under18.Spring = v }},
	"u18_sc": {model.BracketUnder18, func(r *model.CampRate, v float64) { r.Under18.Summer = v }},
	"o18_nc": {model.BracketOver18, func(r *model.CampRate, v float64) { r.Over18.NewYear = v }},
	"o18_pc": {model.BracketOver18, func(r *model.CampRate, v float64) { r.Over18.Spring = v }},
	"o18_sc": {model.BracketOver18, func(r *model.CampRate, v float64) { r.Over18.Summer = v }},
}

// CampRatesFromTable reads per-year camp prices. A bracket with any price column
// absent or empty is marked missing for that year rather than priced at zero.
func CampRatesFromTable(headers []string, rows [][]any) (model.CampRateTable, error) {
	hs := normalizeHeaders(headers)
	yearIdx := indexOf(hs, "year", "aar")
	if yearIdx < 0 {
		return nil, fmt.Errorf("camp rate table has no year column")
	}

	rates := make([]model.CampRate, 0, len(rows))
	for r, row := range rows {
		if yearIdx >= len(row) {
			return nil, fmt.Errorf("camp rate row %d: missing year", r)
		}
		year, ok, err := Float(row[yearIdx])
		if err != nil || !ok {
			return nil, fmt.Errorf("camp rate row %d: missing or invalid year", r)
		}
		rate := model.CampRate{Year: int(year)}
		present := make(map[model.Bracket]int, 2)
		for i, v := range row {
			if i >= len(hs) {
				break
			}
			col, known := campColumns[hs[i]]
			if !known {
				continue
			}
			f, ok, err := Float(v)
			if err != nil {
				return nil, fmt.Errorf("camp rate row %d (%d), column %q: %w", r, rate.Year, headers[i], err)
			}
			if ok {
				col.set(&rate, f)
				present[col.bracket]++
			}
		}
		for _, b := range []model.Bracket{model.BracketUnder18, model.BracketOver18} {
			if present[b] < campPricesPerBracket {
				if rate.Missing == nil {
					rate.Missing = make(map[model.Bracket]bool, 2)
				}
				rate.Missing[b] = true
			}
		}
		rates = append(rates, rate)
	}
	return model.NewCampRateTable(rates), nil
}

// YearlyCountsFromTable reads registered member counts per birth year
func YearlyCountsFromTable(headers []string, rows [][]any) ([]model.YearlyMemberCount, error) {
	hs := normalizeHeaders(headers)
	yearIdx := indexOf(hs, "year", "birth_year")
	membersIdx := indexOf(hs, "members", "count")
	if yearIdx < 0 || membersIdx < 0 {
		return nil, fmt.Errorf("yearly count table needs year and members columns, got %v", headers)
	}

	counts := make([]model.YearlyMemberCount, 0, len(rows))
	for r, row := range rows {
		if yearIdx >= len(row) || membersIdx >= len(row) {
			return nil, fmt.Errorf("yearly count row %d is short", r)
		}
		year, ok, err := Float(row[yearIdx])
		if err != nil || !ok {
			return nil, fmt.Errorf("yearly count row %d: missing or invalid year", r)
		}
		members, _, err := Float(row[membersIdx])
		if err != nil {
			return nil, fmt.Errorf("yearly count row %d: %w", r, err)
		}
		counts = append(counts, model.YearlyMemberCount{BirthYear: int(year), Members: int(members)})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].BirthYear < counts[j].BirthYear })
	return counts, nil
}

// SeasonalCountsFromTable reads registered member counts per season with one column per role
func SeasonalCountsFromTable(headers []string, rows [][]any) ([]model.SeasonalMemberCount, error) {
	hs := normalizeHeaders(headers)
	seasonIdx := indexOf(hs, "season", "sesong")
	if seasonIdx < 0 {
		return nil, fmt.Errorf("seasonal count table has no season column")
	}

	counts := make([]model.SeasonalMemberCount, 0, len(rows))
	for r, row := range rows {
		if seasonIdx >= len(row) {
			return nil, fmt.Errorf("seasonal count row %d: missing season", r)
		}
		season, ok := String(row[seasonIdx])
		if !ok {
			return nil, fmt.Errorf("seasonal count row %d: missing season", r)
		}
		c := model.SeasonalMemberCount{Season: season, Counts: map[model.Role]int{}}
		for i, v := range row {
			if i == seasonIdx || i >= len(hs) {
				continue
			}
			role, err := model.ParseRole(hs[i])
			if err != nil {
				continue
			}
			n, ok, err := Float(v)
			if err != nil {
				return nil, fmt.Errorf("seasonal count row %d (%s), column %q: %w", r, season, headers[i], err)
			}
			if ok {
				c.Counts[role] = int(n)
			}
		}
		counts = append(counts, c)
	}
	return counts, nil
}

func indexOf(headers []string, names ...string) int {
	for i, h := range headers {
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}
