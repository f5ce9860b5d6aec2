// Package goal computes camp-cost fundraising targets and compares them with earnings.
package goal

import (
	"github.com/genf/workreport/pkg/core/model"
)

// DefaultMentorHeadcount is the number of mentors assumed to attend every camp
const DefaultMentorHeadcount = 50

// Model holds camp prices and registered member counts
type Model struct {
	Camps        model.CampRateTable
	YearlyCounts []model.YearlyMemberCount
	// MentorHeadcount replaces a birth-year population for mentors, who are not counted per year
	MentorHeadcount int
	// ActiveThreshold is the earnings a worker must exceed to count as active. Zero counts everyone.
	ActiveThreshold float64
}

func New(camps model.CampRateTable, counts []model.YearlyMemberCount, mentorHeadcount int) *Model {
	if mentorHeadcount <= 0 {
		mentorHeadcount = DefaultMentorHeadcount
	}
	return &Model{Camps: camps, YearlyCounts: counts, MentorHeadcount: mentorHeadcount}
}

func bracketFor(r model.Role, operation string) (model.Bracket, error) {
	b, ok := r.Bracket()
	if !ok {
		return "", &model.UnsupportedRoleError{Role: r, Operation: operation}
	}
	return b, nil
}

// CampCostForSeason is the per-person camp cost of a season: the New Year camp
// priced in the season's first year plus the spring and summer camps priced in
// its second year.
func (m *Model) CampCostForSeason(season string, r model.Role) (float64, error) {
	s, err := model.ParseSeason(season)
	if err != nil {
		return 0, err
	}
	bracket, err := bracketFor(r, "season camp cost")
	if err != nil {
		return 0, err
	}

	first, err := m.Camps.Prices(s.First, bracket)
	if err != nil {
		return 0, err
	}
	second, err := m.Camps.Prices(s.Second, bracket)
	if err != nil {
		return 0, err
	}
	return first.NewYear + second.SpringSummer(), nil
}

// BirthYearWindow returns the inclusive birth-year range whose members hold role in year
func BirthYearWindow(year int, r model.Role) (from, to int, ok bool) {
	switch r {
	case model.RoleGenf:
		return year - 16, year - 14, true
	case model.RoleHjelpementor:
		return year - 18, year - 17, true
	}
	return 0, 0, false
}

// Registered sums registered members born in [from, to]
func (m *Model) Registered(from, to int) int {
	n := 0
	for _, c := range m.YearlyCounts {
		if c.BirthYear >= from && c.BirthYear <= to {
			n += c.Members
		}
	}
	return n
}

// Population is the number of members assumed to hold role in year
func (m *Model) Population(year int, r model.Role) (int, error) {
	if r == model.RoleMentor {
		return m.MentorHeadcount, nil
	}
	from, to, ok := BirthYearWindow(year, r)
	if !ok {
		return 0, &model.UnsupportedRoleError{Role: r, Operation: "yearly population"}
	}
	return m.Registered(from, to), nil
}

// CampCostForYear estimates what it would cost to send every registered member
// of role to the camps held in year. Spring and summer camps are priced for the
// current cohort; the New Year camp is priced for the cohort born one year later,
// who will have aged into the role by then. Mentors use MentorHeadcount for all three camps.
func (m *Model) CampCostForYear(year int, r model.Role) (float64, error) {
	bracket, err := bracketFor(r, "yearly camp cost")
	if err != nil {
		return 0, err
	}
	prices, err := m.Camps.Prices(year, bracket)
	if err != nil {
		return 0, err
	}

	if r == model.RoleMentor {
		return float64(m.MentorHeadcount) * prices.Total(), nil
	}

	from, to, _ := BirthYearWindow(year, r)
	current := m.Registered(from, to)
	next := m.Registered(from+1, to+1)
	return float64(current)*prices.SpringSummer() + float64(next)*prices.NewYear, nil
}

// YearCosts is the estimated camp cost of every role in one year
type YearCosts struct {
	Year   int
	ByRole map[model.Role]float64
	Total  float64
}

// CampCostsForYears estimates camp costs for each year in [from, to)
func (m *Model) CampCostsForYears(from, to int) ([]YearCosts, error) {
	var out []YearCosts
	for year := from; year < to; year++ {
		yc := YearCosts{Year: year, ByRole: make(map[model.Role]float64, len(model.AllRoles))}
		for _, r := range model.AllRoles {
			c, err := m.CampCostForYear(year, r)
			if err != nil {
				return nil, err
			}
			yc.ByRole[r] = c
			yc.Total += c
		}
		out = append(out, yc)
	}
	return out, nil
}
