package model

import "fmt"

// Rate holds the pay rates for one season
type Rate struct {
	Season string
	// Roles maps role to hourly rate
	Roles map[Role]float64
	// PieceRates maps a piece label (e.g. "vedsekk") to a per-unit rate
	PieceRates map[string]float64
}

// RoleRate returns the hourly rate for role
func (r Rate) RoleRate(role Role) (float64, bool) {
	rate, ok := r.Roles[role]
	return rate, ok
}

// PieceRate returns the per-unit rate for a piece label
func (r Rate) PieceRate(key string) (float64, bool) {
	rate, ok := r.PieceRates[key]
	return rate, ok
}

// RateTable is the set of season rates. Each season appears exactly once.
type RateTable []Rate

// Validate checks the one-entry-per-season invariant and season formats
func (t RateTable) Validate() error {
	seen := make(map[string]bool, len(t))
	for i, r := range t {
		if _, err := ParseSeason(r.Season); err != nil {
			return fmt.Errorf("rate table entry %d: %w", i, err)
		}
		if seen[r.Season] {
			return fmt.Errorf("rate table has more than one entry for season %s", r.Season)
		}
		seen[r.Season] = true
	}
	return nil
}

// Find returns the entry whose season equals season exactly
func (t RateTable) Find(season string) (Rate, bool) {
	for _, r := range t {
		if r.Season == season {
			return r, true
		}
	}
	return Rate{}, false
}

// Latest returns the entry for the most recent parseable season
func (t RateTable) Latest() (Rate, bool) {
	var (
		best      Rate
		bestStart Season
		found     bool
	)
	for _, r := range t {
		s, err := ParseSeason(r.Season)
		if err != nil {
			continue
		}
		if !found || bestStart.Before(s) {
			best, bestStart, found = r, s, true
		}
	}
	return best, found
}

// CampPrices is the per-person price of each camp event in a year
type CampPrices struct {
	NewYear float64
	Spring  float64
	Summer  float64
}

// SpringSummer is the combined price of the two camps held in the first half of the year
func (p CampPrices) SpringSummer() float64 {
	return p.Spring + p.Summer
}

func (p CampPrices) Total() float64 {
	return p.NewYear + p.Spring + p.Summer
}

// CampRate holds one calendar year's camp prices for both brackets
type CampRate struct {
	Year    int
	Under18 CampPrices
	Over18  CampPrices
	// Missing marks brackets with at least one camp price absent from the source
	Missing map[Bracket]bool `json:",omitempty"`
}

// CampRateTable indexes camp rates by calendar year
type CampRateTable map[int]CampRate

// NewCampRateTable builds a table from rows. Later rows for the same year win.
func NewCampRateTable(rows []CampRate) CampRateTable {
	t := make(CampRateTable, len(rows))
	for _, r := range rows {
		t[r.Year] = r
	}
	return t
}

// Prices returns the prices for a year and bracket or a MissingRateDataError
func (t CampRateTable) Prices(year int, bracket Bracket) (CampPrices, error) {
	r, ok := t[year]
	if !ok || r.Missing[bracket] {
		return CampPrices{}, &MissingRateDataError{Year: year, Bracket: bracket}
	}
	switch bracket {
	case BracketUnder18:
		return r.Under18, nil
	case BracketOver18:
		return r.Over18, nil
	}
	return CampPrices{}, &MissingRateDataError{Year: year, Bracket: bracket}
}
