package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	s, err := ParseSeason("25/26")
	require.NoError(t, err)
	assert.Equal(t, 2025, s.First)
	assert.Equal(t, 2026, s.Second)
	assert.Equal(t, "25/26", s.String())
	assert.Equal(t, 2026, s.ReferenceYear())
}

func TestParseSeason_Invalid(t *testing.T) {
	for _, input := range []string{"", "2025/2026", "25-26", "25/26/27", "ab/cd", " 25/26"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSeason(input)
			var seasonErr *InvalidSeasonFormatError
			require.True(t, errors.As(err, &seasonErr))
			assert.Equal(t, input, seasonErr.Value)
		})
	}
}

func TestCurrentSeason(t *testing.T) {
	july := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
	august := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "25/26", CurrentSeason(july).String())
	assert.Equal(t, "26/27", CurrentSeason(august).String())
}

func TestSeasonDates(t *testing.T) {
	s, err := ParseSeason("24/25")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), s.Start())
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), s.End())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"GEN-F", RoleGenf},
		{"genf", RoleGenf},
		{"Hjelpementor", RoleHjelpementor},
		{"Mentor", RoleMentor},
		{"u13", RoleU13},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, role)
		})
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestRoleBracket(t *testing.T) {
	b, ok := RoleGenf.Bracket()
	assert.True(t, ok)
	assert.Equal(t, BracketUnder18, b)

	b, ok = RoleHjelpementor.Bracket()
	assert.True(t, ok)
	assert.Equal(t, BracketUnder18, b)

	b, ok = RoleMentor.Bracket()
	assert.True(t, ok)
	assert.Equal(t, BracketOver18, b)

	_, ok = RoleU13.Bracket()
	assert.False(t, ok)
}

func TestRateTable_Validate(t *testing.T) {
	table := RateTable{{Season: "24/25"}, {Season: "25/26"}}
	assert.NoError(t, table.Validate())

	dup := RateTable{{Season: "24/25"}, {Season: "24/25"}}
	err := dup.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "more than one entry")

	bad := RateTable{{Season: "2024"}}
	assert.Error(t, bad.Validate())
}

func TestRateTable_FindAndLatest(t *testing.T) {
	table := RateTable{
		{Season: "25/26", Roles: map[Role]float64{RoleGenf: 110}},
		{Season: "23/24", Roles: map[Role]float64{RoleGenf: 90}},
		{Season: "24/25", Roles: map[Role]float64{RoleGenf: 100}},
	}

	r, ok := table.Find("24/25")
	require.True(t, ok)
	assert.Equal(t, 100.0, r.Roles[RoleGenf])

	_, ok = table.Find("22/23")
	assert.False(t, ok)

	latest, ok := table.Latest()
	require.True(t, ok)
	assert.Equal(t, "25/26", latest.Season)
}

func TestCampRateTable_Prices(t *testing.T) {
	table := NewCampRateTable([]CampRate{
		{Year: 2025, Under18: CampPrices{NewYear: 1000, Spring: 2000, Summer: 3000}, Over18: CampPrices{NewYear: 1500}},
	})

	p, err := table.Prices(2025, BracketUnder18)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, p.SpringSummer())
	assert.Equal(t, 6000.0, p.Total())

	p, err = table.Prices(2025, BracketOver18)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, p.NewYear)

	_, err = table.Prices(2024, BracketUnder18)
	var missing *MissingRateDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 2024, missing.Year)
	assert.Equal(t, BracketUnder18, missing.Bracket)
}

func TestColumnSet(t *testing.T) {
	cols := NewColumnSet(ColWorkerName, ColRole)
	assert.True(t, cols.Has(ColRole))
	assert.False(t, cols.Has(ColEmail))
	assert.Equal(t, []Column{ColEmail, ColBankAccountNumber}, cols.Missing(ColWorkerName, ColEmail, ColBankAccountNumber))

	clone := cols.Clone()
	clone.Add(ColEmail)
	assert.False(t, cols.Has(ColEmail))
	assert.True(t, clone.Has(ColEmail))
}
