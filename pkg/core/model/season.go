package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SeasonStartMonth is the month a fundraising season begins
const SeasonStartMonth = time.August

var seasonPattern = regexp.MustCompile(`^(\d{2})/(\d{2})$`)

// Season is a fundraising season spanning August of First to the summer of Second.
// Years are stored in full (2025, not 25).
type Season struct {
	First  int
	Second int
}

// ParseSeason parses a "YY/YY" season string, e.g. "25/26"
func ParseSeason(s string) (Season, error) {
	m := seasonPattern.FindStringSubmatch(s)
	if m == nil {
		return Season{}, &InvalidSeasonFormatError{Value: s}
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	return Season{First: 2000 + first, Second: 2000 + second}, nil
}

// CurrentSeason returns the season containing now.
// Before August the season started the previous year.
func CurrentSeason(now time.Time) Season {
	year := now.Year()
	if now.Month() < SeasonStartMonth {
		return Season{First: year - 1, Second: year}
	}
	return Season{First: year, Second: year + 1}
}

func (s Season) String() string {
	return fmt.Sprintf("%02d/%02d", s.First%100, s.Second%100)
}

// ReferenceYear is the year ages are measured against when classifying roles
func (s Season) ReferenceYear() int {
	return s.Second
}

// Start is the first day of the season (August 1st)
func (s Season) Start() time.Time {
	return time.Date(s.First, SeasonStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last reporting day of the season (June 30th)
func (s Season) End() time.Time {
	return time.Date(s.Second, time.June, 30, 0, 0, 0, 0, time.UTC)
}

// Before reports whether s starts earlier than other
func (s Season) Before(other Season) bool {
	return s.First < other.First
}
