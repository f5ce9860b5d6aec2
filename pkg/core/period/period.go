// Package period handles the date ranges reports are filtered by.
package period

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/genf/workreport/pkg/core/model"
)

const DateLayout = "2006-01-02"

// DefaultMonthPresets offers the last four complete months
const DefaultMonthPresets = "FREQ=MONTHLY;COUNT=4"

// DateRange is an inclusive range of calendar dates, normalised to UTC midnight
type DateRange struct {
	From time.Time
	To   time.Time
}

// Day truncates t to its UTC calendar date
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDateRange builds a validated range from two instants
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: Day(from), To: Day(to)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDate parses a YYYY-MM-DD or RFC3339 date into a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, &model.InvalidDateError{Value: s, Reason: "expected YYYY-MM-DD"}
}

// ParseDateRange parses both ends of a range
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(f, t)
}

// Validate requires both ends to be set and To not before From
func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return &model.InvalidDateError{Value: r.String(), Reason: "both start and end dates are required"}
	}
	if r.To.Before(r.From) {
		return &model.InvalidDateError{Value: r.String(), Reason: "end date must be after start date"}
	}
	return nil
}

func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls on a date inside the range, ends included
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Length is the distance between the two ends (zero for a single day)
func (r DateRange) Length() time.Duration {
	return r.To.Sub(r.From)
}

// Previous returns the window immediately before r: it starts Length()+1 day
// before From and ends the day before From.
func (r DateRange) Previous() DateRange {
	from := r.From.Add(-r.Length()).AddDate(0, 0, -1)
	return DateRange{From: from, To: r.From.AddDate(0, 0, -1)}
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.From.Format(DateLayout), r.To.Format(DateLayout))
}

// ForSeason returns the reporting window of a season (August 1st to June 30th)
func ForSeason(s model.Season) DateRange {
	return DateRange{From: s.Start(), To: s.End()}
}

// SeasonToDate is the current season's window clipped to today
func SeasonToDate(now time.Time) DateRange {
	s := model.CurrentSeason(now)
	r := ForSeason(s)
	if today := Day(now); today.Before(r.To) {
		r.To = today
	}
	return r
}

// Month returns the full calendar month starting at first
func Month(first time.Time) DateRange {
	start := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: start, To: start.AddDate(0, 1, -1)}
}

// Preset is a named predefined date range
type Preset struct {
	Label string
	Range DateRange
}

// MonthPresets lists complete months before now, most recent first.
// The rule is an RRULE without DTSTART; its COUNT sets how many months are offered.
func MonthPresets(now time.Time, rule string) ([]Preset, error) {
	if rule == "" {
		rule = DefaultMonthPresets
	}
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid month preset rule: %w", err)
	}
	if opt.Freq != rrule.MONTHLY {
		return nil, fmt.Errorf("month preset rule must be MONTHLY")
	}
	if opt.Count <= 0 {
		opt.Count = 4
	}

	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	interval := opt.Interval
	if interval <= 0 {
		interval = 1
	}
	opt.Dtstart = thisMonth.AddDate(0, -opt.Count*interval, 0)

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build month preset rule: %w", err)
	}

	starts := r.Between(opt.Dtstart, thisMonth, true)
	presets := make([]Preset, 0, len(starts))
	for i := len(starts) - 1; i >= 0; i-- {
		if !starts[i].Before(thisMonth) {
			continue
		}
		presets = append(presets, Preset{
			Label: starts[i].Format("January 2006"),
			Range: Month(starts[i]),
		})
	}
	return presets, nil
}
