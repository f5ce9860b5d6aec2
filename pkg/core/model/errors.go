package model

import "fmt"

// InvalidSeasonFormatError is returned when a season string does not match "YY/YY"
type InvalidSeasonFormatError struct {
	Value string
}

func (e *InvalidSeasonFormatError) Error() string {
	return fmt.Sprintf("invalid season %q: expected format YY/YY", e.Value)
}

// InvalidDateError is returned for unparseable dates or inverted date ranges
type InvalidDateError struct {
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid date %q", e.Value)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

// MissingFieldError is returned when a record lacks a field required for cost computation
type MissingFieldError struct {
	Field    string
	RecordID string
}

func (e *MissingFieldError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("required field %q is missing", e.Field)
	}
	return fmt.Sprintf("required field %q is missing on record %s", e.Field, e.RecordID)
}

// RateNotFoundError is returned when no pay rate exists for a season or a role within it.
// Role is empty when the whole season is missing from the rate table.
type RateNotFoundError struct {
	Season string
	Role   Role
}

func (e *RateNotFoundError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("no rate table entry for season %q", e.Season)
	}
	return fmt.Sprintf("no rate for role %q in season %q", e.Role, e.Season)
}

// MissingRateDataError is returned when camp prices are missing for a year and bracket
type MissingRateDataError struct {
	Year    int
	Bracket Bracket
}

func (e *MissingRateDataError) Error() string {
	return fmt.Sprintf("no camp rates for year %d (%s)", e.Year, e.Bracket)
}

// UnsupportedRoleError is returned when an operation has no meaning for a role, e.g. camp goals for u13
type UnsupportedRoleError struct {
	Role      Role
	Operation string
}

func (e *UnsupportedRoleError) Error() string {
	return fmt.Sprintf("%s is not defined for role %q", e.Operation, e.Role)
}
