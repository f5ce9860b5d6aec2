package model

import (
	"strings"
	"time"
)

// Column names an optional field of a work log record set.
// Canonical names match the warehouse column names.
type Column string

const (
	ColID                Column = "id"
	ColWorkerID          Column = "worker_id"
	ColWorkerName        Column = "worker_name"
	ColEmail             Column = "email"
	ColBankAccountNumber Column = "bank_account_number"
	ColDateOfBirth       Column = "date_of_birth"
	ColWorkType          Column = "work_type"
	ColDateCompleted     Column = "date_completed"
	ColHoursWorked       Column = "hours_worked"
	ColUnitsCompleted    Column = "units_completed"
	ColHourlyRate        Column = "hourly_rate"
	ColRole              Column = "role"
	ColCost              Column = "cost"
	ColSeason            Column = "season"
	ColComments          Column = "comments"
	ColWorkLeader        Column = "work_leader"
	ColReviewed          Column = "reviewed"
	ColGroup             Column = "group"
	ColProject           Column = "project"
)

// ColumnSet records which columns a record set carries.
// Stages check it once instead of probing each row.
type ColumnSet map[Column]bool

// NewColumnSet builds a set from the given columns
func NewColumnSet(cols ...Column) ColumnSet {
	set := make(ColumnSet, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

func (s ColumnSet) Has(c Column) bool {
	return s[c]
}

// Missing returns the columns from cols that are not in the set, in order
func (s ColumnSet) Missing(cols ...Column) []Column {
	var missing []Column
	for _, c := range cols {
		if !s[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func (s ColumnSet) Add(cols ...Column) {
	for _, c := range cols {
		s[c] = true
	}
}

// Clone returns an independent copy
func (s ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(s))
	for c := range s {
		out[c] = true
	}
	return out
}

// WorkLog is one completed unit of work.
// Role, Cost, Group and Project are derived on every load and never trusted from storage.
type WorkLog struct {
	ID                string
	WorkerID          string
	WorkerName        string
	FirstName         string
	LastName          string
	Email             string
	BankAccountNumber string
	DateOfBirth       *time.Time

	WorkType       string
	DateCompleted  time.Time
	HoursWorked    float64
	UnitsCompleted *float64
	HourlyRate     *float64
	Season         string

	Comments   string
	WorkLeader string
	Reviewed   string

	Role    Role
	Cost    float64
	Group   string
	Project string
}

// FullName joins first and last name, falling back to WorkerName
func (w WorkLog) FullName() string {
	if w.FirstName == "" && w.LastName == "" {
		return w.WorkerName
	}
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}

// Units returns units completed, treating nil as zero
func (w WorkLog) Units() float64 {
	if w.UnitsCompleted == nil {
		return 0
	}
	return *w.UnitsCompleted
}

// RecordSet is a tabular set of work logs with explicit column presence
type RecordSet struct {
	Columns ColumnSet
	Rows    []WorkLog
}

// NewRecordSet builds a record set over rows carrying the given columns
func NewRecordSet(rows []WorkLog, cols ...Column) RecordSet {
	return RecordSet{Columns: NewColumnSet(cols...), Rows: rows}
}

func (rs RecordSet) Len() int {
	return len(rs.Rows)
}

// WithRows returns a record set sharing the column set but holding new rows
func (rs RecordSet) WithRows(rows []WorkLog) RecordSet {
	return RecordSet{Columns: rs.Columns.Clone(), Rows: rows}
}

// Copy returns a deep copy of the rows so callers can derive fields without mutating the input
func (rs RecordSet) Copy() RecordSet {
	rows := make([]WorkLog, len(rs.Rows))
	copy(rows, rs.Rows)
	return RecordSet{Columns: rs.Columns.Clone(), Rows: rows}
}
