package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// workLogNamespace seeds deterministic ids for rows that arrive without one
var workLogNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("workreport.derived_work_logs"))

// StoredWorkLog is a derived work log row as persisted in the warehouse
type StoredWorkLog struct {
	ID                string     `ssql_header:"id" ssql_type:"uuid"`
	WorkerID          string     `ssql_header:"worker_id" ssql_type:"text"`
	WorkerName        string     `ssql_header:"worker_name" ssql_type:"text"`
	Email             string     `ssql_header:"email" ssql_type:"text"`
	BankAccountNumber string     `ssql_header:"bank_account_number" ssql_type:"text"`
	DateOfBirth       *time.Time `ssql_header:"date_of_birth" ssql_type:"date"`
	WorkType          string     `ssql_header:"work_type" ssql_type:"text"`
	DateCompleted     time.Time  `ssql_header:"date_completed" ssql_type:"date"`
	HoursWorked       float64    `ssql_header:"hours_worked" ssql_type:"float"`
	UnitsCompleted    *float64   `ssql_header:"units_completed" ssql_type:"float"`
	HourlyRate        *float64   `ssql_header:"hourly_rate" ssql_type:"float"`
	Role              string     `ssql_header:"role" ssql_type:"text"`
	Cost              float64    `ssql_header:"cost" ssql_type:"float"`
	Season            string     `ssql_header:"season" ssql_type:"text"`
	Comments          string     `ssql_header:"comments" ssql_type:"text"`
}

func (StoredWorkLog) TableName() string { return TableDerivedWorkLogs }

// WorkLogID returns rec's id, or a stable id derived from its content
func WorkLogID(rec model.WorkLog) string {
	if rec.ID != "" {
		return rec.ID
	}
	key := fmt.Sprintf("%s|%s|%s|%s|%g|%g|%s",
		rec.WorkerID, rec.WorkerName, rec.DateCompleted.Format(period.DateLayout),
		rec.WorkType, rec.HoursWorked, rec.Units(), rec.Comments)
	return uuid.NewSHA1(workLogNamespace, []byte(key)).String()
}

// StoredRows converts a derived record set into warehouse rows
func StoredRows(rs model.RecordSet) []StoredWorkLog {
	out := make([]StoredWorkLog, len(rs.Rows))
	for i, rec := range rs.Rows {
		out[i] = StoredWorkLog{
			ID:                WorkLogID(rec),
			WorkerID:          rec.WorkerID,
			WorkerName:        rec.WorkerName,
			Email:             rec.Email,
			BankAccountNumber: rec.BankAccountNumber,
			DateOfBirth:       rec.DateOfBirth,
			WorkType:          rec.WorkType,
			DateCompleted:     rec.DateCompleted,
			HoursWorked:       rec.HoursWorked,
			UnitsCompleted:    rec.UnitsCompleted,
			HourlyRate:        rec.HourlyRate,
			Role:              string(rec.Role),
			Cost:              rec.Cost,
			Season:            rec.Season,
			Comments:          rec.Comments,
		}
	}
	return out
}
