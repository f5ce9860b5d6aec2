// Package ingest maps tabular rows from the warehouse, the spreadsheet export
// and the jobs API onto the canonical work log schema. Historical column names
// are renamed here so nothing downstream has to know about them.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/genf/workreport/pkg/core/model"
)

// field is a header a source can carry. Most map straight onto a Column;
// first and last name only contribute to worker_name.
type field struct {
	column model.Column
	set    func(rec *model.WorkLog, v any) (bool, error)
}

var (
	fieldFirstName = field{column: model.ColWorkerName, set: func(rec *model.WorkLog, v any) (bool, error) {
		s, ok := String(v)
		rec.FirstName = s
		return ok, nil
	}}
	fieldLastName = field{column: model.ColWorkerName, set: func(rec *model.WorkLog, v any) (bool, error) {
		s, ok := String(v)
		rec.LastName = s
		return ok, nil
	}}
)

func stringField(col model.Column, dst func(rec *model.WorkLog) *string) field {
	return field{column: col, set: func(rec *model.WorkLog, v any) (bool, error) {
		s, ok := String(v)
		*dst(rec) = s
		return ok, nil
	}}
}

func optionalFloatField(col model.Column, dst func(rec *model.WorkLog) **float64) field {
	return field{column: col, set: func(rec *model.WorkLog, v any) (bool, error) {
		f, ok, err := Float(v)
		if err != nil || !ok {
			return false, err
		}
		*dst(rec) = &f
		return true, nil
	}}
}

var canonicalFields = map[model.Column]field{
	model.ColID:         stringField(model.ColID, func(r *model.WorkLog) *string { return &r.ID }),
	model.ColWorkerID:   stringField(model.ColWorkerID, func(r *model.WorkLog) *string { return &r.WorkerID }),
	model.ColWorkerName: stringField(model.ColWorkerName, func(r *model.WorkLog) *string { return &r.WorkerName }),
	model.ColEmail:      stringField(model.ColEmail, func(r *model.WorkLog) *string { return &r.Email }),
	model.ColBankAccountNumber: {column: model.ColBankAccountNumber, set: func(rec *model.WorkLog, v any) (bool, error) {
		s, ok := BankAccount(v)
		rec.BankAccountNumber = s
		return ok, nil
	}},
	model.ColDateOfBirth: {column: model.ColDateOfBirth, set: func(rec *model.WorkLog, v any) (bool, error) {
		d, ok, err := Date(v)
		if err != nil || !ok {
			// an unreadable birth date only means the role cannot be derived
			return false, nil
		}
		rec.DateOfBirth = &d
		return true, nil
	}},
	model.ColWorkType: stringField(model.ColWorkType, func(r *model.WorkLog) *string { return &r.WorkType }),
	model.ColDateCompleted: {column: model.ColDateCompleted, set: func(rec *model.WorkLog, v any) (bool, error) {
		d, ok, err := Date(v)
		if err != nil {
			return false, err
		}
		rec.DateCompleted = d
		return ok, nil
	}},
	model.ColHoursWorked: {column: model.ColHoursWorked, set: func(rec *model.WorkLog, v any) (bool, error) {
		f, ok, err := Float(v)
		if err != nil {
			return false, err
		}
		if f < 0 {
			return false, fmt.Errorf("hours_worked is negative: %v", f)
		}
		rec.HoursWorked = f
		return ok, nil
	}},
	model.ColUnitsCompleted: optionalFloatField(model.ColUnitsCompleted, func(r *model.WorkLog) **float64 { return &r.UnitsCompleted }),
	model.ColHourlyRate:     optionalFloatField(model.ColHourlyRate, func(r *model.WorkLog) **float64 { return &r.HourlyRate }),
	model.ColRole: {column: model.ColRole, set: func(rec *model.WorkLog, v any) (bool, error) {
		s, ok := String(v)
		if !ok {
			return false, nil
		}
		role, err := model.ParseRole(s)
		if err != nil {
			// stored roles are advisory; an unknown one is treated as absent
			return false, nil
		}
		rec.Role = role
		return true, nil
	}},
	model.ColCost: {column: model.ColCost, set: func(rec *model.WorkLog, v any) (bool, error) {
		f, ok, err := Float(v)
		if err != nil {
			return false, err
		}
		rec.Cost = f
		return ok, nil
	}},
	model.ColSeason:     stringField(model.ColSeason, func(r *model.WorkLog) *string { return &r.Season }),
	model.ColComments:   stringField(model.ColComments, func(r *model.WorkLog) *string { return &r.Comments }),
	model.ColWorkLeader: stringField(model.ColWorkLeader, func(r *model.WorkLog) *string { return &r.WorkLeader }),
	model.ColReviewed:   stringField(model.ColReviewed, func(r *model.WorkLog) *string { return &r.Reviewed }),
}

// Aliases maps historical and source-specific header names onto canonical columns.
// Headers are compared lower-cased with surrounding whitespace removed.
var Aliases = map[string]model.Column{
	"navn":            model.ColWorkerName,
	"name":            model.ColWorkerName,
	"kostnad":         model.ColCost,
	"timer":           model.ColHoursWorked,
	"dato":            model.ColDateCompleted,
	"rolle":           model.ColRole,
	"number_of_units": model.ColUnitsCompleted,
	"antall":          model.ColUnitsCompleted,
	"sesong":          model.ColSeason,
	"epost":           model.ColEmail,
	"kontonummer":     model.ColBankAccountNumber,
	"fodselsdato":     model.ColDateOfBirth,
	"kommentar":       model.ColComments,
	"person_id":       model.ColWorkerID,
}

// Derived columns are recomputed on every load, so stored values are dropped
var ignored = map[string]bool{
	"gruppe":   true,
	"prosjekt": true,
	"group":    true,
	"project":  true,
}

func resolve(header string) (field, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	switch h {
	case "worker_first_name", "first_name", "fornavn":
		return fieldFirstName, true
	case "worker_last_name", "last_name", "etternavn":
		return fieldLastName, true
	}
	if ignored[h] {
		return field{}, false
	}
	if col, ok := Aliases[h]; ok {
		return canonicalFields[col], true
	}
	f, ok := canonicalFields[model.Column(h)]
	return f, ok
}

// CanonicalColumn returns the canonical column a header maps to
func CanonicalColumn(header string) (model.Column, bool) {
	f, ok := resolve(header)
	if !ok {
		return "", false
	}
	return f.column, true
}

// FromTable converts a header row plus data rows into a record set.
// The column set holds every known column the headers carry, whether or not
// any row has a value for it. Unknown headers are skipped.
func FromTable(headers []string, rows [][]any) (model.RecordSet, error) {
	fields := make([]*field, len(headers))
	cols := model.NewColumnSet()
	for i, h := range headers {
		f, ok := resolve(h)
		if !ok {
			continue
		}
		fields[i] = &f
		cols.Add(f.column)
	}

	out := make([]model.WorkLog, 0, len(rows))
	for r, row := range rows {
		var rec model.WorkLog
		for i, v := range row {
			if i >= len(fields) || fields[i] == nil {
				continue
			}
			if _, err := fields[i].set(&rec, v); err != nil {
				return model.RecordSet{}, fmt.Errorf("row %d, column %q: %w", r, headers[i], err)
			}
		}
		if rec.WorkerName == "" {
			rec.WorkerName = rec.FullName()
		}
		out = append(out, rec)
	}

	return model.RecordSet{Columns: cols, Rows: out}, nil
}

// ExportColumns is the column order used when writing record sets out
var ExportColumns = []model.Column{
	model.ColID,
	model.ColWorkerID,
	model.ColWorkerName,
	model.ColRole,
	model.ColEmail,
	model.ColBankAccountNumber,
	model.ColSeason,
	model.ColComments,
	model.ColDateCompleted,
	model.ColWorkType,
	model.ColGroup,
	model.ColProject,
	model.ColHoursWorked,
	model.ColUnitsCompleted,
	model.ColCost,
}

// Value returns the canonical value of one column of rec, nil when absent
func Value(rec model.WorkLog, col model.Column) any {
	switch col {
	case model.ColID:
		return nullable(rec.ID)
	case model.ColWorkerID:
		return nullable(rec.WorkerID)
	case model.ColWorkerName:
		return nullable(rec.WorkerName)
	case model.ColEmail:
		return nullable(rec.Email)
	case model.ColBankAccountNumber:
		return nullable(rec.BankAccountNumber)
	case model.ColDateOfBirth:
		if rec.DateOfBirth == nil {
			return nil
		}
		return *rec.DateOfBirth
	case model.ColWorkType:
		return nullable(rec.WorkType)
	case model.ColDateCompleted:
		if rec.DateCompleted.IsZero() {
			return nil
		}
		return rec.DateCompleted
	case model.ColHoursWorked:
		return rec.HoursWorked
	case model.ColUnitsCompleted:
		if rec.UnitsCompleted == nil {
			return nil
		}
		return *rec.UnitsCompleted
	case model.ColHourlyRate:
		if rec.HourlyRate == nil {
			return nil
		}
		return *rec.HourlyRate
	case model.ColRole:
		return nullable(string(rec.Role))
	case model.ColCost:
		return rec.Cost
	case model.ColSeason:
		return nullable(rec.Season)
	case model.ColComments:
		return nullable(rec.Comments)
	case model.ColWorkLeader:
		return nullable(rec.WorkLeader)
	case model.ColReviewed:
		return nullable(rec.Reviewed)
	case model.ColGroup:
		return nullable(rec.Group)
	case model.ColProject:
		return nullable(rec.Project)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// StorageColumns is the column order of the derived work log table in the warehouse
var StorageColumns = []model.Column{
	model.ColID,
	model.ColWorkerID,
	model.ColWorkerName,
	model.ColEmail,
	model.ColBankAccountNumber,
	model.ColDateOfBirth,
	model.ColWorkType,
	model.ColDateCompleted,
	model.ColHoursWorked,
	model.ColUnitsCompleted,
	model.ColHourlyRate,
	model.ColRole,
	model.ColCost,
	model.ColSeason,
	model.ColComments,
}

// ToTable is the inverse of FromTable for the columns rs carries, in ExportColumns order
func ToTable(rs model.RecordSet) ([]string, [][]any) {
	return TableOf(rs, ExportColumns)
}

// TableOf renders the columns of order that rs carries
func TableOf(rs model.RecordSet, order []model.Column) ([]string, [][]any) {
	var cols []model.Column
	for _, c := range order {
		if rs.Columns.Has(c) {
			cols = append(cols, c)
		}
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = string(c)
	}

	rows := make([][]any, len(rs.Rows))
	for r, rec := range rs.Rows {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = Value(rec, c)
		}
		rows[r] = row
	}
	return headers, rows
}

// FormatValue renders a canonical value for text output such as a spreadsheet cell
func FormatValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02")
	}
	return v
}
