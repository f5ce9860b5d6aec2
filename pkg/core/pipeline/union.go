package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/utils/logging"
)

// BackfillColumns are the identity fields the live feed lacks and the legacy table has
var BackfillColumns = []model.Column{
	model.ColEmail,
	model.ColBankAccountNumber,
	model.ColDateOfBirth,
	model.ColWorkerID,
}

// Union concatenates record sets. The result carries every column any input carries;
// rows from a source without a column hold its zero value until Backfill fills them.
func Union(sets ...model.RecordSet) model.RecordSet {
	cols := model.NewColumnSet()
	n := 0
	for _, s := range sets {
		for c := range s.Columns {
			cols.Add(c)
		}
		n += len(s.Rows)
	}

	rows := make([]model.WorkLog, 0, n)
	for _, s := range sets {
		rows = append(rows, s.Rows...)
	}
	return model.RecordSet{Columns: cols, Rows: rows}
}

type identity struct {
	email       string
	bankAccount string
	dateOfBirth *time.Time
	workerID    string
}

func (id *identity) learn(rec model.WorkLog) {
	if rec.Email != "" {
		id.email = rec.Email
	}
	if rec.BankAccountNumber != "" {
		id.bankAccount = rec.BankAccountNumber
	}
	if rec.DateOfBirth != nil {
		dob := *rec.DateOfBirth
		id.dateOfBirth = &dob
	}
	if rec.WorkerID != "" {
		id.workerID = rec.WorkerID
	}
}

// fill sets the wanted empty fields of rec from id and returns the columns it filled
func (id *identity) fill(rec *model.WorkLog, want map[model.Column]bool) []model.Column {
	var filled []model.Column
	if want[model.ColEmail] && rec.Email == "" && id.email != "" {
		rec.Email = id.email
		filled = append(filled, model.ColEmail)
	}
	if want[model.ColBankAccountNumber] && rec.BankAccountNumber == "" && id.bankAccount != "" {
		rec.BankAccountNumber = id.bankAccount
		filled = append(filled, model.ColBankAccountNumber)
	}
	if want[model.ColDateOfBirth] && rec.DateOfBirth == nil && id.dateOfBirth != nil {
		dob := *id.dateOfBirth
		rec.DateOfBirth = &dob
		filled = append(filled, model.ColDateOfBirth)
	}
	if want[model.ColWorkerID] && rec.WorkerID == "" && id.workerID != "" {
		rec.WorkerID = id.workerID
		filled = append(filled, model.ColWorkerID)
	}
	return filled
}

// Backfill fills empty identity fields from other rows of the same worker, matched
// by worker name. The last non-empty value in row order wins. With no columns
// given it fills BackfillColumns.
func (p *Pipeline) Backfill(rs model.RecordSet, cols ...model.Column) model.RecordSet {
	if len(cols) == 0 {
		cols = BackfillColumns
	}
	if !p.requireColumn(rs, model.ColWorkerName, "backfill") {
		return rs
	}
	want := toSet(cols)

	known := make(map[string]*identity)
	for _, rec := range rs.Rows {
		if rec.WorkerName == "" {
			continue
		}
		id, ok := known[rec.WorkerName]
		if !ok {
			id = &identity{}
			known[rec.WorkerName] = id
		}
		id.learn(rec)
	}

	out := rs.Copy()
	filled := 0
	for i := range out.Rows {
		id, ok := known[out.Rows[i].WorkerName]
		if !ok {
			continue
		}
		for _, c := range id.fill(&out.Rows[i], want) {
			out.Columns.Add(c)
			filled++
		}
	}

	p.logger().Debug("Backfilled identity fields",
		zap.Int("filled", filled),
		zap.Int(logging.FieldRows, len(out.Rows)))
	return out
}
