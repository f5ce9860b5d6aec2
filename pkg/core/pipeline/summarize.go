package pipeline

import (
	"slices"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/utils/logging"
)

// FullKey groups payouts per person and account
var FullKey = []model.Column{model.ColWorkerName, model.ColEmail, model.ColBankAccountNumber, model.ColRole}

// MinimalKey is used when the record set lacks the columns FullKey and its sums need
var MinimalKey = []model.Column{model.ColWorkerName, model.ColRole}

// fullKeyRequires lists the columns a full summary needs besides the key itself
var fullKeyRequires = []model.Column{model.ColUnitsCompleted, model.ColCost, model.ColHoursWorked}

// DisplayColumns is the column set of an itemized report
var DisplayColumns = []model.Column{
	model.ColWorkerName,
	model.ColEmail,
	model.ColBankAccountNumber,
	model.ColRole,
	model.ColProject,
	model.ColGroup,
	model.ColWorkType,
	model.ColComments,
	model.ColCost,
	model.ColHoursWorked,
	model.ColUnitsCompleted,
	model.ColDateCompleted,
}

// Summary is one group of summed work. Fields outside the grouping key are empty.
type Summary struct {
	WorkerName        string
	Email             string
	BankAccountNumber string
	Role              model.Role
	Season            string
	Year              int

	HoursWorked    float64
	Cost           float64
	UnitsCompleted float64
	Records        int
}

func (s *Summary) add(rec model.WorkLog) {
	s.HoursWorked += rec.HoursWorked
	s.Cost += rec.Cost
	s.UnitsCompleted += rec.Units()
	s.Records++
}

type summaryKey struct {
	workerName  string
	email       string
	bankAccount string
	role        model.Role
	season      string
	year        int
}

func keyFor(rec model.WorkLog, key []model.Column) summaryKey {
	var k summaryKey
	for _, c := range key {
		switch c {
		case model.ColWorkerName:
			k.workerName = rec.WorkerName
		case model.ColEmail:
			k.email = rec.Email
		case model.ColBankAccountNumber:
			k.bankAccount = rec.BankAccountNumber
		case model.ColRole:
			k.role = rec.Role
		case model.ColSeason:
			k.season = rec.Season
		case model.ColDateCompleted:
			k.year = rec.DateCompleted.Year()
		}
	}
	return k
}

// group sums rows by key, keeping groups in first-seen order
func group(rows []model.WorkLog, key []model.Column) []Summary {
	index := make(map[summaryKey]int)
	var out []Summary
	for _, rec := range rows {
		k := keyFor(rec, key)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Summary{
				WorkerName:        k.workerName,
				Email:             k.email,
				BankAccountNumber: k.bankAccount,
				Role:              k.role,
				Season:            k.season,
				Year:              k.year,
			})
		}
		out[i].add(rec)
	}
	return out
}

// Summarize sums cost, hours and units per worker. It groups by FullKey when
// the record set carries the needed columns and falls back to MinimalKey with a
// warning otherwise. The key actually used is returned with the summaries.
func (p *Pipeline) Summarize(rs model.RecordSet) ([]Summary, []model.Column) {
	key := FullKey
	if missing := rs.Columns.Missing(slices.Concat(FullKey, fullKeyRequires)...); len(missing) > 0 {
		p.logger().Warn("Missing columns for full grouping, using minimal key",
			zap.String(logging.FieldOperation, "summarize"),
			zap.Any(logging.FieldColumns, missing))
		key = MinimalKey
	}
	return group(rs.Rows, key), key
}

// SummarizeBySeason sums per worker, season and role
func (p *Pipeline) SummarizeBySeason(rs model.RecordSet) []Summary {
	if !p.requireColumn(rs, model.ColSeason, "summarize_by_season") {
		return group(rs.Rows, MinimalKey)
	}
	return group(rs.Rows, []model.Column{model.ColWorkerName, model.ColSeason, model.ColRole})
}

// SummarizeByYear sums per worker, calendar year of completion and role
func (p *Pipeline) SummarizeByYear(rs model.RecordSet) []Summary {
	if !p.requireColumn(rs, model.ColDateCompleted, "summarize_by_year") {
		return group(rs.Rows, MinimalKey)
	}
	return group(rs.Rows, []model.Column{model.ColWorkerName, model.ColDateCompleted, model.ColRole})
}

// Itemize returns the rows unchanged in number but restricted to DisplayColumns
func (p *Pipeline) Itemize(rs model.RecordSet) model.RecordSet {
	cols := model.NewColumnSet()
	for _, c := range DisplayColumns {
		if rs.Columns.Has(c) {
			cols.Add(c)
		}
	}

	rows := make([]model.WorkLog, len(rs.Rows))
	for i, rec := range rs.Rows {
		rows[i] = model.WorkLog{
			WorkerName:        rec.WorkerName,
			Email:             rec.Email,
			BankAccountNumber: rec.BankAccountNumber,
			Role:              rec.Role,
			Project:           rec.Project,
			Group:             rec.Group,
			WorkType:          rec.WorkType,
			Comments:          rec.Comments,
			Cost:              rec.Cost,
			HoursWorked:       rec.HoursWorked,
			UnitsCompleted:    rec.UnitsCompleted,
			DateCompleted:     rec.DateCompleted,
		}
	}
	return model.RecordSet{Columns: cols, Rows: rows}
}

// FilterInactive drops summaries that earned no more than cutoff. A cutoff of zero keeps everything.
func FilterInactive(summaries []Summary, cutoff float64) []Summary {
	if cutoff <= 0 {
		return summaries
	}
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.Cost > cutoff {
			out = append(out, s)
		}
	}
	return out
}

// Totals are the headline numbers of a record set
type Totals struct {
	Hours         float64
	Cost          float64
	Units         float64
	UniqueWorkers int
	Records       int
}

// Sub returns t - other, field by field
func (t Totals) Sub(other Totals) Totals {
	return Totals{
		Hours:         t.Hours - other.Hours,
		Cost:          t.Cost - other.Cost,
		Units:         t.Units - other.Units,
		UniqueWorkers: t.UniqueWorkers - other.UniqueWorkers,
		Records:       t.Records - other.Records,
	}
}

// Total sums a record set
func Total(rs model.RecordSet) Totals {
	workers := make(map[string]bool)
	var t Totals
	for _, rec := range rs.Rows {
		t.Hours += rec.HoursWorked
		t.Cost += rec.Cost
		t.Units += rec.Units()
		workers[rec.WorkerName] = true
	}
	t.UniqueWorkers = len(workers)
	t.Records = len(rs.Rows)
	return t
}

// SummaryTotals sums summaries the way Total sums the rows behind them
func SummaryTotals(summaries []Summary) Totals {
	workers := make(map[string]bool)
	var t Totals
	for _, s := range summaries {
		t.Hours += s.HoursWorked
		t.Cost += s.Cost
		t.Units += s.UnitsCompleted
		t.Records += s.Records
		workers[s.WorkerName] = true
	}
	t.UniqueWorkers = len(workers)
	return t
}
