package pipeline

import (
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/utils/logging"
)

// keep returns the rows of rs matching pred, sharing the column set
func keep(rs model.RecordSet, pred func(model.WorkLog) bool) model.RecordSet {
	rows := make([]model.WorkLog, 0, len(rs.Rows))
	for _, rec := range rs.Rows {
		if pred(rec) {
			rows = append(rows, rec)
		}
	}
	return rs.WithRows(rows)
}

func toSet[T comparable](values []T) map[T]bool {
	set := make(map[T]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// requireColumn logs and reports false when rs lacks col; the caller then skips its filter
func (p *Pipeline) requireColumn(rs model.RecordSet, col model.Column, operation string) bool {
	if rs.Columns.Has(col) {
		return true
	}
	p.logger().Warn("Column not found, skipping stage",
		zap.String(logging.FieldOperation, operation),
		zap.String("column", string(col)))
	return false
}

// FilterDates keeps records completed within r, both ends included.
// A zero range or a record set without date_completed is returned unchanged.
func (p *Pipeline) FilterDates(rs model.RecordSet, r period.DateRange) model.RecordSet {
	if r.IsZero() {
		return rs
	}
	if !p.requireColumn(rs, model.ColDateCompleted, "filter_dates") {
		return rs
	}
	return keep(rs, func(rec model.WorkLog) bool {
		return !rec.DateCompleted.IsZero() && r.Contains(rec.DateCompleted)
	})
}

// FilterWorkTypes keeps records whose work type is listed. No work types means no restriction.
func (p *Pipeline) FilterWorkTypes(rs model.RecordSet, workTypes []string) model.RecordSet {
	if len(workTypes) == 0 {
		p.logger().Debug("No work types selected, skipping work type filter")
		return rs
	}
	if !p.requireColumn(rs, model.ColWorkType, "filter_work_types") {
		return rs
	}
	allowed := toSet(workTypes)
	return keep(rs, func(rec model.WorkLog) bool { return allowed[rec.WorkType] })
}

// FilterGroups keeps records in any of the given groups and projects.
// Either list may be empty to leave that dimension unrestricted.
func (p *Pipeline) FilterGroups(rs model.RecordSet, groups, projects []string) model.RecordSet {
	if len(groups) > 0 && p.requireColumn(rs, model.ColGroup, "filter_groups") {
		allowed := toSet(groups)
		rs = keep(rs, func(rec model.WorkLog) bool { return allowed[rec.Group] })
	}
	if len(projects) > 0 && p.requireColumn(rs, model.ColProject, "filter_projects") {
		allowed := toSet(projects)
		rs = keep(rs, func(rec model.WorkLog) bool { return allowed[rec.Project] })
	}
	return rs
}

// FilterRoles keeps records whose derived role is selected. No roles means all roles.
func (p *Pipeline) FilterRoles(rs model.RecordSet, roles []model.Role) model.RecordSet {
	if len(roles) == 0 {
		return rs
	}
	if !p.requireColumn(rs, model.ColRole, "filter_roles") {
		return rs
	}
	allowed := toSet(roles)
	return keep(rs, func(rec model.WorkLog) bool { return allowed[rec.Role] })
}

// FilterWorkers keeps records for the named workers
func (p *Pipeline) FilterWorkers(rs model.RecordSet, workers []string) model.RecordSet {
	if len(workers) == 0 {
		return rs
	}
	if !p.requireColumn(rs, model.ColWorkerName, "filter_workers") {
		return rs
	}
	allowed := toSet(workers)
	return keep(rs, func(rec model.WorkLog) bool { return allowed[rec.WorkerName] })
}

// FilterSeasons keeps records from the listed seasons
func (p *Pipeline) FilterSeasons(rs model.RecordSet, seasons []string) model.RecordSet {
	if len(seasons) == 0 {
		return rs
	}
	if !p.requireColumn(rs, model.ColSeason, "filter_seasons") {
		return rs
	}
	allowed := toSet(seasons)
	return keep(rs, func(rec model.WorkLog) bool { return allowed[rec.Season] })
}
