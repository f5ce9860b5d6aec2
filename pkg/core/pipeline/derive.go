package pipeline

import (
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/role"
	"github.com/genf/workreport/pkg/core/worktype"
	"github.com/genf/workreport/pkg/utils/logging"
)

// Deriver computes the fields that are never trusted from storage:
// season (when absent), role, group, project and cost.
type Deriver struct {
	Classifier *role.Classifier
	Costs      *cost.Engine
	Logger     *zap.Logger
}

func NewDeriver(classifier *role.Classifier, costs *cost.Engine, logger *zap.Logger) *Deriver {
	return &Deriver{Classifier: classifier, Costs: costs, Logger: logging.OrNop(logger)}
}

// Derive returns a priced copy of rs. Rows whose cost cannot be computed are
// left out and returned as failures.
func (d *Deriver) Derive(rs model.RecordSet) (model.RecordSet, []cost.Failure) {
	out := rs.Copy()
	unresolved := 0

	for i := range out.Rows {
		rec := &out.Rows[i]

		if rec.Season == "" && !rec.DateCompleted.IsZero() {
			rec.Season = model.CurrentSeason(rec.DateCompleted).String()
		}

		// A birth date always wins over a stored role; without one the stored role is kept
		if rec.DateOfBirth != nil {
			if r, ok := d.Classifier.ApplyRole(rec.DateOfBirth, rec.Season); ok {
				rec.Role = r
			}
		}
		if rec.Role == "" {
			unresolved++
		}

		rec.Group, rec.Project = worktype.Split(rec.WorkType)
	}
	out.Columns.Add(model.ColSeason, model.ColRole, model.ColGroup, model.ColProject)

	if unresolved > 0 {
		logging.OrNop(d.Logger).Warn("Role could not be derived for some records",
			zap.Int("unresolved", unresolved),
			zap.Int(logging.FieldRows, len(out.Rows)))
	}

	return d.Costs.ApplyCosts(out)
}
