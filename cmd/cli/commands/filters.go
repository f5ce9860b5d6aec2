package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/pipeline"
)

const monthLayout = "2006-01"

// reportFlags are the filter flags shared by the report commands
type reportFlags struct {
	from      string
	to        string
	month     string
	all       bool
	seasons   []string
	roles     []string
	workTypes []string
	groups    []string
	projects  []string
	workers   []string
	mode      string
	minCost   float64
}

func addReportFlags(cmd *cobra.Command, f *reportFlags) {
	cmd.Flags().StringVar(&f.from, "from", "", "First date of the report (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last date of the report (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.month, "month", "", "Report a whole calendar month (YYYY-MM)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Ignore the date range and report every work log")
	cmd.Flags().StringSliceVar(&f.seasons, "season", nil, "Only include these seasons (YY/YY)")
	cmd.Flags().StringSliceVar(&f.roles, "role", nil, "Only include these roles (defaults to the configured roles)")
	cmd.Flags().StringSliceVar(&f.workTypes, "work-type", nil, "Only include these work types")
	cmd.Flags().StringSliceVar(&f.groups, "group", nil, "Only include these work type groups")
	cmd.Flags().StringSliceVar(&f.projects, "project", nil, "Only include these projects")
	cmd.Flags().StringSliceVar(&f.workers, "worker", nil, "Only include these workers")
	cmd.Flags().StringVar(&f.mode, "mode", string(pipeline.ModeSummarized), "Report mode (summarized or itemized)")
	cmd.Flags().Float64Var(&f.minCost, "min-cost", 0, "Hide summarized rows earning less than this")
}

// dateRange resolves the report range. Explicit dates win over --month, which
// wins over the configured range.
func (f *reportFlags) dateRange(cfg *config.Config, now time.Time) (period.DateRange, error) {
	switch {
	case f.all:
		if f.from != "" || f.to != "" || f.month != "" {
			return period.DateRange{}, fmt.Errorf("--all cannot be combined with --from, --to or --month")
		}
		return period.DateRange{}, nil
	case f.from != "" || f.to != "":
		if f.from == "" || f.to == "" {
			return period.DateRange{}, fmt.Errorf("--from and --to must be given together")
		}
		return period.ParseDateRange(f.from, f.to)
	case f.month != "":
		first, err := time.Parse(monthLayout, f.month)
		if err != nil {
			return period.DateRange{}, fmt.Errorf("month must be YYYY-MM, got: %s", f.month)
		}
		return period.Month(first), nil
	case len(f.seasons) > 0:
		// The season filter selects rows; the range only bounds what is loaded
		return period.DateRange{}, nil
	}
	return cfg.DateRange(now)
}

// filter builds the engine filter from the flags and the configuration
func (f *reportFlags) filter(cfg *config.Config, now time.Time) (pipeline.ReportFilterConfig, error) {
	r, err := f.dateRange(cfg, now)
	if err != nil {
		return pipeline.ReportFilterConfig{}, err
	}

	for _, s := range f.seasons {
		if _, err := model.ParseSeason(s); err != nil {
			return pipeline.ReportFilterConfig{}, err
		}
	}

	roles := cfg.ParsedRoles()
	if len(f.roles) > 0 {
		roles = make([]model.Role, 0, len(f.roles))
		for _, s := range f.roles {
			role, err := model.ParseRole(s)
			if err != nil {
				return pipeline.ReportFilterConfig{}, err
			}
			roles = append(roles, role)
		}
	}

	mode := pipeline.Mode(f.mode)
	if !mode.IsValid() {
		return pipeline.ReportFilterConfig{}, fmt.Errorf("unknown report mode %q", f.mode)
	}

	return pipeline.ReportFilterConfig{
		Range:     r,
		WorkTypes: f.workTypes,
		Groups:    f.groups,
		Projects:  f.projects,
		Seasons:   f.seasons,
		Roles:     roles,
		Workers:   f.workers,
		Mode:      mode,
		MinCost:   f.minCost,
	}, nil
}
