// Package pipeline filters and aggregates priced work log record sets for reporting.
// Every stage takes a record set and returns a new one; inputs are never mutated.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/utils/logging"
)

// Mode selects how a report presents the filtered rows
type Mode string

const (
	// ModeSummarized sums rows per worker
	ModeSummarized Mode = "summarized"
	// ModeItemized lists every row with the display columns
	ModeItemized Mode = "itemized"
)

func (m Mode) IsValid() bool {
	return m == ModeSummarized || m == ModeItemized
}

// ReportFilterConfig is everything a report run is filtered by.
// Empty lists leave that dimension unrestricted; a zero Range disables the date filter.
type ReportFilterConfig struct {
	Range     period.DateRange
	WorkTypes []string
	Groups    []string
	Projects  []string
	Seasons   []string
	Roles     []model.Role
	Workers   []string
	Mode      Mode
	// MinCost drops summaries earning no more than this amount (inactive members)
	MinCost float64
}

// Pipeline runs the filter and aggregation stages
type Pipeline struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{Logger: logging.OrNop(logger)}
}

func (p *Pipeline) logger() *zap.Logger {
	return logging.OrNop(p.Logger)
}

// Report is the result of one run
type Report struct {
	Filter ReportFilterConfig
	// Records are the filtered rows before grouping
	Records model.RecordSet
	// Summaries and Key are set in summarized mode
	Summaries []Summary
	Key       []model.Column
	// Items is set in itemized mode
	Items model.RecordSet
	// Totals cover the rows that made it into the report, after any MinCost cut
	Totals Totals
}

// Filter applies every filter in cfg to rs
func (p *Pipeline) Filter(rs model.RecordSet, cfg ReportFilterConfig) model.RecordSet {
	rs = p.FilterDates(rs, cfg.Range)
	rs = p.FilterWorkTypes(rs, cfg.WorkTypes)
	rs = p.FilterGroups(rs, cfg.Groups, cfg.Projects)
	rs = p.FilterSeasons(rs, cfg.Seasons)
	rs = p.FilterRoles(rs, cfg.Roles)
	rs = p.FilterWorkers(rs, cfg.Workers)
	return rs
}

// Run filters rs and groups it according to cfg.Mode (summarized when unset)
func (p *Pipeline) Run(rs model.RecordSet, cfg ReportFilterConfig) Report {
	filtered := p.Filter(rs, cfg)
	report := Report{
		Filter:  cfg,
		Records: filtered,
		Totals:  Total(filtered),
	}

	if cfg.Mode == ModeItemized {
		report.Items = p.Itemize(filtered)
	} else {
		summaries, key := p.Summarize(filtered)
		report.Summaries = FilterInactive(summaries, cfg.MinCost)
		report.Key = key
		if cfg.MinCost > 0 {
			report.Totals = SummaryTotals(report.Summaries)
		}
	}

	p.logger().Debug("Report run complete",
		zap.String("range", cfg.Range.String()),
		zap.Int(logging.FieldRows, filtered.Len()),
		zap.Float64("cost", report.Totals.Cost))
	return report
}

// PeriodComparison holds totals for a range and the equally long range before it
type PeriodComparison struct {
	Current       Totals
	Previous      Totals
	Delta         Totals
	CurrentRange  period.DateRange
	PreviousRange period.DateRange
}

// Compare runs the full filter and aggregation for cfg.Range and again for the
// period immediately before it.
func (p *Pipeline) Compare(rs model.RecordSet, cfg ReportFilterConfig) (PeriodComparison, error) {
	if err := cfg.Range.Validate(); err != nil {
		return PeriodComparison{}, fmt.Errorf("period comparison needs a date range: %w", err)
	}

	current := p.Run(rs, cfg)

	prevCfg := cfg
	prevCfg.Range = cfg.Range.Previous()
	previous := p.Run(rs, prevCfg)

	return PeriodComparison{
		Current:       current.Totals,
		Previous:      previous.Totals,
		Delta:         current.Totals.Sub(previous.Totals),
		CurrentRange:  cfg.Range,
		PreviousRange: prevCfg.Range,
	}, nil
}
