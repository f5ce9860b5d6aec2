package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/pipeline"
	"github.com/genf/workreport/pkg/utils/logging"
)

// ReportResult is a report run with its supporting breakdowns
type ReportResult struct {
	Report pipeline.Report
	// Comparison is nil when the report has no date range
	Comparison *pipeline.PeriodComparison
	Monthly    []pipeline.MonthlyPoint
	WorkTypes  []pipeline.WorkTypeTotal
	Failures   []cost.Failure
}

// loadRange widens r so it also covers the comparison period before it
func loadRange(r period.DateRange) period.DateRange {
	if r.IsZero() {
		return r
	}
	return period.DateRange{From: r.Previous().From, To: r.To}
}

// BuildReport loads work logs covering filter.Range and the period before it, then
// runs the report and the period-over-period comparison
func BuildReport(
	ctx context.Context,
	sources Sources,
	cfg *config.Config,
	logger *zap.Logger,
	filter pipeline.ReportFilterConfig,
) (*ReportResult, error) {
	logger = logging.OrNop(logger)
	if filter.Mode != "" && !filter.Mode.IsValid() {
		return nil, fmt.Errorf("unknown report mode %q", filter.Mode)
	}

	loaded, err := LoadWorkLogs(ctx, sources, cfg, logger, loadRange(filter.Range))
	if err != nil {
		return nil, err
	}

	p := pipeline.New(logger)
	result := &ReportResult{
		Report:   p.Run(loaded.Records, filter),
		Failures: loaded.Failures,
	}
	result.Monthly = p.MonthlyCumulative(result.Report.Records)
	result.WorkTypes = p.WorkTypeBreakdown(result.Report.Records)

	if !filter.Range.IsZero() {
		cmp, err := p.Compare(loaded.Records, filter)
		if err != nil {
			return nil, err
		}
		result.Comparison = &cmp
	}

	logger.Debug("Report built",
		zap.Int(logging.FieldRows, result.Report.Records.Len()),
		zap.Int("summaries", len(result.Report.Summaries)),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}
