package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/goal"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/pipeline"
	"github.com/genf/workreport/pkg/utils/logging"
)

// SeasonalReviewResult compares each season's earnings with its camp costs
type SeasonalReviewResult struct {
	Seasons []string
	// Workers lists per-worker season goals, leaving out workers at or below the inactive cut-off
	Workers     []goal.WorkerGoal
	Comparisons []goal.Comparison
	Failures    []cost.Failure
}

// YearlyReviewResult compares calendar-year earnings with estimated camp costs
type YearlyReviewResult struct {
	Years       []int
	Costs       []goal.YearCosts
	Comparisons []goal.Comparison
	Failures    []cost.Failure
}

func goalModel(ctx context.Context, store WarehouseReader, cfg *config.Config) (*goal.Model, error) {
	camps, err := store.GetCampRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch camp rates: %w", err)
	}
	yearly, err := store.GetYearlyMemberCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch yearly member counts: %w", err)
	}
	m := goal.New(camps, yearly, cfg.MentorHeadcount)
	m.ActiveThreshold = cfg.ActiveThreshold
	return m, nil
}

// seasonsRange spans the first day of the earliest season to the last day of the latest
func seasonsRange(seasons []string) (period.DateRange, error) {
	var r period.DateRange
	for _, s := range seasons {
		parsed, err := model.ParseSeason(s)
		if err != nil {
			return period.DateRange{}, err
		}
		sr := period.ForSeason(parsed)
		if r.IsZero() || sr.From.Before(r.From) {
			r.From = sr.From
		}
		if r.To.IsZero() || sr.To.After(r.To) {
			r.To = sr.To
		}
	}
	return r, nil
}

// SeasonalReview compares earnings with camp costs for each season. With no
// seasons given it reviews the configured season, or the current one.
func SeasonalReview(
	ctx context.Context,
	sources Sources,
	cfg *config.Config,
	logger *zap.Logger,
	seasons []string,
) (*SeasonalReviewResult, error) {
	logger = logging.OrNop(logger)
	if len(seasons) == 0 {
		if cfg.Season != "" {
			seasons = []string{cfg.Season}
		} else {
			seasons = []string{model.CurrentSeason(sources.now()).String()}
		}
	}
	r, err := seasonsRange(seasons)
	if err != nil {
		return nil, err
	}

	loaded, err := LoadWorkLogs(ctx, sources, cfg, logger, r)
	if err != nil {
		return nil, err
	}
	gm, err := goalModel(ctx, sources.Warehouse, cfg)
	if err != nil {
		return nil, err
	}
	counts, err := sources.Warehouse.GetSeasonalMemberCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasonal member counts: %w", err)
	}

	p := pipeline.New(logger)
	rs := p.FilterRoles(p.FilterSeasons(loaded.Records, seasons), cfg.ParsedRoles())
	summaries := p.SummarizeBySeason(rs)
	active := pipeline.FilterInactive(summaries, cfg.InactiveCutoff)

	compared := summaries
	if cfg.ActiveOnlyGoals {
		compared = active
	}
	comparisons, err := gm.SeasonComparison(compared, counts)
	if err != nil {
		return nil, err
	}
	workers, err := gm.WorkerGoals(active)
	if err != nil {
		return nil, err
	}

	logger.Debug("Seasonal review complete",
		zap.Strings("seasons", seasons),
		zap.Int("workers", len(workers)))
	return &SeasonalReviewResult{
		Seasons:     seasons,
		Workers:     workers,
		Comparisons: comparisons,
		Failures:    loaded.Failures,
	}, nil
}

// YearlyReview compares earnings with estimated camp costs for each calendar
// year in [fromYear, toYear)
func YearlyReview(
	ctx context.Context,
	sources Sources,
	cfg *config.Config,
	logger *zap.Logger,
	fromYear, toYear int,
) (*YearlyReviewResult, error) {
	logger = logging.OrNop(logger)
	if toYear <= fromYear {
		return nil, fmt.Errorf("invalid year range %d..%d", fromYear, toYear)
	}

	r, err := period.NewDateRange(
		time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(toYear-1, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		return nil, err
	}

	loaded, err := LoadWorkLogs(ctx, sources, cfg, logger, r)
	if err != nil {
		return nil, err
	}
	gm, err := goalModel(ctx, sources.Warehouse, cfg)
	if err != nil {
		return nil, err
	}

	years := make([]int, 0, toYear-fromYear)
	for y := fromYear; y < toYear; y++ {
		years = append(years, y)
	}

	p := pipeline.New(logger)
	summaries := p.SummarizeByYear(p.FilterRoles(loaded.Records, cfg.ParsedRoles()))
	comparisons, err := gm.YearComparison(summaries, years)
	if err != nil {
		return nil, err
	}
	costs, err := gm.CampCostsForYears(fromYear, toYear)
	if err != nil {
		return nil, err
	}

	return &YearlyReviewResult{
		Years:       years,
		Costs:       costs,
		Comparisons: comparisons,
		Failures:    loaded.Failures,
	}, nil
}
