package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/cache"
	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/pipeline"
	"github.com/genf/workreport/pkg/core/role"
	"github.com/genf/workreport/pkg/utils/logging"
)

// Sources bundles the collaborators work logs are loaded from.
// Live is optional; without it only the warehouse is read.
type Sources struct {
	Warehouse WarehouseReader
	Live      LiveFeed
	Cache     cache.Cache
	CacheTTL  time.Duration
	// Now is the clock used for deriving roles, time.Now when nil
	Now func() time.Time
}

func (s Sources) ttl() time.Duration {
	if s.CacheTTL <= 0 {
		return cache.DefaultTTL
	}
	return s.CacheTTL
}

func (s Sources) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// LoadResult contains derived work logs ready for reporting
type LoadResult struct {
	Records  model.RecordSet
	Failures []cost.Failure
	Range    period.DateRange
	Legacy   int
	Live     int
}

type fetched struct {
	rates    model.RateTable
	legacy   model.RecordSet
	live     model.RecordSet
	profiles []model.Member
}

// LoadWorkLogs fetches legacy and live work logs for r through the cache, joins
// live rows with member profiles, unions both sources, backfills identity fields
// and derives season, role, group, project and cost for every row.
func LoadWorkLogs(
	ctx context.Context,
	sources Sources,
	cfg *config.Config,
	logger *zap.Logger,
	r period.DateRange,
) (*LoadResult, error) {
	logger = logging.OrNop(logger)
	logger.Debug("Starting loadWorkLogs", zap.String("range", r.String()))

	data, err := fetchAll(ctx, sources, logger, r)
	if err != nil {
		return nil, err
	}

	live := joinProfiles(data.live, data.profiles)
	p := pipeline.New(logger)
	combined := p.Backfill(pipeline.Union(data.legacy, live))

	classifier := role.NewClassifier(logger)
	classifier.Now = sources.now
	engine := cost.NewEngine(data.rates, cfg.Fallback(), logger)
	engine.PieceRate = cfg.PieceRateRule()

	derived, failures := pipeline.NewDeriver(classifier, engine, logger).Derive(combined)

	logger.Info("Loaded work logs",
		zap.String("range", r.String()),
		zap.Int("legacy", data.legacy.Len()),
		zap.Int("live", live.Len()),
		zap.Int("priced", derived.Len()),
		zap.Int("failed", len(failures)))

	return &LoadResult{
		Records:  derived,
		Failures: failures,
		Range:    r,
		Legacy:   data.legacy.Len(),
		Live:     live.Len(),
	}, nil
}

// fetchAll reads every source concurrently. The first error wins.
func fetchAll(ctx context.Context, sources Sources, logger *zap.Logger, r period.DateRange) (*fetched, error) {
	if sources.Warehouse == nil {
		return nil, fmt.Errorf("no warehouse configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		out      fetched
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(what string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to fetch %s: %w", what, err)
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	ttl := sources.ttl()
	run("rates", func() (err error) {
		out.rates, err = cache.ReadThrough(ctx, sources.Cache, cache.Key("rates"), ttl, logger,
			sources.Warehouse.GetRates)
		return err
	})
	run("legacy work logs", func() (err error) {
		out.legacy, err = cache.ReadThrough(ctx, sources.Cache, cache.Key("legacy_work_logs", r.String()), ttl, logger,
			func(ctx context.Context) (model.RecordSet, error) { return sources.Warehouse.GetLegacyWorkLogs(ctx, r) })
		return err
	})
	if sources.Live != nil {
		run("job logs", func() (err error) {
			out.live, err = cache.ReadThrough(ctx, sources.Cache, cache.Key("job_logs", r.String()), ttl, logger,
				func(ctx context.Context) (model.RecordSet, error) { return sources.Live.JobLogs(ctx, r) })
			return err
		})
		run("profiles", func() (err error) {
			out.profiles, err = cache.ReadThrough(ctx, sources.Cache, cache.Key("profiles"), ttl, logger,
				sources.Live.Profiles)
			return err
		})
	} else {
		logger.Debug("No live feed configured, reading warehouse only")
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return &out, nil
}

// profileColumns are the live row fields filled from a member profile
var profileColumns = []model.Column{
	model.ColEmail,
	model.ColBankAccountNumber,
	model.ColDateOfBirth,
}

// joinProfiles fills identity fields of live rows from the profile with the same
// worker id. Parent profiles are never matched. Rows without a profile are kept.
func joinProfiles(rs model.RecordSet, profiles []model.Member) model.RecordSet {
	if len(profiles) == 0 || rs.Len() == 0 {
		return rs
	}

	byID := make(map[string]model.Member, len(profiles))
	for _, m := range profiles {
		if m.Role == model.OrgRoleParent || m.ID == "" {
			continue
		}
		byID[m.ID] = m
	}

	out := rs.Copy()
	for i := range out.Rows {
		rec := &out.Rows[i]
		m, ok := byID[rec.WorkerID]
		if !ok {
			continue
		}
		if rec.Email == "" {
			rec.Email = m.Email
		}
		if rec.BankAccountNumber == "" {
			rec.BankAccountNumber = m.BankAccountNumber
		}
		if rec.DateOfBirth == nil && m.DateOfBirth != nil {
			dob := *m.DateOfBirth
			rec.DateOfBirth = &dob
		}
		if rec.WorkerName == "" {
			rec.WorkerName = m.FullName()
		}
	}
	out.Columns.Add(profileColumns...)
	return out
}
