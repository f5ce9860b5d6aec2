// Package cost computes the monetary value of work log records from season rate tables.
package cost

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/utils/logging"
)

// SeasonFallback decides what happens when a record's season has no rate table entry
type SeasonFallback string

const (
	// FallbackStrict fails the record with a RateNotFoundError
	FallbackStrict SeasonFallback = "strict"
	// FallbackLatest prices the record with the most recent season's rates and logs a warning
	FallbackLatest SeasonFallback = "latest"
)

func (f SeasonFallback) IsValid() bool {
	return f == FallbackStrict || f == FallbackLatest
}

// PieceRateRule describes work that is paid per unit instead of per hour
type PieceRateRule struct {
	WorkType    string
	Role        model.Role
	RateKey     string
	DefaultRate float64
}

// DefaultPieceRate pays genf firewood packing per bag
var DefaultPieceRate = PieceRateRule{
	WorkType:    "glenne_vedpakking",
	Role:        model.RoleGenf,
	RateKey:     "vedsekk",
	DefaultRate: 15,
}

func (p PieceRateRule) Applies(rec model.WorkLog) bool {
	return rec.WorkType == p.WorkType && rec.Role == p.Role
}

// Engine prices work log records
type Engine struct {
	Rates     model.RateTable
	Fallback  SeasonFallback
	PieceRate PieceRateRule
	Logger    *zap.Logger
}

// NewEngine creates an engine with the default piece-rate rule
func NewEngine(rates model.RateTable, fallback SeasonFallback, logger *zap.Logger) *Engine {
	return &Engine{
		Rates:     rates,
		Fallback:  fallback,
		PieceRate: DefaultPieceRate,
		Logger:    logging.OrNop(logger),
	}
}

func (e *Engine) logger() *zap.Logger {
	return logging.OrNop(e.Logger)
}

// RateFor returns the rate table entry for season, applying the fallback policy
func (e *Engine) RateFor(season string) (model.Rate, error) {
	if rate, ok := e.Rates.Find(season); ok {
		return rate, nil
	}

	if e.Fallback == FallbackLatest {
		if rate, ok := e.Rates.Latest(); ok {
			e.logger().Warn("No rates for season, using most recent season",
				zap.String(logging.FieldSeason, season),
				zap.String("fallback_season", rate.Season))
			return rate, nil
		}
	}

	return model.Rate{}, &model.RateNotFoundError{Season: season}
}

// ApplyCost returns the full-precision cost of one record
func (e *Engine) ApplyCost(rec model.WorkLog) (float64, error) {
	if rec.Role == "" {
		return 0, &model.MissingFieldError{Field: string(model.ColRole), RecordID: rec.ID}
	}
	if rec.WorkType == "" {
		return 0, &model.MissingFieldError{Field: string(model.ColWorkType), RecordID: rec.ID}
	}

	if rec.Role == model.RoleU13 {
		e.logger().Debug("Worker is below minimum age, cost is zero",
			zap.String(logging.FieldRecordID, rec.ID),
			zap.String("worker", rec.WorkerName))
		return 0, nil
	}

	rate, err := e.RateFor(rec.Season)
	if err != nil {
		return 0, err
	}

	if e.PieceRate.Applies(rec) {
		return e.pieceCost(rec, rate)
	}

	hourly, ok := rate.RoleRate(rec.Role)
	if !ok {
		return 0, &model.RateNotFoundError{Season: rate.Season, Role: rec.Role}
	}
	return rec.HoursWorked * hourly, nil
}

func (e *Engine) pieceCost(rec model.WorkLog, rate model.Rate) (float64, error) {
	if rec.UnitsCompleted == nil {
		return 0, &model.MissingFieldError{Field: string(model.ColUnitsCompleted), RecordID: rec.ID}
	}

	perUnit, ok := rate.PieceRate(e.PieceRate.RateKey)
	if !ok {
		perUnit = e.PieceRate.DefaultRate
		e.logger().Warn("Piece rate missing from rate table, using default",
			zap.String(logging.FieldSeason, rate.Season),
			zap.String("rate_key", e.PieceRate.RateKey),
			zap.Float64("default_rate", perUnit))
	}
	return *rec.UnitsCompleted * perUnit, nil
}

// Failure records a row whose cost could not be computed
type Failure struct {
	Index      int
	RecordID   string
	WorkerName string
	Season     string
	Err        error
}

func (f Failure) Error() string {
	return fmt.Sprintf("row %d (%s, %s): %v", f.Index, f.WorkerName, f.Season, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// ApplyCosts prices every row. Rows that fail are left out of the returned set
// and reported as failures, so one bad record never blocks the rest.
func (e *Engine) ApplyCosts(rs model.RecordSet) (model.RecordSet, []Failure) {
	priced := make([]model.WorkLog, 0, len(rs.Rows))
	var failures []Failure

	for i, rec := range rs.Rows {
		c, err := e.ApplyCost(rec)
		if err != nil {
			failures = append(failures, Failure{
				Index:      i,
				RecordID:   rec.ID,
				WorkerName: rec.WorkerName,
				Season:     rec.Season,
				Err:        err,
			})
			continue
		}
		rec.Cost = c
		priced = append(priced, rec)
	}

	if len(failures) > 0 {
		e.logger().Warn("Some records could not be priced",
			zap.Int("failed", len(failures)),
			zap.Int("priced", len(priced)))
	}

	out := rs.WithRows(priced)
	out.Columns.Add(model.ColCost)
	return out, failures
}

// RoundCurrency rounds to whole øre. Only presentation code should call this.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
