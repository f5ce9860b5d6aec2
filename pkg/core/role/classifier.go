// Package role derives a worker's age-based participation tier for a season.
package role

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/utils/logging"
)

// Age bands, inclusive on both ends
const (
	MinGenfAge         = 14
	MaxGenfAge         = 16
	MinHjelpementorAge = 17
	MaxHjelpementorAge = 18
)

const birthDateLayout = "2006-01-02"

// Classifier maps birth years to roles. Now is used to pick the current
// season when the requested one is unusable; it defaults to time.Now.
type Classifier struct {
	Logger *zap.Logger
	Now    func() time.Time
}

// NewClassifier returns a classifier using the wall clock
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{Logger: logging.OrNop(logger), Now: time.Now}
}

func (c *Classifier) logger() *zap.Logger {
	return logging.OrNop(c.Logger)
}

func (c *Classifier) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// ResolveSeason parses season, substituting the current season (with a warning) when it is empty or malformed
func (c *Classifier) ResolveSeason(season string) model.Season {
	if season == "" {
		current := model.CurrentSeason(c.now())
		c.logger().Warn("No season selected, using current season",
			zap.String(logging.FieldSeason, current.String()))
		return current
	}

	parsed, err := model.ParseSeason(season)
	if err != nil {
		current := model.CurrentSeason(c.now())
		c.logger().Warn("Malformed season, using current season",
			zap.String("requested", season),
			zap.String(logging.FieldSeason, current.String()),
			zap.Error(err))
		return current
	}
	return parsed
}

// ClassifyRole returns the role of someone born in birthYear during season.
// It never fails: a bad season falls back to the current one.
func (c *Classifier) ClassifyRole(birthYear int, season string) model.Role {
	s := c.ResolveSeason(season)
	return Classify(s.ReferenceYear() - birthYear)
}

// Classify maps an age (reference year minus birth year) to a role
func Classify(age int) model.Role {
	switch {
	case age < MinGenfAge:
		return model.RoleU13
	case age <= MaxGenfAge:
		return model.RoleGenf
	case age <= MaxHjelpementorAge:
		return model.RoleHjelpementor
	default:
		return model.RoleMentor
	}
}

// ApplyRole derives the role from a birth date given as a "YYYY-MM-DD" string,
// time.Time or *time.Time. It reports false when the birth date is missing or
// cannot be parsed; the failure is logged, not returned.
func (c *Classifier) ApplyRole(birthDate any, season string) (model.Role, bool) {
	year, ok := c.birthYear(birthDate)
	if !ok {
		return "", false
	}
	return c.ClassifyRole(year, season), true
}

func (c *Classifier) birthYear(birthDate any) (int, bool) {
	switch v := birthDate.(type) {
	case nil:
		c.logger().Debug("Birth date is missing, cannot determine role")
		return 0, false
	case time.Time:
		if v.IsZero() {
			c.logger().Debug("Birth date is zero, cannot determine role")
			return 0, false
		}
		return v.Year(), true
	case *time.Time:
		if v == nil {
			c.logger().Debug("Birth date is missing, cannot determine role")
			return 0, false
		}
		return c.birthYear(*v)
	case string:
		if v == "" {
			c.logger().Debug("Birth date is empty, cannot determine role")
			return 0, false
		}
		parsed, err := time.Parse(birthDateLayout, v)
		if err != nil {
			c.logger().Warn("Failed to parse birth date", zap.String("birth_date", v), zap.Error(err))
			return 0, false
		}
		return parsed.Year(), true
	case float64:
		if math.IsNaN(v) {
			c.logger().Debug("Birth date is NaN, cannot determine role")
		} else {
			c.logger().Warn("Unsupported birth date value", zap.Float64("birth_date", v))
		}
		return 0, false
	default:
		c.logger().Warn("Unsupported birth date type", zap.Any("birth_date", v))
		return 0, false
	}
}
