package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// Defaults applied when the config file leaves a field unset
const (
	DefaultMentorHeadcount = 50
	DefaultInactiveCutoff  = 500
	DefaultActiveThreshold = 1000
	DefaultCacheTTL        = 10 * time.Minute
)

// Environment variables holding secrets. They may also come from a .env file.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvJobsAPIURL     = "JOBS_API_URL"
	EnvJobsAPIAnonKey = "JOBS_API_ANON_KEY"
	EnvJobsAPIKey     = "JOBS_API_KEY"
	EnvValkeyAddr     = "VALKEY_ADDR"
)

// PieceRateConfig overrides the per-unit pay rule
type PieceRateConfig struct {
	WorkType    string  `yaml:"workType" validate:"required"`
	Role        string  `yaml:"role" validate:"required,oneof=genf hjelpementor mentor"`
	RateKey     string  `yaml:"rateKey" validate:"required"`
	DefaultRate float64 `yaml:"defaultRate" validate:"gte=0"`
}

// CacheConfig selects where fetched source data is cached
type CacheConfig struct {
	Backend string        `yaml:"backend,omitempty" validate:"omitempty,oneof=memory valkey none"`
	TTL     time.Duration `yaml:"ttl,omitempty" validate:"gte=0"`
}

// WarehouseConfig selects the store holding legacy work logs and reference tables
type WarehouseConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=postgres sheets"`
	SheetID string `yaml:"sheetID,omitempty" validate:"required_if=Backend sheets"`
}

// Secrets are read from the environment, never from the config file
type Secrets struct {
	DatabaseURL    string
	JobsAPIURL     string
	JobsAPIAnonKey string
	JobsAPIKey     string
	ValkeyAddr     string
}

// Config represents the application configuration
type Config struct {
	Season          string           `yaml:"season,omitempty"`
	Roles           []string         `yaml:"roles,omitempty" validate:"omitempty,dive,oneof=genf hjelpementor mentor"`
	From            string           `yaml:"from,omitempty" validate:"required_with=To"`
	To              string           `yaml:"to,omitempty" validate:"required_with=From"`
	SeasonFallback  string           `yaml:"seasonFallback,omitempty" validate:"omitempty,oneof=strict latest"`
	PieceRate       *PieceRateConfig `yaml:"pieceRate,omitempty"`
	MentorHeadcount int              `yaml:"mentorHeadcount,omitempty" validate:"gte=0"`
	InactiveCutoff  float64          `yaml:"inactiveCutoff,omitempty" validate:"gte=0"`
	ActiveThreshold float64          `yaml:"activeThreshold,omitempty" validate:"gte=0"`
	// ActiveOnlyGoals leaves workers at or below InactiveCutoff out of the season goal totals
	ActiveOnlyGoals bool             `yaml:"activeOnlyGoals,omitempty"`
	MonthPresets    string           `yaml:"monthPresets,omitempty"`
	Cache           CacheConfig      `yaml:"cache,omitempty"`
	Warehouse       WarehouseConfig  `yaml:"warehouse"`

	ReportSheetID     string   `yaml:"reportSheetID,omitempty"`
	GmailUserID       string   `yaml:"gmailUserID" validate:"required"`
	GmailSender       string   `yaml:"gmailSender,omitempty"`
	SummaryRecipients []string `yaml:"summaryRecipients,omitempty" validate:"omitempty,dive,email"`
	LogLevel          string   `yaml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn warning error"`

	Secrets Secrets `yaml:"-"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads secrets from .env.<env> and .env (when present), then loads and
// validates workreport_config.<env>.yaml. An empty env uses workreport_config.yaml.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Secrets are taken from the process environment.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Secrets = SecretsFromEnv()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SeasonFallback == "" {
		cfg.SeasonFallback = string(cost.FallbackStrict)
	}
	if cfg.MentorHeadcount == 0 {
		cfg.MentorHeadcount = DefaultMentorHeadcount
	}
	if cfg.InactiveCutoff == 0 {
		cfg.InactiveCutoff = DefaultInactiveCutoff
	}
	if cfg.ActiveThreshold == 0 {
		cfg.ActiveThreshold = DefaultActiveThreshold
	}
	if cfg.MonthPresets == "" {
		cfg.MonthPresets = period.DefaultMonthPresets
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
}

// Validate validates the configuration struct, the season, the date range and the month preset rule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Season != "" {
		if _, err := model.ParseSeason(cfg.Season); err != nil {
			return fmt.Errorf("invalid season: %w", err)
		}
	}

	if cfg.From != "" {
		if _, err := period.ParseDateRange(cfg.From, cfg.To); err != nil {
			return fmt.Errorf("invalid date range: %w", err)
		}
	}

	if cfg.MonthPresets != "" {
		if _, err := period.MonthPresets(time.Now(), cfg.MonthPresets); err != nil {
			return fmt.Errorf("invalid rrule in monthPresets: %w", err)
		}
	}

	if cfg.Warehouse.Backend == "postgres" && cfg.Secrets.DatabaseURL == "" {
		return fmt.Errorf("config validation failed: %s is required for the postgres warehouse", EnvDatabaseURL)
	}
	if cfg.Cache.Backend == "valkey" && cfg.Secrets.ValkeyAddr == "" {
		return fmt.Errorf("config validation failed: %s is required for the valkey cache", EnvValkeyAddr)
	}

	return nil
}

// SecretsFromEnv reads secrets from environment variables
func SecretsFromEnv() Secrets {
	return Secrets{
		DatabaseURL:    os.Getenv(EnvDatabaseURL),
		JobsAPIURL:     os.Getenv(EnvJobsAPIURL),
		JobsAPIAnonKey: os.Getenv(EnvJobsAPIAnonKey),
		JobsAPIKey:     os.Getenv(EnvJobsAPIKey),
		ValkeyAddr:     os.Getenv(EnvValkeyAddr),
	}
}

// HasJobsAPI reports whether the live work log feed is configured
func (s Secrets) HasJobsAPI() bool {
	return s.JobsAPIURL != "" && s.JobsAPIKey != ""
}

// ParsedRoles returns the selected roles, or every eligible role when none are configured
func (c *Config) ParsedRoles() []model.Role {
	if len(c.Roles) == 0 {
		return append([]model.Role(nil), model.AllRoles...)
	}
	roles := make([]model.Role, 0, len(c.Roles))
	for _, r := range c.Roles {
		// validated by oneof
		role, _ := model.ParseRole(r)
		roles = append(roles, role)
	}
	return roles
}

// DateRange returns the configured range, or the season-to-date range when none is set
func (c *Config) DateRange(now time.Time) (period.DateRange, error) {
	if c.From == "" {
		return period.SeasonToDate(now), nil
	}
	return period.ParseDateRange(c.From, c.To)
}

// Fallback returns the season rate fallback policy
func (c *Config) Fallback() cost.SeasonFallback {
	return cost.SeasonFallback(c.SeasonFallback)
}

// PieceRateRule returns the configured piece-rate rule, or the default one
func (c *Config) PieceRateRule() cost.PieceRateRule {
	if c.PieceRate == nil {
		return cost.DefaultPieceRate
	}
	return cost.PieceRateRule{
		WorkType:    c.PieceRate.WorkType,
		Role:        model.Role(c.PieceRate.Role),
		RateKey:     c.PieceRate.RateKey,
		DefaultRate: c.PieceRate.DefaultRate,
	}
}

// loadDotEnv populates the environment from .env.<env> and .env without
// overriding variables that are already set. Missing files are ignored.
func loadDotEnv(env string) error {
	files := []string{".env"}
	if env != "" {
		files = append([]string{".env." + env}, files...)
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// findConfigFile looks for workreport_config[.<env>].yaml
func findConfigFile(env string) (string, error) {
	return locate(withEnv("workreport_config", env, "yaml"))
}

func withEnv(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// locate returns name from the current directory, else from the home directory
func locate(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
