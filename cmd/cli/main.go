package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genf/workreport/cmd/cli/commands"
	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/cache"
	"github.com/genf/workreport/pkg/clients/jobsapi"
	"github.com/genf/workreport/pkg/db"
	"github.com/genf/workreport/pkg/postgres"
	"github.com/genf/workreport/pkg/utils"
	"github.com/genf/workreport/pkg/utils/logging"
)

var (
	env      string
	logLevel string
	app      = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "workreport",
		Short: "GEN-F work report CLI - Report volunteer work hours and payouts",
		Long: `A CLI tool for pricing volunteer work logs, reporting payouts per worker and
comparing season earnings with camp costs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	_ = rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Console log level (overrides logLevel in the config file)")

	rootCmd.AddCommand(commands.ReportCmd(app))
	rootCmd.AddCommand(commands.SeasonalReviewCmd(app))
	rootCmd.AddCommand(commands.YearlyReviewCmd(app))
	rootCmd.AddCommand(commands.SyncWorkLogsCmd(app))
	rootCmd.AddCommand(commands.ExportReportCmd(app))
	rootCmd.AddCommand(commands.EmailSummaryCmd(app))
	rootCmd.AddCommand(commands.PeriodsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads configuration and sets up logger, cache, clients, and warehouse
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logLevel
	if level == "" {
		level = app.Cfg.LogLevel
	}
	app.Logger, err = logging.InitLogger(env, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	if err := initAuth(); err != nil {
		return err
	}
	if err := initCache(); err != nil {
		return err
	}

	if app.Cfg.Secrets.HasJobsAPI() {
		app.Logger.Info("Initializing jobs api client")
		app.JobsClient, err = jobsapi.New(
			app.Cfg.Secrets.JobsAPIURL,
			app.Cfg.Secrets.JobsAPIAnonKey,
			app.Cfg.Secrets.JobsAPIKey,
			jobsapi.WithLogger(app.Logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create jobs api client: %w", err)
		}
	} else {
		app.Logger.Info("Jobs api not configured, reporting from the warehouse only")
	}

	return initWarehouse()
}

// initAuth prepares the Google OAuth flow. Nothing is requested until a command
// first needs sheets or gmail.
func initAuth() error {
	oauthClient, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		app.Logger.Debug("No OAuth client configuration, google clients disabled", zap.Error(err))
		return nil
	}
	oauthCfg, err := utils.GetOAuthConfig(oauthClient)
	if err != nil {
		return err
	}
	store, err := utils.DefaultTokenStore()
	if err != nil {
		return err
	}
	app.Auth = &utils.Authenticator{OAuth: oauthCfg, Store: store, Env: env, Logger: app.Logger}
	return nil
}

func initCache() error {
	switch app.Cfg.Cache.Backend {
	case "valkey":
		app.Logger.Info("Connecting to valkey cache")
		v, err := cache.NewValkey(app.Cfg.Secrets.ValkeyAddr)
		if err != nil {
			return err
		}
		app.OnClose(v.Close)
		app.Cache = v
	case "none":
		app.Cache = cache.Nop{}
	default:
		app.Cache = cache.NewMemory()
	}
	app.Logger.Debug("Cache initialized", zap.String("backend", app.Cfg.Cache.Backend))
	return nil
}

func initWarehouse() error {
	switch app.Cfg.Warehouse.Backend {
	case "postgres":
		app.Logger.Info("Connecting to postgres warehouse")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.Secrets.DatabaseURL, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.OnClose(pg.Close)
		if err := pg.RunMigrations(app.Ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Database = pg
	default:
		sheets, err := app.SheetsClient()
		if err != nil {
			return err
		}
		app.Logger.Info("Connecting to sheets warehouse", zap.String("spreadsheet_id", app.Cfg.Warehouse.SheetID))
		sdb, err := db.NewDB(app.Ctx, sheets, app.Cfg.Warehouse.SheetID, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.Database = sdb
	}
	app.Logger.Info("Database initialized successfully")
	return nil
}
