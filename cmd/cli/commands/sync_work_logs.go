package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/services"
	"github.com/genf/workreport/pkg/db"
)

// SyncWorkLogsCmd creates the syncWorkLogs command
func SyncWorkLogsCmd(app *AppContext) *cobra.Command {
	var (
		from, to string
		mode     string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "syncWorkLogs",
		Short: "Derive role, season and cost for work logs and write them to the warehouse",
		Long: `Derive role, season and cost for every work log in the range and write them to the
derived work log table of the warehouse.

Modes:
  append   write only rows newer than the latest stored date
  replace  overwrite the table with the derived rows (needs --from/--to, a configured range or --all)
  merge    update stored rows with the same id and insert the rest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeMode, err := db.ParseWriteMode(mode)
			if err != nil {
				return err
			}

			r, err := syncRange(app.Cfg, from, to, all, writeMode, time.Now())
			if err != nil {
				return err
			}

			result, err := services.SyncWorkLogs(app.Ctx, app.Sources(), app.Database, app.Cfg, app.Logger, r, writeMode)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n\n", goodColor.Sprint("✓ Work logs synced"))
			rangeLabel := r.String()
			if r.IsZero() {
				rangeLabel = "all"
			}
			fmt.Printf("Range:   %s\n", rangeLabel)
			fmt.Printf("Mode:    %s\n", result.Mode)
			fmt.Printf("Loaded:  %d\n", result.Loaded)
			fmt.Printf("Written: %d\n", result.Written)
			printFailures(result.Failures)
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date to sync (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date to sync (YYYY-MM-DD)")
	cmd.Flags().StringVar(&mode, "mode", string(db.WriteAppend), "Write mode (append, replace or merge)")
	cmd.Flags().BoolVar(&all, "all", false, "Sync every work log regardless of date")
	return cmd
}

// syncRange resolves the range to sync. Replace empties the table before
// writing, so it never falls back to the season-to-date default.
func syncRange(cfg *config.Config, from, to string, all bool, mode db.WriteMode, now time.Time) (period.DateRange, error) {
	switch {
	case all && (from != "" || to != ""):
		return period.DateRange{}, fmt.Errorf("--all cannot be combined with --from or --to")
	case all:
		return period.DateRange{}, nil
	case from != "" && to != "":
		return period.ParseDateRange(from, to)
	case from != "" || to != "":
		return period.DateRange{}, fmt.Errorf("--from and --to must be given together")
	case mode == db.WriteReplace && cfg.From == "":
		return period.DateRange{}, fmt.Errorf("replace mode needs an explicit range: give --from and --to, or --all")
	}
	return cfg.DateRange(now)
}
