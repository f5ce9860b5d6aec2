package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/pkg/core/goal"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/services"
)

func printGoalComparisons(label func(goal.Comparison) string, comparisons []goal.Comparison) {
	rows := make([][]any, len(comparisons))
	for i, c := range comparisons {
		progress := goalColor(c.Earned, c.Goal).Sprintf("%5.1f%%", c.Progress()*100)
		rows[i] = []any{label(c), c.Role.Label(), c.Earned, c.Goal, c.Remaining(), progress,
			fmt.Sprintf("%d/%d", c.Active, c.Registered)}
	}
	printTable([]string{"period", "role", "earned", "goal", "remaining", "progress", "active"}, rows)
}

// SeasonalReviewCmd creates the seasonalReview command
func SeasonalReviewCmd(app *AppContext) *cobra.Command {
	var showWorkers, activeOnly bool

	cmd := &cobra.Command{
		Use:   "seasonalReview [season...]",
		Short: "Compare earnings with camp costs per season (defaults to the configured or current season)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Cfg
			if activeOnly {
				c := *app.Cfg
				c.ActiveOnlyGoals = true
				cfg = &c
			}
			result, err := services.SeasonalReview(app.Ctx, app.Sources(), cfg, app.Logger, args)
			if err != nil {
				return err
			}

			fmt.Printf("\nSeasonal review: %s\n\n", strings.Join(result.Seasons, ", "))
			if len(result.Comparisons) == 0 {
				fmt.Println("No work logs found for these seasons.")
			} else {
				printGoalComparisons(func(c goal.Comparison) string { return c.Season }, result.Comparisons)
			}

			if showWorkers && len(result.Workers) > 0 {
				fmt.Printf("\n%s\n", headerColor.Sprintf("Workers above %.0f kr", app.Cfg.InactiveCutoff))
				rows := make([][]any, len(result.Workers))
				for i, w := range result.Workers {
					diff := goalColor(w.Cost, w.Goal).Sprintf("%.2f", w.Difference)
					rows[i] = []any{w.WorkerName, w.Season, w.Role.Label(), w.HoursWorked, w.Cost, w.Goal, diff}
				}
				printTable([]string{"worker", "season", "role", "hours", "earned", "goal", "difference"}, rows)
			}

			printFailures(result.Failures)
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().BoolVar(&showWorkers, "workers", false, "List each active worker's earnings against their own camp cost")
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "Leave workers at or below the inactive cut-off out of the goal totals")
	return cmd
}

// YearlyReviewCmd creates the yearlyReview command
func YearlyReviewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yearlyReview <from_year> [to_year]",
		Short: "Compare calendar-year earnings with estimated camp costs (to_year is exclusive)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromYear, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("from_year must be a number: %w", err)
			}
			toYear := time.Now().Year() + 1
			if len(args) > 1 {
				toYear, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("to_year must be a number: %w", err)
				}
			}

			result, err := services.YearlyReview(app.Ctx, app.Sources(), app.Cfg, app.Logger, fromYear, toYear)
			if err != nil {
				return err
			}

			fmt.Printf("\nYearly review: %d-%d\n\n", fromYear, toYear-1)
			printGoalComparisons(func(c goal.Comparison) string { return strconv.Itoa(c.Year) }, result.Comparisons)

			fmt.Printf("\n%s\n", headerColor.Sprint("Estimated camp costs"))
			headers := []string{"year"}
			for _, r := range model.AllRoles {
				headers = append(headers, r.Label())
			}
			headers = append(headers, "total")
			rows := make([][]any, len(result.Costs))
			for i, yc := range result.Costs {
				row := []any{strconv.Itoa(yc.Year)}
				for _, r := range model.AllRoles {
					row = append(row, yc.ByRole[r])
				}
				rows[i] = append(row, yc.Total)
			}
			printTable(headers, rows)

			printFailures(result.Failures)
			fmt.Println()
			return nil
		},
	}

	return cmd
}
