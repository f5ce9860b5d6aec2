package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/services"
)

// buildReport runs the report service for the parsed flags
func buildReport(app *AppContext, flags *reportFlags) (*services.ReportResult, error) {
	filter, err := flags.filter(app.Cfg, time.Now())
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("Building report",
		zap.String("range", filter.Range.String()),
		zap.String("mode", string(filter.Mode)))
	return services.BuildReport(app.Ctx, app.Sources(), app.Cfg, app.Logger, filter)
}

// ReportCmd creates the report command
func ReportCmd(app *AppContext) *cobra.Command {
	flags := &reportFlags{}
	var breakdown bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show earnings per worker for a period, with the change from the period before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildReport(app, flags)
			if err != nil {
				return err
			}
			report := result.Report

			title := "all work logs"
			if !report.Filter.Range.IsZero() {
				title = report.Filter.Range.String()
			}
			fmt.Printf("\nWork report: %s (%s)\n\n", title, report.Filter.Mode)

			if report.Records.Len() == 0 {
				fmt.Println("No work logs match the filters.")
				printFailures(result.Failures)
				return nil
			}

			headers, rows := services.ReportTable(report)
			printTable(headers, rows)
			fmt.Println()
			printTotals("Totals", report.Totals)
			printComparison(result.Comparison)

			if breakdown {
				printBreakdown(result)
			}
			printFailures(result.Failures)
			fmt.Println()
			return nil
		},
	}

	addReportFlags(cmd, flags)
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "Also show work type and monthly breakdowns")
	return cmd
}

func printBreakdown(result *services.ReportResult) {
	if len(result.WorkTypes) > 0 {
		fmt.Printf("\n%s\n", headerColor.Sprint("By work type"))
		rows := make([][]any, len(result.WorkTypes))
		for i, wt := range result.WorkTypes {
			rows[i] = []any{wt.Group, wt.Project, wt.Hours, wt.Cost, wt.Records}
		}
		printTable([]string{"group", "project", "hours", "cost", "records"}, rows)
	}

	if len(result.Monthly) > 0 {
		fmt.Printf("\n%s\n", headerColor.Sprint("By month"))
		rows := make([][]any, len(result.Monthly))
		for i, m := range result.Monthly {
			rows[i] = []any{fmt.Sprintf("%d-%02d", m.Year, int(m.Month)), m.Hours, m.Cost, m.Cumulative}
		}
		printTable([]string{"month", "hours", "cost", "cumulative"}, rows)
	}
}
