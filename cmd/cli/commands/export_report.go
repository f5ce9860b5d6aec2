package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/pkg/core/services"
)

// ExportReportCmd creates the exportReport command
func ExportReportCmd(app *AppContext) *cobra.Command {
	flags := &reportFlags{}
	var tab string

	cmd := &cobra.Command{
		Use:   "exportReport",
		Short: "Write a report to a tab of the report spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildReport(app, flags)
			if err != nil {
				return err
			}

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}
			if err := services.ExportReport(app.Ctx, sheets, app.Logger, app.Cfg.ReportSheetID, tab, result.Report); err != nil {
				return err
			}

			fmt.Printf("\n%s\n\n", goodColor.Sprint("✓ Report exported"))
			fmt.Printf("Spreadsheet: %s\n", app.Cfg.ReportSheetID)
			fmt.Printf("Rows:        %d\n", result.Report.Records.Len())
			fmt.Printf("Total cost:  %.2f kr\n", result.Report.Totals.Cost)
			printFailures(result.Failures)
			fmt.Println()
			return nil
		},
	}

	addReportFlags(cmd, flags)
	cmd.Flags().StringVar(&tab, "tab", "", "Tab to write to (defaults to \"report <range>\")")
	return cmd
}
