package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/pkg/core/services"
)

// EmailSummaryCmd creates the emailSummary command
func EmailSummaryCmd(app *AppContext) *cobra.Command {
	flags := &reportFlags{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "emailSummary",
		Short: "Email the payout summary of a report to the configured recipients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildReport(app, flags)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nSubject: %s\n\n%s\n", services.SummarySubject(result), services.SummaryBody(result))
				return nil
			}

			gmail, err := app.GmailClient()
			if err != nil {
				return err
			}
			if err := services.EmailSummary(app.Ctx, gmail, app.Cfg, app.Logger, result); err != nil {
				return err
			}

			fmt.Printf("\n%s\n", goodColor.Sprint("✓ Summary sent"))
			fmt.Printf("Recipients: %s\n\n", strings.Join(app.Cfg.SummaryRecipients, ", "))
			return nil
		},
	}

	addReportFlags(cmd, flags)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the email instead of sending it")
	return cmd
}
