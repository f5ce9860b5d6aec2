package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/clients/gmailclient"
	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/utils/logging"
)

// SummarySubject is the subject line of the payout summary email
func SummarySubject(result *ReportResult) string {
	r := result.Report.Filter.Range
	if r.IsZero() {
		return "Work hours summary"
	}
	return fmt.Sprintf("Work hours summary %s", r.String())
}

// SummaryBody renders the payout summary as plain text
func SummaryBody(result *ReportResult) string {
	var b strings.Builder
	report := result.Report
	t := report.Totals

	if !report.Filter.Range.IsZero() {
		fmt.Fprintf(&b, "Period: %s\n", report.Filter.Range.String())
	}
	fmt.Fprintf(&b, "Workers: %d\nHours: %.2f\nTotal cost: %.2f kr\n", t.UniqueWorkers, t.Hours, cost.RoundCurrency(t.Cost))

	if cmp := result.Comparison; cmp != nil {
		fmt.Fprintf(&b, "Previous period (%s): %.2f kr (change %+.2f kr)\n",
			cmp.PreviousRange.String(), cost.RoundCurrency(cmp.Previous.Cost), cost.RoundCurrency(cmp.Delta.Cost))
	}

	if len(report.Summaries) > 0 {
		b.WriteString("\nPayouts:\n")
		for _, s := range report.Summaries {
			fmt.Fprintf(&b, "  %-30s %-13s %9.2f kr  %6.2f h\n", s.WorkerName, s.Role.Label(), cost.RoundCurrency(s.Cost), s.HoursWorked)
		}
	}

	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(&b, "\n%d work log(s) could not be priced and are not included.\n", n)
	}
	return b.String()
}

// EmailSummary sends the payout summary of a report to the configured recipients
func EmailSummary(
	ctx context.Context,
	sender EmailSender,
	cfg *config.Config,
	logger *zap.Logger,
	result *ReportResult,
) error {
	logger = logging.OrNop(logger)
	if len(cfg.SummaryRecipients) == 0 {
		return fmt.Errorf("no summary recipients configured")
	}

	msg := gmailclient.Message{
		From:    cfg.GmailSender,
		To:      cfg.SummaryRecipients,
		Subject: SummarySubject(result),
		Body:    SummaryBody(result),
	}
	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}

	logger.Info("Sent summary email", zap.Strings("recipients", cfg.SummaryRecipients))
	return nil
}
