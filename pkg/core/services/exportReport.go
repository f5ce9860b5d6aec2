package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/pipeline"
	"github.com/genf/workreport/pkg/utils/logging"
)

// summaryValueColumns follow the grouping key in an exported summary
var summaryValueColumns = []string{"hours_worked", "cost", "units_completed", "records"}

func summaryField(s pipeline.Summary, col model.Column) any {
	switch col {
	case model.ColWorkerName:
		return s.WorkerName
	case model.ColEmail:
		return s.Email
	case model.ColBankAccountNumber:
		return s.BankAccountNumber
	case model.ColRole:
		return string(s.Role)
	case model.ColSeason:
		return s.Season
	case model.ColDateCompleted:
		return s.Year
	}
	return nil
}

// SummaryTable renders summaries as a header row plus one row per summary
func SummaryTable(summaries []pipeline.Summary, key []model.Column) ([]string, [][]any) {
	headers := make([]string, 0, len(key)+len(summaryValueColumns))
	for _, c := range key {
		headers = append(headers, string(c))
	}
	headers = append(headers, summaryValueColumns...)

	rows := make([][]any, len(summaries))
	for i, s := range summaries {
		row := make([]any, 0, len(headers))
		for _, c := range key {
			row = append(row, summaryField(s, c))
		}
		row = append(row, s.HoursWorked, cost.RoundCurrency(s.Cost), s.UnitsCompleted, s.Records)
		rows[i] = row
	}
	return headers, rows
}

// ReportTable renders a report in its own mode: itemized rows or summaries
func ReportTable(report pipeline.Report) ([]string, [][]any) {
	if report.Filter.Mode == pipeline.ModeItemized {
		return ingest.TableOf(report.Items, pipeline.DisplayColumns)
	}
	return SummaryTable(report.Summaries, report.Key)
}

// ExportReport writes the report to a tab of the report spreadsheet, replacing its contents
func ExportReport(
	ctx context.Context,
	writer TableWriter,
	logger *zap.Logger,
	spreadsheetID, tab string,
	report pipeline.Report,
) error {
	logger = logging.OrNop(logger)
	if spreadsheetID == "" {
		return fmt.Errorf("no report spreadsheet configured")
	}
	if tab == "" {
		tab = "report " + report.Filter.Range.String()
	}

	headers, rows := ReportTable(report)
	if err := writer.WriteTable(ctx, spreadsheetID, tab, headers, rows); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	logger.Info("Exported report", zap.String("tab", tab), zap.Int(logging.FieldRows, len(rows)))
	return nil
}
