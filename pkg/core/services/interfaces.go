package services

import (
	"context"

	"github.com/genf/workreport/pkg/clients/gmailclient"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/db"
)

// WarehouseReader defines the warehouse reads needed to load work logs
type WarehouseReader interface {
	db.ReferenceStore
	GetLegacyWorkLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error)
}

// LiveFeed defines the live work log feed operations
type LiveFeed interface {
	JobLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error)
	Profiles(ctx context.Context) ([]model.Member, error)
}

// WorkLogWriter persists derived work logs
type WorkLogWriter interface {
	UpsertWorkLogs(ctx context.Context, rs model.RecordSet, mode db.WriteMode) (int, error)
}

// TableWriter writes a table to a spreadsheet tab
type TableWriter interface {
	WriteTable(ctx context.Context, spreadsheetID, tab string, headers []string, rows [][]any) error
}

// EmailSender sends an email
type EmailSender interface {
	Send(ctx context.Context, msg gmailclient.Message) error
}
