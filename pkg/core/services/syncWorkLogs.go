package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/db"
	"github.com/genf/workreport/pkg/utils/logging"
)

// SyncResult reports what a sync wrote
type SyncResult struct {
	Mode     db.WriteMode
	Loaded   int
	Written  int
	Failures []cost.Failure
}

// SyncWorkLogs derives the work logs in r and persists them to the warehouse.
// Rows that could not be priced are not written.
func SyncWorkLogs(
	ctx context.Context,
	sources Sources,
	writer WorkLogWriter,
	cfg *config.Config,
	logger *zap.Logger,
	r period.DateRange,
	mode db.WriteMode,
) (*SyncResult, error) {
	logger = logging.OrNop(logger)
	if _, err := db.ParseWriteMode(string(mode)); err != nil {
		return nil, err
	}

	loaded, err := LoadWorkLogs(ctx, sources, cfg, logger, r)
	if err != nil {
		return nil, err
	}

	written, err := writer.UpsertWorkLogs(ctx, loaded.Records, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to write work logs: %w", err)
	}

	logger.Info("Synced work logs",
		zap.String("mode", string(mode)),
		zap.Int("loaded", loaded.Records.Len()),
		zap.Int("written", written),
		zap.Int("failed", len(loaded.Failures)))
	return &SyncResult{
		Mode:     mode,
		Loaded:   loaded.Records.Len(),
		Written:  written,
		Failures: loaded.Failures,
	}, nil
}
