package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/history"
	"github.com/oshokin/hifi-grabber/internal/logger"
)

// ExecuteHistoryCommand prints the newest history records. A non-positive limit prints all of them.
func ExecuteHistoryCommand(ctx context.Context, cfg *config.Config, limit int) {
	store, err := history.NewFileStore(cfg.HistoryPath, cfg.HistoryLimit)
	if err != nil {
		logger.Fatalf(ctx, "Failed to load history: %v", err)
	}

	records := store.List()
	if limit > 0 {
		records = lo.Slice(records, 0, limit)
	}

	if len(records) == 0 {
		logger.Info(ctx, "History is empty")

		return
	}

	for i := range records {
		logger.Info(ctx, formatRecord(&records[i]))
	}
}

func formatRecord(record *history.Record) string {
	line := fmt.Sprintf("[%s] %s %q", record.Status, record.Type, record.Title)

	if record.Artist != "" {
		line += " by " + record.Artist
	}

	if record.Size > 0 {
		line += ", " + humanize.IBytes(uint64(record.Size)) //nolint:gosec // Checked above.
	}

	if record.EndTime != nil {
		line += ", " + humanize.Time(*record.EndTime)
	}

	if record.Error != "" {
		line += ": " + record.Error
	}

	return line
}
