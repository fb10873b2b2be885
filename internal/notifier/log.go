package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/atsfeed/internal/model"
)

// Ensure LogNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyRun logs the report at Info, or Warn when batches failed. It never fails.
func (n *LogNotifier) NotifyRun(ctx context.Context, r model.RunReport) error {
	level := slog.LevelInfo
	if r.Failed() {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "run summary",
		"run_id", r.RunID,
		"companies", r.Companies,
		"fetched", r.Fetched,
		"unique", r.Unique,
		"kept", r.Kept,
		"sent", r.Sent,
		"batches", r.Batches,
		"failed_batches", r.FailedBatches,
		"duration", r.Duration().String(),
	)
	return nil
}
