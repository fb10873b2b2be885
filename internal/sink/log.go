package sink

import (
	"context"
	"log/slog"

	"github.com/amishk599/atsfeed/internal/model"
)

// LogSink logs every job instead of delivering it. Used for dry runs.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, jobs []model.NormalizedJob) error {
	for _, j := range jobs {
		s.logger.Info("job",
			"key", j.JobKey,
			"company", j.CompanyName,
			"title", j.Title,
			"location", j.LocationName,
			"url", j.URL,
		)
	}
	return nil
}
