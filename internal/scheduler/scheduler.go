package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amishk599/atsfeed/internal/model"
)

// Runner executes one extraction pass. pipeline.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context) (model.RunReport, error)
}

// Scheduler owns the main loop: it runs one pass, waits the interval, and repeats.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs a pass every interval.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate pass, then waits interval after each
// pass finishes. Failed passes are logged and the loop continues. It returns nil
// when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		s.logger.Error("run failed", "run_id", report.RunID, "error", err)
	case report.Failed():
		s.logger.Warn("run finished with failed batches",
			"run_id", report.RunID,
			"failed_batches", report.FailedBatches,
		)
	}
	s.logger.Debug("next run scheduled", "at", time.Now().Add(s.interval).Format(time.RFC3339))
}
