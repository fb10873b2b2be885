// Package pipeline runs one extraction pass: load companies, extract, dedup,
// filter and deliver.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/atsfeed/internal/dedup"
	"github.com/amishk599/atsfeed/internal/delivery"
	"github.com/amishk599/atsfeed/internal/filter"
	"github.com/amishk599/atsfeed/internal/model"
)

// CompanyExtractor returns a company's jobs, or none when extraction failed.
// router.Router satisfies it.
type CompanyExtractor interface {
	Extract(ctx context.Context, company model.Company) []model.NormalizedJob
}

// Runner owns the full run: companies → extract → dedup → filter → deliver →
// record and notify.
type Runner struct {
	source    model.CompanySource
	extractor CompanyExtractor
	filter    model.JobFilter
	deliverer *delivery.Deliverer
	recorder  model.RunRecorder
	notifier  model.RunNotifier
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional Runner collaborators.
type Option func(*Runner)

// WithRecorder persists each finished run's report.
func WithRecorder(r model.RunRecorder) Option {
	return func(rn *Runner) { rn.recorder = r }
}

// WithNotifier sends each finished run's report to a notifier.
func WithNotifier(n model.RunNotifier) Option {
	return func(rn *Runner) { rn.notifier = n }
}

// NewRunner creates a Runner. A nil filter keeps every job.
func NewRunner(
	source model.CompanySource,
	extractor CompanyExtractor,
	f model.JobFilter,
	deliverer *delivery.Deliverer,
	logger *slog.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		source:    source,
		extractor: extractor,
		filter:    f,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one pass. Per-company extraction failures never fail the run; a
// company source error does. Failed batches are reported in RunReport.FailedBatches.
// When ctx is cancelled between companies, the jobs gathered so far are still
// handed to delivery, which counts them as failed.
func (r *Runner) Run(ctx context.Context) (model.RunReport, error) {
	report := model.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: r.now().UTC(),
	}
	logger := r.logger.With("run_id", report.RunID)

	companies, err := r.source.Companies(ctx)
	if err != nil {
		return report, fmt.Errorf("loading companies: %w", err)
	}
	logger.Info("run started", "companies", len(companies))

	acc := dedup.New()
	for _, c := range companies {
		if ctx.Err() != nil {
			logger.Warn("run cancelled during extraction", "remaining", len(companies)-report.Companies)
			break
		}
		report.Companies++
		acc.Add(r.extractor.Extract(ctx, c)...)
	}
	report.Fetched = acc.Seen()
	unique := acc.Jobs()
	report.Unique = len(unique)

	kept := filter.Apply(r.filter, unique)
	report.Kept = len(kept)
	logger.Info("jobs collected",
		"fetched", report.Fetched,
		"unique", report.Unique,
		"kept", report.Kept,
	)

	res := r.deliverer.Deliver(ctx, kept)
	report.Sent = res.Sent
	report.Batches = res.Batches
	report.FailedBatches = res.FailedBatches
	report.FinishedAt = r.now().UTC()

	logger.Info("run finished",
		"sent", report.Sent,
		"batches", report.Batches,
		"failed_batches", report.FailedBatches,
		"duration", report.Duration().Round(time.Millisecond).String(),
	)

	// Record and notify even when the run was cancelled.
	after := context.WithoutCancel(ctx)
	if r.recorder != nil {
		if err := r.recorder.RecordRun(after, report); err != nil {
			logger.Error("recording run failed", "error", err)
		}
	}
	if r.notifier != nil {
		if err := r.notifier.NotifyRun(after, report); err != nil {
			logger.Error("run notification failed", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run %s interrupted: %w", report.RunID, err)
	}
	return report, nil
}
