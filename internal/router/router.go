// Package router picks the extractor for a company and contains extraction
// failures so one bad company never stops a run.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amishk599/atsfeed/internal/adapter"
	"github.com/amishk599/atsfeed/internal/model"
	"github.com/amishk599/atsfeed/internal/retry"
)

// Router dispatches companies to extractors by ATS.
type Router struct {
	extractors map[model.ATS]model.Extractor
	logger     *slog.Logger
}

// New creates a Router with no extractors registered.
func New(logger *slog.Logger) *Router {
	return &Router{
		extractors: make(map[model.ATS]model.Extractor),
		logger:     logger,
	}
}

// Register binds an extractor to an ATS, replacing any previous binding.
func (r *Router) Register(ats model.ATS, e model.Extractor) *Router {
	r.extractors[ats] = e
	return r
}

// Route returns the resolved ATS and its extractor. Companies with an unknown or
// unregistered ATS get adapter.Nop.
func (r *Router) Route(company model.Company) (model.ATS, model.Extractor) {
	ats := company.ResolvedATS()
	if e, ok := r.extractors[ats]; ok {
		return ats, e
	}
	r.logger.Warn("no extractor for company, skipping",
		"company", company.Name,
		"ats", ats,
	)
	return ats, adapter.Nop{}
}

// Extract runs the routed extractor. Errors are logged and become zero jobs.
func (r *Router) Extract(ctx context.Context, company model.Company) []model.NormalizedJob {
	ats, e := r.Route(company)
	jobs, err := e.Extract(ctx, company)
	if err != nil {
		attrs := []any{
			"company", company.Name,
			"ats", ats,
			"error", err,
		}
		if status := model.StatusOf(err); status != 0 {
			attrs = append(attrs, "status", status)
		}
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			attrs = append(attrs, "attempts", exhausted.Attempts)
		}
		r.logger.Error("extraction failed", attrs...)
		return nil
	}
	r.logger.Debug("extracted jobs", "company", company.Name, "ats", ats, "count", len(jobs))
	return jobs
}
