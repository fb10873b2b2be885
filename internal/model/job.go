package model

import (
	"context"
	"time"
)

// NormalizedJob is the canonical job record every extractor produces and every
// sink accepts. JSON field names match the ingestion endpoint's schema.
type NormalizedJob struct {
	JobKey       string     `json:"job_key"`      // source:slug:nativeID, stable across runs
	CompanyName  string     `json:"company_name"` // display name from the seed
	CompanySlug  string     `json:"company_slug"`
	Title        string     `json:"title"`
	LocationName string     `json:"location_name"`
	URL          string     `json:"url"` // always absolute
	ContentHTML  string     `json:"content_html"`
	Departments  string     `json:"departments"` // JSON array text, provider convention when absent
	Offices      string     `json:"offices"`     // JSON array text, provider convention when absent
	PostedAt     *time.Time `json:"posted_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
	IngestedAt   time.Time  `json:"ingested_at"` // set by the accumulator
	Source       ATS        `json:"source"`
	IsActive     bool       `json:"is_active"`
}

// JobKey builds the stable deduplication key for a provider posting.
func JobKey(source ATS, slug, nativeID string) string {
	return string(source) + ":" + slug + ":" + nativeID
}

// Timestamp returns the most recent known time for the posting: updated_at, then
// posted_at. Nil when the provider gave neither.
func (j NormalizedJob) Timestamp() *time.Time {
	if j.UpdatedAt != nil {
		return j.UpdatedAt
	}
	return j.PostedAt
}

// Extractor fetches one company's postings from a single provider.
type Extractor interface {
	Extract(ctx context.Context, company Company) ([]NormalizedJob, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, company Company) ([]NormalizedJob, error)

func (f ExtractorFunc) Extract(ctx context.Context, company Company) ([]NormalizedJob, error) {
	return f(ctx, company)
}

// JobSink accepts one batch of jobs. Implementations upsert by job_key, so
// resending a batch is safe.
type JobSink interface {
	Send(ctx context.Context, jobs []NormalizedJob) error
}

// CompanySource yields the seed companies for one run.
type CompanySource interface {
	Companies(ctx context.Context) ([]Company, error)
}

// JobFilter decides whether a job is kept for delivery.
type JobFilter interface {
	Match(job NormalizedJob) bool
}

// RunNotifier reports a finished run somewhere a human will see it.
type RunNotifier interface {
	NotifyRun(ctx context.Context, report RunReport) error
}

// RunRecorder persists a finished run's report.
type RunRecorder interface {
	RecordRun(ctx context.Context, report RunReport) error
}
