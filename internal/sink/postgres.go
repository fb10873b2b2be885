package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/atsfeed/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_key       TEXT PRIMARY KEY,
	company_name  TEXT NOT NULL,
	company_slug  TEXT NOT NULL,
	title         TEXT NOT NULL,
	location_name TEXT NOT NULL,
	url           TEXT NOT NULL,
	content_html  TEXT NOT NULL,
	departments   TEXT NOT NULL,
	offices       TEXT NOT NULL,
	posted_at     TIMESTAMPTZ,
	updated_at    TIMESTAMPTZ,
	ingested_at   TIMESTAMPTZ NOT NULL,
	source        TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS scrape_runs (
	run_id         UUID PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL,
	companies      INTEGER NOT NULL,
	fetched        INTEGER NOT NULL,
	unique_jobs    INTEGER NOT NULL,
	kept           INTEGER NOT NULL,
	sent           INTEGER NOT NULL,
	batches        INTEGER NOT NULL,
	failed_batches INTEGER NOT NULL
)`

const postgresUpsert = `INSERT INTO jobs (
	job_key, company_name, company_slug, title, location_name, url, content_html,
	departments, offices, posted_at, updated_at, ingested_at, source, is_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (job_key) DO UPDATE SET
	company_name  = EXCLUDED.company_name,
	company_slug  = EXCLUDED.company_slug,
	title         = EXCLUDED.title,
	location_name = EXCLUDED.location_name,
	url           = EXCLUDED.url,
	content_html  = EXCLUDED.content_html,
	departments   = EXCLUDED.departments,
	offices       = EXCLUDED.offices,
	posted_at     = EXCLUDED.posted_at,
	updated_at    = EXCLUDED.updated_at,
	ingested_at   = EXCLUDED.ingested_at,
	source        = EXCLUDED.source,
	is_active     = EXCLUDED.is_active`

// PostgresSink upserts jobs into PostgreSQL and keeps a ledger of runs.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to databaseURL and ensures the schema exists.
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating postgres schema: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// Send upserts the batch in one round trip.
func (s *PostgresSink) Send(ctx context.Context, jobs []model.NormalizedJob) error {
	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(postgresUpsert,
			j.JobKey, j.CompanyName, j.CompanySlug, j.Title, j.LocationName, j.URL, j.ContentHTML,
			j.Departments, j.Offices, j.PostedAt, j.UpdatedAt, j.IngestedAt, string(j.Source), j.IsActive,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	for _, j := range jobs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upserting job %s: %w", j.JobKey, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing upsert batch: %w", err)
	}
	return nil
}

// RecordRun stores the run report.
func (s *PostgresSink) RecordRun(ctx context.Context, r model.RunReport) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_runs (run_id, started_at, finished_at, companies, fetched, unique_jobs, kept, sent, batches, failed_batches)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id) DO NOTHING`,
		r.RunID, r.StartedAt, r.FinishedAt,
		r.Companies, r.Fetched, r.Unique, r.Kept, r.Sent, r.Batches, r.FailedBatches,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.RunID, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}
