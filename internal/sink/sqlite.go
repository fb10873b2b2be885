package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/atsfeed/internal/model"
)

const sqliteSchema = `
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
	posted_at     TEXT,
	updated_at    TEXT,
	ingested_at   TEXT NOT NULL,
	source        TEXT NOT NULL,
	is_active     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	companies      INTEGER NOT NULL,
	fetched        INTEGER NOT NULL,
	unique_jobs    INTEGER NOT NULL,
	kept           INTEGER NOT NULL,
	sent           INTEGER NOT NULL,
	batches        INTEGER NOT NULL,
	failed_batches INTEGER NOT NULL
);`

const sqliteUpsert = `INSERT INTO jobs (
	job_key, company_name, company_slug, title, location_name, url, content_html,
	departments, offices, posted_at, updated_at, ingested_at, source, is_active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(job_key) DO UPDATE SET
	company_name  = excluded.company_name,
	company_slug  = excluded.company_slug,
	title         = excluded.title,
	location_name = excluded.location_name,
	url           = excluded.url,
	content_html  = excluded.content_html,
	departments   = excluded.departments,
	offices       = excluded.offices,
	posted_at     = excluded.posted_at,
	updated_at    = excluded.updated_at,
	ingested_at   = excluded.ingested_at,
	source        = excluded.source,
	is_active     = excluded.is_active`

// SQLiteSink upserts jobs into a local SQLite database and keeps a ledger of runs.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) a SQLite database at dbPath and ensures the
// jobs and runs tables exist.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Send upserts the batch in one transaction.
func (s *SQLiteSink) Send(ctx context.Context, jobs []model.NormalizedJob) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sqlite tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, j := range jobs {
		_, err := stmt.ExecContext(ctx,
			j.JobKey, j.CompanyName, j.CompanySlug, j.Title, j.LocationName, j.URL, j.ContentHTML,
			j.Departments, j.Offices, formatTime(j.PostedAt), formatTime(j.UpdatedAt),
			j.IngestedAt.UTC().Format(time.RFC3339), string(j.Source), j.IsActive,
		)
		if err != nil {
			return fmt.Errorf("upserting job %s: %w", j.JobKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sqlite tx: %w", err)
	}
	return nil
}

// RecordRun stores the run report.
func (s *SQLiteSink) RecordRun(ctx context.Context, r model.RunReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, started_at, finished_at, companies, fetched, unique_jobs, kept, sent, batches, failed_batches)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Companies, r.Fetched, r.Unique, r.Kept, r.Sent, r.Batches, r.FailedBatches,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.RunID, err)
	}
	return nil
}

// Count returns the number of stored jobs.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting jobs: %w", err)
	}
	return n, nil
}

// Job loads one stored job by key. The bool is false when no such job exists.
func (s *SQLiteSink) Job(ctx context.Context, key string) (model.NormalizedJob, bool, error) {
	var (
		j                model.NormalizedJob
		source, ingested string
		posted, updated  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT job_key, company_name, company_slug, title, location_name, url, content_html,
		        departments, offices, posted_at, updated_at, ingested_at, source, is_active
		 FROM jobs WHERE job_key = ?`, key,
	).Scan(&j.JobKey, &j.CompanyName, &j.CompanySlug, &j.Title, &j.LocationName, &j.URL, &j.ContentHTML,
		&j.Departments, &j.Offices, &posted, &updated, &ingested, &source, &j.IsActive)
	if err == sql.ErrNoRows {
		return model.NormalizedJob{}, false, nil
	}
	if err != nil {
		return model.NormalizedJob{}, false, fmt.Errorf("loading job %s: %w", key, err)
	}
	j.Source = model.ATS(source)
	j.PostedAt = parseNullTime(posted)
	j.UpdatedAt = parseNullTime(updated)
	if t := parseNullTime(sql.NullString{String: ingested, Valid: true}); t != nil {
		j.IngestedAt = *t
	}
	return j, true, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
