package model

import "time"

// RunReport summarizes one extraction and delivery run.
type RunReport struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Companies     int // companies routed
	Fetched       int // jobs returned by extractors, before dedup
	Unique        int // after dedup
	Kept          int // after time window and keyword filters
	Sent          int // jobs in batches the sink accepted
	Batches       int
	FailedBatches int
}

// Failed reports whether any batch could not be delivered.
func (r RunReport) Failed() bool {
	return r.FailedBatches > 0
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
