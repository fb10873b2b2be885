// Package dedup accumulates one run's normalized jobs, keyed by job key.
package dedup

import (
	"time"

	"github.com/amishk599/atsfeed/internal/model"
)

// Accumulator holds the unique jobs of a run. A job whose key was already seen
// replaces the earlier one in its original position. Not safe for concurrent use.
type Accumulator struct {
	index map[string]int
	jobs  []model.NormalizedJob
	seen  int
	now   func() time.Time
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{
		index: make(map[string]int),
		now:   time.Now,
	}
}

// Add stamps ingested_at on each job and stores it. Jobs without a key are dropped.
func (a *Accumulator) Add(jobs ...model.NormalizedJob) {
	stamp := a.now().UTC()
	for _, j := range jobs {
		a.seen++
		if j.JobKey == "" {
			continue
		}
		j.IngestedAt = stamp
		if i, ok := a.index[j.JobKey]; ok {
			a.jobs[i] = j
			continue
		}
		a.index[j.JobKey] = len(a.jobs)
		a.jobs = append(a.jobs, j)
	}
}

// Jobs returns a copy of the unique jobs in first-seen order.
func (a *Accumulator) Jobs() []model.NormalizedJob {
	out := make([]model.NormalizedJob, len(a.jobs))
	copy(out, a.jobs)
	return out
}

// Len is the number of unique jobs.
func (a *Accumulator) Len() int { return len(a.jobs) }

// Seen is the number of jobs passed to Add, duplicates included.
func (a *Accumulator) Seen() int { return a.seen }
