package filter

import (
	"time"

	"github.com/amishk599/atsfeed/internal/model"
)

// Window keeps jobs whose timestamp (updated_at, else posted_at) is no older
// than a lookback from now. Jobs with no timestamp are dropped while the window
// is active, except those from sources that never carry one (scraped careers
// pages).
type Window struct {
	lookback time.Duration
	now      func() time.Time
}

// NewWindow creates a Window. A lookback <= 0 disables it.
func NewWindow(lookback time.Duration) *Window {
	return &Window{lookback: lookback, now: time.Now}
}

// Active reports whether the window filters anything.
func (w *Window) Active() bool {
	return w != nil && w.lookback > 0
}

// Cutoff returns the oldest accepted timestamp, or the zero time when inactive.
func (w *Window) Cutoff() time.Time {
	if !w.Active() {
		return time.Time{}
	}
	return w.now().Add(-w.lookback)
}

func (w *Window) Match(job model.NormalizedJob) bool {
	if !w.Active() || untimed(job.Source) {
		return true
	}
	ts := job.Timestamp()
	if ts == nil {
		return false
	}
	return !ts.Before(w.Cutoff())
}

// untimed reports whether jobs from source can never carry a timestamp.
func untimed(source model.ATS) bool {
	return source == model.ATSGeneric
}
