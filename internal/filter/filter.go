package filter

import (
	"strings"

	"github.com/amishk599/atsfeed/internal/model"
)

// Keywords matches jobs whose title contains any of the title keywords and
// whose location contains any of the location keywords. Matching is
// case-insensitive. Empty keyword lists are treated as "match all".
type Keywords struct {
	titles    []string
	locations []string
}

// NewKeywords returns a filter that requires both a title keyword match and a
// location keyword match (case-insensitive substring).
func NewKeywords(titles, locations []string) *Keywords {
	return &Keywords{
		titles:    lowerAll(titles),
		locations: lowerAll(locations),
	}
}

// Match reports whether the job passes both keyword lists.
func (f *Keywords) Match(job model.NormalizedJob) bool {
	return containsAny(job.Title, f.titles) && containsAny(job.LocationName, f.locations)
}

func containsAny(s string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// All passes a job only if every filter does. An empty All passes everything.
type All []model.JobFilter

func (a All) Match(job model.NormalizedJob) bool {
	for _, f := range a {
		if !f.Match(job) {
			return false
		}
	}
	return true
}

// Apply returns the jobs f accepts, in order. A nil f keeps everything.
func Apply(f model.JobFilter, jobs []model.NormalizedJob) []model.NormalizedJob {
	if f == nil {
		return jobs
	}
	kept := make([]model.NormalizedJob, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			kept = append(kept, j)
		}
	}
	return kept
}
