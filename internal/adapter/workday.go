package adapter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

// workdayResponse is the body served at a Workday company's careers URL.
type workdayResponse struct {
	Jobs []workdayPosting `json:"jobs"`
}

type workdayPosting struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ExternalPath    string `json:"externalPath"`
	PrimaryLocation string `json:"primaryLocation"`
	PostedOn        string `json:"postedOn"`
	PostedOnDate    string `json:"postedOnDate"`
}

// WorkdayAdapter fetches jobs from a Workday careers URL that serves a JSON job list.
type WorkdayAdapter struct {
	client *httpclient.Client
	now    func() time.Time
}

// NewWorkdayAdapter creates a new extractor for Workday career sites.
func NewWorkdayAdapter(client *httpclient.Client) *WorkdayAdapter {
	return &WorkdayAdapter{client: client, now: time.Now}
}

// Extract fetches the careers URL and maps every posting. externalPath values
// are resolved against the careers URL.
func (a *WorkdayAdapter) Extract(ctx context.Context, company model.Company) ([]model.NormalizedJob, error) {
	if company.CareersURL == "" {
		return nil, fmt.Errorf("workday fetch for %s: %w", company.Name, model.ErrNoCareersURL)
	}
	base, err := url.Parse(company.CareersURL)
	if err != nil {
		return nil, fmt.Errorf("workday fetch for %s: %w", company.Name, err)
	}
	slug := workdaySlug(company, base)

	var wdResp workdayResponse
	if err := a.client.GetJSON(ctx, "workday "+slug, company.CareersURL, &wdResp); err != nil {
		return nil, fmt.Errorf("workday fetch for %s: %w", slug, err)
	}

	jobs := make([]model.NormalizedJob, 0, len(wdResp.Jobs))
	for _, p := range wdResp.Jobs {
		jobURL, ok := resolveURL(base, p.ExternalPath)
		if !ok {
			continue
		}

		id := p.ID
		if id == "" {
			id = p.ExternalPath
		}

		posted := parseTime(p.PostedOnDate)
		if posted == nil {
			posted = parsePostedOn(p.PostedOn, a.now())
		}

		jobs = append(jobs, model.NormalizedJob{
			JobKey:       model.JobKey(model.ATSWorkday, slug, id),
			CompanyName:  company.Name,
			CompanySlug:  slug,
			Title:        p.Title,
			LocationName: p.PrimaryLocation,
			URL:          jobURL,
			PostedAt:     posted,
			Source:       model.ATSWorkday,
			IsActive:     true,
		})
	}

	return jobs, nil
}

// workdaySlug prefers the configured slug, else the tenant label of the host
// ("acme" for acme.wd5.myworkdayjobs.com).
func workdaySlug(company model.Company, base *url.URL) string {
	if company.Slug != "" {
		return company.Slug
	}
	host := base.Hostname()
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+) Days? Ago$`)

// parsePostedOn converts a Workday relative date string to an approximate timestamp.
func parsePostedOn(postedOn string, now time.Time) *time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if n, ok := parseDaysAgo(postedOn); ok {
		t := today.AddDate(0, 0, -n)
		return &t
	}

	// "Posted 30+ Days Ago" or unknown → nil
	return nil
}

func parseDaysAgo(s string) (int, bool) {
	matches := daysAgoRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
