package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

const (
	greenhouseBaseURL  = "https://boards-api.greenhouse.io"
	greenhouseBoardURL = "https://boards.greenhouse.io"
)

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	Content        string             `json:"content"`
	Departments    json.RawMessage    `json:"departments"`
	Offices        json.RawMessage    `json:"offices"`
	FirstPublished string             `json:"first_published"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	baseURL     string
	withContent bool
	client      *httpclient.Client
}

// NewGreenhouseAdapter creates an extractor for Greenhouse boards. withContent
// requests the full HTML body of every posting.
func NewGreenhouseAdapter(client *httpclient.Client, withContent bool) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		baseURL:     greenhouseBaseURL,
		withContent: withContent,
		client:      client,
	}
}

// Extract retrieves every job on the company's board in one call; the API does
// not paginate.
func (a *GreenhouseAdapter) Extract(ctx context.Context, company model.Company) ([]model.NormalizedJob, error) {
	slug := company.ProviderSlug(model.ATSGreenhouse)
	if slug == "" {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", company.Name, model.ErrNoSlug)
	}

	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs", a.baseURL, url.PathEscape(slug))
	if a.withContent {
		endpoint += "?content=true"
	}

	var ghResp greenhouseResponse
	if err := a.client.GetJSON(ctx, "greenhouse "+slug, endpoint, &ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", slug, err)
	}

	jobs := make([]model.NormalizedJob, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		id := strconv.FormatInt(gj.ID, 10)

		jobURL := providerURL(greenhouseBoardURL, gj.AbsoluteURL,
			fmt.Sprintf("%s/%s/jobs/%s", greenhouseBoardURL, slug, id))

		posted := parseTime(gj.FirstPublished)
		if posted == nil {
			posted = parseTime(gj.CreatedAt)
		}

		jobs = append(jobs, model.NormalizedJob{
			JobKey:       model.JobKey(model.ATSGreenhouse, slug, id),
			CompanyName:  company.Name,
			CompanySlug:  slug,
			Title:        gj.Title,
			LocationName: gj.Location.Name,
			URL:          jobURL,
			ContentHTML:  html.UnescapeString(gj.Content),
			// Missing arrays stay "" rather than null; the sink's text columns are
			// non-nullable.
			Departments: jsonText(gj.Departments),
			Offices:     jsonText(gj.Offices),
			PostedAt:    posted,
			UpdatedAt:   parseTime(gj.UpdatedAt),
			Source:      model.ATSGreenhouse,
			IsActive:    true,
		})
	}

	return jobs, nil
}
