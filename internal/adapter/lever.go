package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
	"github.com/amishk599/atsfeed/internal/retry"
)

const (
	leverBaseURL    = "https://api.lever.co"
	leverHostedURL  = "https://jobs.lever.co"
	leverNoLocation = "Unspecified"
)

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string          `json:"team"`
	Department   string          `json:"department"`
	Location     string          `json:"location"`
	Commitment   string          `json:"commitment"`
	AllLocations json.RawMessage `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Description string          `json:"description"`
	Categories  leverCategories `json:"categories"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
	HostedURL   string          `json:"hostedUrl"`
	ApplyURL    string          `json:"applyUrl"`
}

// LeverAdapter fetches jobs from the Lever public postings API.
type LeverAdapter struct {
	baseURL string
	client  *httpclient.Client
	logger  *slog.Logger
}

// NewLeverAdapter creates a new extractor for Lever boards.
func NewLeverAdapter(client *httpclient.Client, logger *slog.Logger) *LeverAdapter {
	return &LeverAdapter{
		baseURL: leverBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Extract retrieves all postings for the company. A body that is not a JSON
// array is treated as an empty board.
func (a *LeverAdapter) Extract(ctx context.Context, company model.Company) ([]model.NormalizedJob, error) {
	slug := company.ProviderSlug(model.ATSLever)
	if slug == "" {
		return nil, fmt.Errorf("lever fetch for %s: %w", company.Name, model.ErrNoSlug)
	}

	endpoint := fmt.Sprintf("%s/v0/postings/%s?mode=json", a.baseURL, url.PathEscape(slug))
	resp, err := a.client.Get(ctx, "lever "+slug, endpoint)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", slug, err)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '[' {
		a.logger.Debug("lever response is not a list", "company", company.Name, "slug", slug)
		return nil, nil
	}

	var leverJobs []leverJob
	if err := json.Unmarshal(body, &leverJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", slug, retry.Permanent(err))
	}

	jobs := make([]model.NormalizedJob, 0, len(leverJobs))
	for _, lj := range leverJobs {
		if lj.ID == "" {
			continue
		}

		location := lj.Categories.Location
		if location == "" {
			location = leverNoLocation
		}

		jobURL := providerURL(leverHostedURL, lj.HostedURL,
			fmt.Sprintf("%s/%s/%s", leverHostedURL, slug, lj.ID))

		jobs = append(jobs, model.NormalizedJob{
			JobKey:       model.JobKey(model.ATSLever, slug, lj.ID),
			CompanyName:  company.Name,
			CompanySlug:  slug,
			Title:        lj.Text,
			LocationName: location,
			URL:          jobURL,
			ContentHTML:  lj.Description,
			Departments:  jsonList(lj.Categories.Department, lj.Categories.Team),
			Offices:      jsonText(lj.Categories.AllLocations),
			PostedAt:     unixMilli(lj.CreatedAt),
			UpdatedAt:    unixMilli(lj.UpdatedAt),
			Source:       model.ATSLever,
			IsActive:     true,
		})
	}

	return jobs, nil
}
