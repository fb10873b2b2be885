package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

const (
	ashbyGraphQLBaseURL = "https://jobs.ashbyhq.com"
	ashbyRESTBaseURL    = "https://api.ashbyhq.com"
	ashbyHostedURL      = "https://jobs.ashbyhq.com"

	ashbyPageSize = 200
	ashbyMaxPages = 25
)

// AshbyAPI selects which Ashby endpoint an AshbyAdapter talks to.
type AshbyAPI string

const (
	AshbyGraphQL AshbyAPI = "graphql"
	AshbyREST    AshbyAPI = "rest"
)

// ParseAshbyAPI maps a config value to an AshbyAPI; anything but "rest" is GraphQL.
func ParseAshbyAPI(s string) AshbyAPI {
	if strings.EqualFold(strings.TrimSpace(s), string(AshbyREST)) {
		return AshbyREST
	}
	return AshbyGraphQL
}

const ashbyJobPostingsQuery = `query JobPostings($organizationHostedJobsPageName: String!, $first: Int!, $after: String) {
  jobPostings(organizationHostedJobsPageName: $organizationHostedJobsPageName, first: $first, after: $after) {
    nodes {
      id
      title
      locationName
      employmentType
      departmentName
      teamName
      hostedUrl
      createdAt
      updatedAt
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

type ashbyGraphQLRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type ashbyGraphQLPosting struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	LocationName   string `json:"locationName"`
	EmploymentType string `json:"employmentType"`
	DepartmentName string `json:"departmentName"`
	TeamName       string `json:"teamName"`
	HostedURL      string `json:"hostedUrl"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type ashbyPageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type ashbyGraphQLResponse struct {
	Data *struct {
		JobPostings *struct {
			Nodes    []ashbyGraphQLPosting `json:"nodes"`
			PageInfo ashbyPageInfo         `json:"pageInfo"`
		} `json:"jobPostings"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ashbyJob represents a single job in the Ashby posting API response.
type ashbyJob struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Location        string `json:"location"`
	Department      string `json:"department"`
	Team            string `json:"team"`
	EmploymentType  string `json:"employmentType"`
	JobURL          string `json:"jobUrl"`
	ApplyURL        string `json:"applyUrl"`
	DescriptionHTML string `json:"descriptionHtml"`
	PublishedAt     string `json:"publishedAt"`
	UpdatedAt       string `json:"updatedAt"`
	IsListed        *bool  `json:"isListed"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter fetches jobs from Ashby, either through the hosted jobs page
// GraphQL endpoint or the public posting API.
type AshbyAdapter struct {
	api         AshbyAPI
	graphqlBase string
	restBase    string
	client      *httpclient.Client
	logger      *slog.Logger
}

// NewAshbyAdapter creates a new extractor for Ashby job boards.
func NewAshbyAdapter(client *httpclient.Client, api AshbyAPI, logger *slog.Logger) *AshbyAdapter {
	return &AshbyAdapter{
		api:         api,
		graphqlBase: ashbyGraphQLBaseURL,
		restBase:    ashbyRESTBaseURL,
		client:      client,
		logger:      logger,
	}
}

// Extract retrieves every listed posting for the company's Ashby org.
func (a *AshbyAdapter) Extract(ctx context.Context, company model.Company) ([]model.NormalizedJob, error) {
	org := company.ProviderSlug(model.ATSAshby)
	if org == "" {
		return nil, fmt.Errorf("ashby fetch for %s: %w", company.Name, model.ErrNoSlug)
	}
	if a.api == AshbyREST {
		return a.extractREST(ctx, company, org)
	}
	return a.extractGraphQL(ctx, company, org)
}

func (a *AshbyAdapter) extractGraphQL(ctx context.Context, company model.Company, org string) ([]model.NormalizedJob, error) {
	endpoint := a.graphqlBase + "/api/non-user-graphql?op=JobPostings"

	var (
		jobs   []model.NormalizedJob
		cursor string
	)
	for page := 1; ; page++ {
		vars := map[string]any{
			"organizationHostedJobsPageName": org,
			"first":                          ashbyPageSize,
		}
		if cursor != "" {
			vars["after"] = cursor
		}
		req := ashbyGraphQLRequest{
			OperationName: "JobPostings",
			Variables:     vars,
			Query:         ashbyJobPostingsQuery,
		}

		var resp ashbyGraphQLResponse
		label := fmt.Sprintf("ashby %s page %d", org, page)
		if err := a.client.PostJSON(ctx, label, endpoint, req, &resp); err != nil {
			return nil, fmt.Errorf("ashby fetch for %s: %w", org, err)
		}
		if resp.Data == nil || resp.Data.JobPostings == nil {
			if len(resp.Errors) > 0 {
				return nil, fmt.Errorf("ashby fetch for %s: graphql: %s", org, resp.Errors[0].Message)
			}
			return nil, fmt.Errorf("ashby fetch for %s: %w", org, errors.New("response has no jobPostings"))
		}

		for _, p := range resp.Data.JobPostings.Nodes {
			if p.ID == "" {
				continue
			}
			jobs = append(jobs, model.NormalizedJob{
				JobKey:       model.JobKey(model.ATSAshby, org, p.ID),
				CompanyName:  company.Name,
				CompanySlug:  org,
				Title:        p.Title,
				LocationName: p.LocationName,
				URL:          ashbyJobURL(p.HostedURL, org, p.ID),
				Departments:  jsonList(p.DepartmentName, p.TeamName),
				PostedAt:     parseTime(p.CreatedAt),
				UpdatedAt:    parseTime(p.UpdatedAt),
				Source:       model.ATSAshby,
				IsActive:     true,
			})
		}

		info := resp.Data.JobPostings.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			break
		}
		if page >= ashbyMaxPages {
			a.logger.Warn("ashby page cap reached, stopping pagination",
				"company", company.Name,
				"org", org,
				"pages", page,
				"jobs", len(jobs),
			)
			break
		}
		cursor = info.EndCursor
	}

	return jobs, nil
}

func (a *AshbyAdapter) extractREST(ctx context.Context, company model.Company, org string) ([]model.NormalizedJob, error) {
	endpoint := fmt.Sprintf("%s/posting-api/job-board/%s", a.restBase, url.PathEscape(org))

	var ashbyResp ashbyResponse
	if err := a.client.GetJSON(ctx, "ashby "+org, endpoint, &ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", org, err)
	}

	jobs := make([]model.NormalizedJob, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if aj.IsListed != nil && !*aj.IsListed {
			continue
		}

		id := aj.ID
		if id == "" {
			id = aj.JobURL
		}
		if id == "" {
			continue
		}

		link := aj.JobURL
		if link == "" {
			link = aj.ApplyURL
		}

		jobs = append(jobs, model.NormalizedJob{
			JobKey:       model.JobKey(model.ATSAshby, org, id),
			CompanyName:  company.Name,
			CompanySlug:  org,
			Title:        aj.Title,
			LocationName: aj.Location,
			URL:          ashbyJobURL(link, org, id),
			ContentHTML:  aj.DescriptionHTML,
			Departments:  jsonList(aj.Department, aj.Team),
			PostedAt:     parseTime(aj.PublishedAt),
			UpdatedAt:    parseTime(aj.UpdatedAt),
			Source:       model.ATSAshby,
			IsActive:     true,
		})
	}

	return jobs, nil
}

func ashbyJobURL(link, org, id string) string {
	return providerURL(ashbyHostedURL, link, fmt.Sprintf("%s/%s/%s", ashbyHostedURL, org, id))
}
