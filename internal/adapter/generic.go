package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

// GenericAdapter scrapes job links from a plain HTML careers page.
type GenericAdapter struct {
	client   *httpclient.Client
	detector *Detector
	classify LinkClassifier
	logger   *slog.Logger
}

// NewGenericAdapter creates a careers-page extractor. detector may be nil, in
// which case companies without a careers URL yield an error. A nil classify uses
// IsJobLink.
func NewGenericAdapter(client *httpclient.Client, detector *Detector, classify LinkClassifier, logger *slog.Logger) *GenericAdapter {
	if classify == nil {
		classify = IsJobLink
	}
	return &GenericAdapter{
		client:   client,
		detector: detector,
		classify: classify,
		logger:   logger,
	}
}

// Extract fetches the careers page and turns every anchor the classifier
// accepts into a job. Links are resolved against the page's final URL.
func (a *GenericAdapter) Extract(ctx context.Context, company model.Company) ([]model.NormalizedJob, error) {
	careersURL := company.CareersURL
	if careersURL == "" && company.Domain != "" && a.detector != nil {
		if found, ok := a.detector.Detect(ctx, company.Domain); ok {
			a.logger.Debug("careers page detected", "company", company.Name, "url", found)
			careersURL = found
		}
	}
	if careersURL == "" {
		return nil, fmt.Errorf("generic fetch for %s: %w", company.Name, model.ErrNoCareersURL)
	}

	doc, final, err := a.client.GetDocument(ctx, "careers "+company.Name, careersURL)
	if err != nil {
		return nil, fmt.Errorf("generic fetch for %s: %w", company.Name, err)
	}

	slug := company.ProviderSlug(model.ATSGeneric)
	if slug == "" {
		slug = strings.TrimPrefix(final.Hostname(), "www.")
	}

	return a.jobsFromDocument(doc, final, company, slug), nil
}

func (a *GenericAdapter) jobsFromDocument(doc *goquery.Document, base *url.URL, company model.Company, slug string) []model.NormalizedJob {
	var jobs []model.NormalizedJob
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := cleanText(s.Text())
		if !a.classify(text, href) {
			return
		}
		abs, ok := resolveURL(base, href)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true

		jobs = append(jobs, model.NormalizedJob{
			JobKey:      model.JobKey(model.ATSGeneric, slug, abs),
			CompanyName: company.Name,
			CompanySlug: slug,
			Title:       text,
			URL:         abs,
			Source:      model.ATSGeneric,
			IsActive:    true,
		})
	})

	return jobs
}
