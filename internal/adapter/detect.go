package adapter

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/atsfeed/internal/cache"
	"github.com/amishk599/atsfeed/internal/httpclient"
)

var careersHrefRegex = regexp.MustCompile(`(?i)careers|jobs|join`)

// Detector finds a company's careers page from its home page.
type Detector struct {
	client *httpclient.Client
	store  cache.Store
	logger *slog.Logger
}

// NewDetector creates a Detector. store may be nil to disable caching.
func NewDetector(client *httpclient.Client, store cache.Store, logger *slog.Logger) *Detector {
	return &Detector{client: client, store: store, logger: logger}
}

// Detect fetches the domain's root page and returns the first anchor whose href
// looks like a careers link, resolved to an absolute URL. Any failure reports
// false.
func (d *Detector) Detect(ctx context.Context, domain string) (string, bool) {
	root := normalizeDomain(domain)
	if root == "" {
		return "", false
	}

	if d.store != nil {
		if cached, ok := d.store.Get(ctx, root); ok {
			return cached, cached != ""
		}
	}

	doc, final, err := d.client.GetDocument(ctx, "detect "+root, root)
	if err != nil {
		d.logger.Debug("careers detection failed", "domain", domain, "error", err)
		return "", false
	}

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !careersHrefRegex.MatchString(href) {
			return true
		}
		if abs, ok := resolveURL(final, href); ok {
			found = abs
			return false
		}
		return true
	})

	if d.store != nil {
		if err := d.store.Set(ctx, root, found); err != nil {
			d.logger.Debug("careers cache write failed", "domain", domain, "error", err)
		}
	}

	return found, found != ""
}

// normalizeDomain turns "acme.com" into "https://acme.com"; URLs pass through.
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + strings.TrimPrefix(domain, "//")
}
