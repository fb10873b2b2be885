package model

import (
	"net/url"
	"strings"
)

// ATS identifies the applicant tracking system hosting a company's postings.
type ATS string

const (
	ATSGreenhouse ATS = "greenhouse"
	ATSLever      ATS = "lever"
	ATSAshby      ATS = "ashby"
	ATSWorkday    ATS = "workday"
	ATSGeneric    ATS = "generic"
	ATSUnknown    ATS = "unknown"
)

// KnownATS lists every provider with a real extractor, in routing order.
var KnownATS = []ATS{ATSGreenhouse, ATSLever, ATSAshby, ATSWorkday, ATSGeneric}

// ParseATS maps a seed value to an ATS. Empty or unrecognized values are ATSUnknown.
func ParseATS(s string) ATS {
	switch ATS(strings.ToLower(strings.TrimSpace(s))) {
	case ATSGreenhouse:
		return ATSGreenhouse
	case ATSLever:
		return ATSLever
	case ATSAshby:
		return ATSAshby
	case ATSWorkday:
		return ATSWorkday
	case ATSGeneric:
		return ATSGeneric
	default:
		return ATSUnknown
	}
}

// InferATS guesses the provider from a careers URL host.
func InferATS(careersURL string) ATS {
	u, err := url.Parse(strings.TrimSpace(careersURL))
	if err != nil || u.Host == "" {
		return ATSUnknown
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "boards.greenhouse.io", host == "job-boards.greenhouse.io", host == "boards-api.greenhouse.io":
		return ATSGreenhouse
	case host == "jobs.lever.co", host == "api.lever.co":
		return ATSLever
	case host == "jobs.ashbyhq.com", host == "api.ashbyhq.com":
		return ATSAshby
	case strings.HasSuffix(host, ".myworkdayjobs.com"):
		return ATSWorkday
	default:
		return ATSUnknown
	}
}

// Company is one seed record. It is read-only for the duration of a run.
type Company struct {
	Name              string `json:"name" yaml:"name" validate:"required"`
	Domain            string `json:"domain,omitempty" yaml:"domain" validate:"omitempty,fqdn|url"`
	CareersURL        string `json:"careers_url,omitempty" yaml:"careers_url" validate:"omitempty,url"`
	ATS               string `json:"ats,omitempty" yaml:"ats"`
	Country           string `json:"country,omitempty" yaml:"country"`
	Slug              string `json:"slug,omitempty" yaml:"slug"`
	GreenhouseCompany string `json:"greenhouse_company,omitempty" yaml:"greenhouse_company"`
	LeverCompany      string `json:"lever_company,omitempty" yaml:"lever_company"`
	AshbyOrg          string `json:"ashby_org,omitempty" yaml:"ashby_org"`
}

// ResolvedATS returns the declared provider, or the one inferred from the careers
// URL when the declaration is missing or unrecognized.
func (c Company) ResolvedATS() ATS {
	if a := ParseATS(c.ATS); a != ATSUnknown {
		return a
	}
	return InferATS(c.CareersURL)
}

// ProviderSlug returns the identifier the company is registered under with the given
// provider: the provider-specific field, then slug, then the first path segment of
// the careers URL.
func (c Company) ProviderSlug(ats ATS) string {
	var specific string
	switch ats {
	case ATSGreenhouse:
		specific = c.GreenhouseCompany
	case ATSLever:
		specific = c.LeverCompany
	case ATSAshby:
		specific = c.AshbyOrg
	}
	if s := strings.TrimSpace(specific); s != "" {
		return s
	}
	if s := strings.TrimSpace(c.Slug); s != "" {
		return s
	}
	return firstPathSegment(c.CareersURL)
}

func firstPathSegment(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
