// Package sink holds the destinations a run's batches are delivered to.
package sink

import (
	"context"
	"fmt"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

// SecretHeader carries the shared secret on sink and company-source requests.
const SecretHeader = "x-scraper-key"

// AuthHeaders returns the headers that authenticate with the shared secret.
func AuthHeaders(secret string) map[string]string {
	return map[string]string{
		SecretHeader:    secret,
		"Authorization": "Bearer " + secret,
	}
}

type ingestRequest struct {
	Jobs []model.NormalizedJob `json:"jobs"`
}

// HTTPSink POSTs batches to the ingestion endpoint. The endpoint upserts by
// job_key, so re-sending a batch is harmless.
type HTTPSink struct {
	url    string
	client *httpclient.Client
}

// NewHTTPSink creates a sink for endpoint. client should carry AuthHeaders and
// the sink timeout.
func NewHTTPSink(endpoint string, client *httpclient.Client) *HTTPSink {
	return &HTTPSink{url: endpoint, client: client}
}

func (s *HTTPSink) Send(ctx context.Context, jobs []model.NormalizedJob) error {
	label := fmt.Sprintf("ingest %d jobs", len(jobs))
	if err := s.client.PostJSON(ctx, label, s.url, ingestRequest{Jobs: jobs}, nil); err != nil {
		return fmt.Errorf("posting batch to sink: %w", err)
	}
	return nil
}
