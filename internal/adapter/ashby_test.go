package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/amishk599/atsfeed/internal/model"
)

var acmeAshby = model.Company{Name: "Acme Corp", ATS: "ashby", CareersURL: "https://jobs.ashbyhq.com/acme"}

func newAshbyTestAdapter(srv *httptest.Server, api AshbyAPI) *AshbyAdapter {
	a := NewAshbyAdapter(newTestClient(), api, discardLogger())
	a.graphqlBase = srv.URL
	a.restBase = srv.URL
	return a
}

func graphqlPage(ids []string, next bool, cursor string) string {
	nodes := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, map[string]any{
			"id":             id,
			"title":          "Role " + id,
			"locationName":   "Remote",
			"departmentName": "Engineering",
			"createdAt":      "2026-02-10T09:00:00.000Z",
		})
	}
	b, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"jobPostings": map[string]any{
				"nodes":    nodes,
				"pageInfo": map[string]any{"hasNextPage": next, "endCursor": cursor},
			},
		},
	})
	return string(b)
}

func TestAshbyGraphQL_FollowsCursor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/non-user-graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ashbyGraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Variables["organizationHostedJobsPageName"] != "acme" {
			t.Errorf("unexpected org: %v", req.Variables["organizationHostedJobsPageName"])
		}
		if req.Variables["first"] != float64(ashbyPageSize) {
			t.Errorf("unexpected page size: %v", req.Variables["first"])
		}

		switch calls.Add(1) {
		case 1:
			if _, ok := req.Variables["after"]; ok {
				t.Error("first page should not send a cursor")
			}
			w.Write([]byte(graphqlPage([]string{"a1", "a2"}, true, "c1")))
		default:
			if req.Variables["after"] != "c1" {
				t.Errorf("expected cursor c1, got %v", req.Variables["after"])
			}
			w.Write([]byte(graphqlPage([]string{"a3"}, false, "")))
		}
	}))
	defer srv.Close()

	jobs, err := newAshbyTestAdapter(srv, AshbyGraphQL).Extract(context.Background(), acmeAshby)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 page requests, got %d", calls.Load())
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	j := jobs[0]
	if j.JobKey != "ashby:acme:a1" {
		t.Errorf("unexpected key %s", j.JobKey)
	}
	if j.URL != "https://jobs.ashbyhq.com/acme/a1" {
		t.Errorf("expected constructed URL, got %s", j.URL)
	}
	if j.Departments != `["Engineering"]` {
		t.Errorf("unexpected departments %s", j.Departments)
	}
	if j.PostedAt == nil {
		t.Error("expected PostedAt")
	}
}

func TestAshbyGraphQL_StopsAtPageCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Write([]byte(graphqlPage([]string{fmt.Sprintf("p%d", n)}, true, fmt.Sprintf("c%d", n))))
	}))
	defer srv.Close()

	jobs, err := newAshbyTestAdapter(srv, AshbyGraphQL).Extract(context.Background(), acmeAshby)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != ashbyMaxPages {
		t.Errorf("expected %d requests, got %d", ashbyMaxPages, calls.Load())
	}
	if len(jobs) != ashbyMaxPages {
		t.Errorf("expected %d jobs, got %d", ashbyMaxPages, len(jobs))
	}
}

func TestAshbyGraphQL_ErrorsWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null, "errors": [{"message": "organization not found"}]}`))
	}))
	defer srv.Close()

	if _, err := newAshbyTestAdapter(srv, AshbyGraphQL).Extract(context.Background(), acmeAshby); err == nil {
		t.Fatal("expected error for graphql errors, got nil")
	}
}

func TestAshbyREST_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": "r1",
				"title": "Senior Backend Engineer",
				"location": "New York",
				"department": "Engineering",
				"team": "Payments",
				"applyUrl": "https://jobs.ashbyhq.com/acme/r1/application",
				"publishedAt": "2026-02-10T09:00:00Z",
				"isListed": true
			},
			{
				"id": "r2",
				"title": "Hidden Role",
				"isListed": false
			},
			{
				"id": "r3",
				"title": "Legacy Listing",
				"jobUrl": "https://jobs.ashbyhq.com/acme/r3"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posting-api/job-board/acme" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	jobs, err := newAshbyTestAdapter(srv, AshbyREST).Extract(context.Background(), acmeAshby)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 listed jobs, got %d", len(jobs))
	}
	if jobs[0].URL != "https://jobs.ashbyhq.com/acme/r1/application" {
		t.Errorf("expected applyUrl, got %s", jobs[0].URL)
	}
	if jobs[0].Departments != `["Engineering","Payments"]` {
		t.Errorf("unexpected departments %s", jobs[0].Departments)
	}
	if jobs[1].JobKey != "ashby:acme:r3" {
		t.Errorf("unexpected key %s", jobs[1].JobKey)
	}
}

func TestAshbyREST_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newAshbyTestAdapter(srv, AshbyREST).Extract(context.Background(), acmeAshby); err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
}

func TestParseAshbyAPI(t *testing.T) {
	if ParseAshbyAPI("REST") != AshbyREST {
		t.Error("expected rest")
	}
	for _, v := range []string{"", "graphql", "other"} {
		if ParseAshbyAPI(v) != AshbyGraphQL {
			t.Errorf("ParseAshbyAPI(%q) should default to graphql", v)
		}
	}
}
