package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/atsfeed/internal/model"
)

var acmeLever = model.Company{Name: "Acme Corp", ATS: "lever", LeverCompany: "acme"}

func TestLeverExtract_Success(t *testing.T) {
	payload := `[
		{
			"id": "abc-123",
			"text": "Platform Engineer",
			"description": "<div>Run the platform</div>",
			"categories": {
				"team": "Infra",
				"department": "Engineering",
				"location": "Toronto",
				"allLocations": ["Toronto", "Remote"]
			},
			"createdAt": 1769784074110,
			"updatedAt": 1769870474110,
			"hostedUrl": "https://jobs.lever.co/acme/abc-123"
		},
		{
			"id": "def-456",
			"text": "Designer",
			"categories": {}
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme" || r.URL.Query().Get("mode") != "json" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewLeverAdapter(newTestClient(), discardLogger())
	a.baseURL = srv.URL

	jobs, err := a.Extract(context.Background(), acmeLever)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.JobKey != "lever:acme:abc-123" {
		t.Errorf("unexpected key %s", j.JobKey)
	}
	if j.LocationName != "Toronto" {
		t.Errorf("expected Toronto, got %s", j.LocationName)
	}
	if j.Departments != `["Engineering","Infra"]` {
		t.Errorf("unexpected departments: %s", j.Departments)
	}
	if j.Offices != `["Toronto","Remote"]` {
		t.Errorf("unexpected offices: %s", j.Offices)
	}
	if j.PostedAt == nil || j.PostedAt.UnixMilli() != 1769784074110 {
		t.Errorf("unexpected PostedAt: %v", j.PostedAt)
	}
	if j.UpdatedAt == nil || j.UpdatedAt.UnixMilli() != 1769870474110 {
		t.Errorf("unexpected UpdatedAt: %v", j.UpdatedAt)
	}

	missing := jobs[1]
	if missing.LocationName != "Unspecified" {
		t.Errorf("expected Unspecified location, got %q", missing.LocationName)
	}
	if missing.URL != "https://jobs.lever.co/acme/def-456" {
		t.Errorf("expected constructed URL, got %s", missing.URL)
	}
	if missing.Departments != "" || missing.Offices != "" {
		t.Errorf("expected empty departments/offices, got %q %q", missing.Departments, missing.Offices)
	}
}

func TestLeverExtract_NonArrayBodyIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "Document not found"}`))
	}))
	defer srv.Close()

	a := NewLeverAdapter(newTestClient(), discardLogger())
	a.baseURL = srv.URL

	jobs, err := a.Extract(context.Background(), acmeLever)
	if err != nil {
		t.Fatalf("expected no error for non-array body, got %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
}

func TestLeverExtract_MalformedArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": `))
	}))
	defer srv.Close()

	a := NewLeverAdapter(newTestClient(), discardLogger())
	a.baseURL = srv.URL

	if _, err := a.Extract(context.Background(), acmeLever); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLeverExtract_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewLeverAdapter(newTestClient(), discardLogger())
	a.baseURL = srv.URL

	if _, err := a.Extract(context.Background(), acmeLever); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestLeverExtract_RelativeHostedURLIsResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "abc-123", "text": "Engineer", "hostedUrl": "/acme/abc-123"}]`))
	}))
	defer srv.Close()

	a := NewLeverAdapter(newTestClient(), discardLogger())
	a.baseURL = srv.URL

	jobs, err := a.Extract(context.Background(), acmeLever)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].URL != "https://jobs.lever.co/acme/abc-123" {
		t.Fatalf("expected absolute hosted URL, got %+v", jobs)
	}
}
