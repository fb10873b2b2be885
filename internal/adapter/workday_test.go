package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/atsfeed/internal/model"
)

func TestWorkdayExtract_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": "R-100",
				"title": "Data Engineer",
				"externalPath": "/job/Austin/Data-Engineer_R-100",
				"primaryLocation": "Austin, TX",
				"postedOnDate": "2026-03-01"
			},
			{
				"title": "Analyst",
				"externalPath": "/job/Remote/Analyst_R-200",
				"primaryLocation": "Remote",
				"postedOn": "Posted 3 Days Ago"
			},
			{
				"title": "No Path"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewWorkdayAdapter(newTestClient())
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	company := model.Company{Name: "Acme", ATS: "workday", Slug: "acme", CareersURL: srv.URL + "/wday/cxs/acme/External/jobs"}
	jobs, err := a.Extract(context.Background(), company)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	if jobs[0].JobKey != "workday:acme:R-100" {
		t.Errorf("unexpected key %s", jobs[0].JobKey)
	}
	if jobs[0].URL != srv.URL+"/job/Austin/Data-Engineer_R-100" {
		t.Errorf("expected absolute URL, got %s", jobs[0].URL)
	}
	if jobs[0].LocationName != "Austin, TX" {
		t.Errorf("unexpected location %s", jobs[0].LocationName)
	}
	if jobs[0].PostedAt == nil || !jobs[0].PostedAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected PostedAt %v", jobs[0].PostedAt)
	}

	if jobs[1].JobKey != "workday:acme:/job/Remote/Analyst_R-200" {
		t.Errorf("expected externalPath as native id, got %s", jobs[1].JobKey)
	}
	if jobs[1].PostedAt == nil || !jobs[1].PostedAt.Equal(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected relative PostedAt %v", jobs[1].PostedAt)
	}
}

func TestWorkdayExtract_NoCareersURL(t *testing.T) {
	_, err := NewWorkdayAdapter(newTestClient()).Extract(context.Background(), model.Company{Name: "Acme"})
	if err == nil {
		t.Fatal("expected error without careers URL")
	}
}

func TestWorkdayExtract_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewWorkdayAdapter(newTestClient()).Extract(context.Background(), model.Company{Name: "Acme", CareersURL: srv.URL})
	if model.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestWorkdaySlug_FromHost(t *testing.T) {
	company := model.Company{CareersURL: "https://acme.wd5.myworkdayjobs.com/External"}
	if got := workdaySlug(company, mustParseURL(t, company.CareersURL)); got != "acme" {
		t.Errorf("workdaySlug = %q, want acme", got)
	}
}

func TestParsePostedOn(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)
	today := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  *time.Time
	}{
		{"Posted Today", &today},
		{"Posted Yesterday", ptrTime(today.AddDate(0, 0, -1))},
		{"Posted 1 Day Ago", ptrTime(today.AddDate(0, 0, -1))},
		{"Posted 5 Days Ago", ptrTime(today.AddDate(0, 0, -5))},
		{"Posted 30+ Days Ago", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := parsePostedOn(tc.input, now)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("parsePostedOn(%q) = %v, want nil", tc.input, got)
		case tc.want != nil && (got == nil || !got.Equal(*tc.want)):
			t.Errorf("parsePostedOn(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
