package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/amishk599/atsfeed/internal/cache"
)

func TestDetect_FollowsRedirectAndResolves(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/en/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/en/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/en/blog">Blog</a><a href="careers">Work with us</a><a href="/jobs">Jobs</a>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewDetector(newTestClient(), nil, discardLogger())
	got, ok := d.Detect(context.Background(), srv.URL)
	if !ok {
		t.Fatal("expected a careers link")
	}
	if got != srv.URL+"/en/careers" {
		t.Errorf("Detect = %s, want %s/en/careers", got, srv.URL)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/pricing">Pricing</a>`))
	}))
	defer srv.Close()

	if got, ok := NewDetector(newTestClient(), nil, discardLogger()).Detect(context.Background(), srv.URL); ok {
		t.Errorf("expected no match, got %s", got)
	}
}

func TestDetect_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, ok := NewDetector(newTestClient(), nil, discardLogger()).Detect(context.Background(), srv.URL); ok {
		t.Error("expected no match for 404")
	}
}

func TestDetect_CachesResult(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`<a href="/careers">Careers</a>`))
	}))
	defer srv.Close()

	d := NewDetector(newTestClient(), cache.NewMemory(0), discardLogger())
	for i := 0; i < 3; i++ {
		if _, ok := d.Detect(context.Background(), srv.URL); !ok {
			t.Fatalf("detect %d: expected match", i)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", calls.Load())
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"acme.com":            "https://acme.com",
		"  acme.com ":         "https://acme.com",
		"http://acme.com":     "http://acme.com",
		"https://acme.com/en": "https://acme.com/en",
		"":                    "",
	}
	for in, want := range tests {
		if got := normalizeDomain(in); got != want {
			t.Errorf("normalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
