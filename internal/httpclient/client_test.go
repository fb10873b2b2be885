package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/atsfeed/internal/model"
	"github.com/amishk599/atsfeed/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(opts Options) *Client {
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	}
	return New(nil, opts, discardLogger())
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"acme"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	if err := newTestClient(Options{}).GetJSON(context.Background(), "test", srv.URL, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "acme" {
		t.Errorf("name = %q, want acme", out.Name)
	}
}

func TestGetJSON_RetriesOn503(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := newTestClient(Options{}).GetJSON(context.Background(), "test", srv.URL, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Error("expected ok=true")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGetJSON_404IsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(Options{}).GetJSON(context.Background(), "test", srv.URL, &out)
	if model.StatusOf(err) != 404 {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestGetJSON_MalformedBodyIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(Options{}).GetJSON(context.Background(), "test", srv.URL, &out)
	if err == nil || !retry.IsPermanent(err) {
		t.Fatalf("expected permanent decode error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestPostJSON_SendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("x-scraper-key"); got != "s3cret" {
			t.Errorf("x-scraper-key = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("body = %s", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(Options{Headers: map[string]string{"x-scraper-key": "s3cret"}})
	if err := c.PostJSON(context.Background(), "post", srv.URL, map[string]int{"a": 1}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(100 * time.Millisecond)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(Options{Timeout: 30 * time.Millisecond}).GetJSON(context.Background(), "slow", srv.URL, &out)
	if err != nil {
		t.Fatalf("expected success after timeout retry, got %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("expected a retry after timeout, got %d calls", calls.Load())
	}
}

func TestGetDocument_ReturnsFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/careers">Careers</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, final, err := newTestClient(Options{}).GetDocument(context.Background(), "page", srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Path != "/home" {
		t.Errorf("final path = %q, want /home", final.Path)
	}
	if doc.Find("a").Length() != 1 {
		t.Errorf("expected 1 anchor")
	}
}

func TestContextCancelledStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(Options{}).Get(ctx, "cancelled", srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("120"); got != 2*time.Minute {
		t.Errorf("parseRetryAfter(120) = %v", got)
	}
	for _, v := range []string{"", "soon", "-5"} {
		if got := parseRetryAfter(v); got != 0 {
			t.Errorf("parseRetryAfter(%q) = %v, want 0", v, got)
		}
	}
}
