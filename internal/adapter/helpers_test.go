package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/retry"
)

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testPolicy = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

// newRewriteClient returns a client whose requests, whatever their host, land
// on srv.
func newRewriteClient(srv *httptest.Server) *httpclient.Client {
	hc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
	return httpclient.New(hc, httpclient.Options{Policy: testPolicy}, discardLogger())
}

// newTestClient returns a client for tests that point adapters at srv.URL directly.
func newTestClient() *httpclient.Client {
	return httpclient.New(nil, httpclient.Options{Policy: testPolicy}, discardLogger())
}
