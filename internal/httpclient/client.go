// Package httpclient is the single outbound HTTP path: per-call timeout, host
// rate limiting, shared headers and the retry policy.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/atsfeed/internal/model"
	"github.com/amishk599/atsfeed/internal/ratelimit"
	"github.com/amishk599/atsfeed/internal/retry"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; atsfeed/1.0)"
	maxBodyBytes     = 32 << 20
)

// Options configures one Client. Clients are cheap; build one per call-site class
// (page probes, provider APIs, sink) so each gets its own timeout.
type Options struct {
	Timeout   time.Duration // per attempt
	UserAgent string
	Headers   map[string]string // sent on every request
	Policy    retry.Policy
	Limiter   *ratelimit.HostLimiter // optional
}

// Client performs requests through retry.Do.
type Client struct {
	hc     *http.Client
	opts   Options
	logger *slog.Logger
}

// Response is a fully read response body plus the URL it was served from after
// redirects.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   *url.URL
}

// New wraps hc. A nil hc uses a fresh http.Client.
func New(hc *http.Client, opts Options, logger *slog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{hc: hc, opts: opts, logger: logger}
}

// Get fetches rawURL and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, label, rawURL string) (*Response, error) {
	return c.do(ctx, label, http.MethodGet, rawURL, nil, "")
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, label, rawURL string, out any) error {
	resp, err := c.do(ctx, label, http.MethodGet, rawURL, nil, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return retry.Permanent(fmt.Errorf("%s: decode: %w", label, err))
	}
	return nil
}

// PostJSON sends body as JSON. When out is non-nil the response is decoded into it.
func (c *Client) PostJSON(ctx context.Context, label, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", label, err)
	}
	resp, err := c.do(ctx, label, http.MethodPost, rawURL, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return retry.Permanent(fmt.Errorf("%s: decode: %w", label, err))
	}
	return nil
}

// GetDocument fetches an HTML page and parses it with goquery. The returned URL is
// the page's final location, which relative links must be resolved against.
func (c *Client) GetDocument(ctx context.Context, label, rawURL string) (*goquery.Document, *url.URL, error) {
	resp, err := c.do(ctx, label, http.MethodGet, rawURL, nil, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: parse html: %w", label, err)
	}
	return doc, resp.FinalURL, nil
}

func (c *Client) do(ctx context.Context, label, method, rawURL string, body []byte, accept string) (*Response, error) {
	return retry.Do(ctx, c.opts.Policy, label, c.logger, func(ctx context.Context) (*Response, error) {
		return c.attempt(ctx, method, rawURL, body, accept)
	})
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, body []byte, accept string) (*Response, error) {
	if err := c.opts.Limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		FinalURL:   resp.Request.URL,
	}, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
