package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum gap between consecutive requests to the same host.
// Providers are keyed by host so every company on boards-api.greenhouse.io shares
// one limiter while unrelated career sites do not wait on each other.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

// NewHostLimiter creates a limiter allowing one request per minDelay per host.
// A zero or negative minDelay disables waiting.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(l.minDelay), 1)
	l.limiters[host] = lim
	return lim
}

// Wait blocks until a request to host may proceed.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.minDelay <= 0 {
		return nil
	}
	if err := l.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// WaitURL is Wait keyed by the host of rawURL. Unparseable URLs share one bucket.
func (l *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return l.Wait(ctx, "_")
	}
	return l.Wait(ctx, u.Host)
}
