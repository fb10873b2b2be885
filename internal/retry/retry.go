package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/atsfeed/internal/model"
)

// retriableStatus is the set of HTTP statuses worth another attempt. Everything
// else at or above 400 fails immediately.
var retriableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
	520: true,
	522: true,
	523: true,
	524: true,
}

// Policy bounds the attempts and backoff of one logical request.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before attempt n+1 is BaseDelay * n^2
	MaxDelay    time.Duration // cap for any single delay
}

// DefaultPolicy is used when a caller passes a zero Policy.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    30 * time.Second,
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	return p
}

// Backoff returns the delay before the attempt following attempt n (1-based):
// min(MaxDelay, BaseDelay * n^2).
func (p Policy) Backoff(n int) time.Duration {
	p = p.withDefaults()
	d := p.BaseDelay * time.Duration(n*n)
	if d > p.MaxDelay || d < 0 {
		return p.MaxDelay
	}
	return d
}

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (malformed payloads, bad requests).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetriableStatus reports whether an HTTP status belongs to the retriable set.
func RetriableStatus(code int) bool {
	return retriableStatus[code]
}

// IsRetryable classifies an error from one attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsPermanent(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return RetriableStatus(httpErr.StatusCode)
	}

	// Network failures, DNS errors and per-attempt timeouts.
	return true
}

// Do calls fn until it succeeds, returns a non-retryable error, ctx is done, or
// policy.MaxAttempts is reached. Each retryable failed attempt logs one warning.
func Do[T any](ctx context.Context, policy Policy, label string, logger *slog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()
	var zero T

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s: %w", label, ctx.Err())
		}
		if !IsRetryable(err) {
			return zero, fmt.Errorf("%s: %w", label, err)
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			logger.Warn("request failed, giving up",
				"label", label,
				"attempt", attempt,
				"max_attempts", policy.MaxAttempts,
				"error", err,
			)
			break
		}

		delay := backoffFor(policy, attempt, err)
		logger.Warn("request failed, retrying",
			"label", label,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: retry cancelled: %w", label, ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, &ExhaustedError{Label: label, Attempts: policy.MaxAttempts, Err: lastErr}
}

// backoffFor prefers a server-provided Retry-After, still bounded by MaxDelay.
func backoffFor(p Policy, attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		if httpErr.RetryAfter > p.MaxDelay {
			return p.MaxDelay
		}
		return httpErr.RetryAfter
	}
	return p.Backoff(attempt)
}
