package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSlug is returned by extractors when a company has no usable provider slug.
var ErrNoSlug = errors.New("company has no provider slug")

// ErrNoCareersURL is returned when a company has neither a careers URL nor a
// domain the careers page can be detected from.
var ErrNoCareersURL = errors.New("company has no careers url")

// HTTPError carries a non-2xx response status so the retry client can classify it.
type HTTPError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	case e.URL != "":
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
