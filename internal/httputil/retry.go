// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying GET used for every E-utilities call.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultMaxAttempts is used when a Policy leaves MaxAttempts unset.
const DefaultMaxAttempts = 3

// ErrRequestFailed matches every RequestError via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestError reports a request that failed on every allowed attempt.
type RequestError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("GET %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequestFailed, e.Err}
}

// StatusError is returned for a response outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Waiter pauses between attempts. Tests substitute a fake that records
// the requested durations instead of sleeping.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepWaiter waits on the wall clock.
type SleepWaiter struct{}

// Wait blocks for d or until ctx is done.
func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Observer is told the outcome of every attempt.
type Observer interface {
	ObserveAttempt(endpoint string, err error)
}

// Policy is a fixed-count, fixed-delay retry policy.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// Getter issues GET requests under a retry Policy. Every failure counts
// the same: transport errors, timeouts, and non-2xx statuses alike.
type Getter struct {
	Client    *http.Client
	Policy    Policy
	Waiter    Waiter
	Logger    *slog.Logger
	Observer  Observer
	UserAgent string
}

// Get fetches rawURL and returns the response body. It tries up to
// Policy.MaxAttempts times, waiting Policy.Delay before each retry, and
// returns a *RequestError carrying the last failure once attempts run out.
// A cancelled ctx stops the loop with ctx.Err().
func (g *Getter) Get(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := g.Policy.attempts()
	safeURL := Redact(rawURL)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			g.logger().Info("retrying request",
				"url", safeURL, "attempt", attempt, "max_attempts", attempts,
				"delay", g.Policy.Delay, "error", lastErr)
			if err := g.waiter().Wait(ctx, g.Policy.Delay); err != nil {
				return nil, err
			}
		}

		body, err := g.do(ctx, rawURL)
		if g.Observer != nil {
			g.Observer.ObserveAttempt(endpointOf(rawURL), err)
		}
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err
	}

	return nil, &RequestError{URL: safeURL, Attempts: attempts, Err: lastErr}
}

func (g *Getter) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (g *Getter) client() *http.Client {
	if g.Client == nil {
		return http.DefaultClient
	}
	return g.Client
}

func (g *Getter) waiter() Waiter {
	if g.Waiter == nil {
		return SleepWaiter{}
	}
	return g.Waiter
}

func (g *Getter) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// Redact replaces the api_key query parameter so URLs can be logged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("api_key") == "" {
		return rawURL
	}
	q.Set("api_key", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

// endpointOf returns the last path segment, e.g. "esearch.fcgi".
func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return path.Base(u.Path)
}
