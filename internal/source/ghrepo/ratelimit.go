// SPDX-License-Identifier: AGPL-3.0-or-later
package ghrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultMaxWait is the longest rate-limit wait that is slept through.
const DefaultMaxWait = 180 * time.Second

// ErrRateLimitTooLong matches every *RateLimitError.
var ErrRateLimitTooLong = errors.New("rate limit wait too long")

// RateLimitError reports a rate limit whose reset is further away than the
// configured maximum wait.
type RateLimitError struct {
	URL  string
	Wait time.Duration
	Max  time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited on %s: wait %s exceeds %s", e.URL, e.Wait, e.Max)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitTooLong
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// retryTransport sleeps through one rate-limited response (403 or 429 with
// Retry-After or X-RateLimit-Reset) and retries the request exactly once.
type retryTransport struct {
	base    http.RoundTripper
	maxWait time.Duration
	sleep   sleepFunc
	now     func() time.Time
	logger  *slog.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	wait, limited := rateLimitWait(resp, t.now())
	if !limited {
		return resp, nil
	}
	discard(resp)

	if wait > t.maxWait {
		return nil, &RateLimitError{URL: req.URL.String(), Wait: wait, Max: t.maxWait}
	}
	t.logger.Warn("rate limited, retrying", "url", req.URL.String(), "wait", wait)
	if err := t.sleep(req.Context(), wait); err != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewinding request body: %w", err)
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// rateLimitWait returns the wait a 403/429 response asks for. A response
// without either header is not treated as rate limited.
func rateLimitWait(resp *http.Response, now time.Time) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.ParseFloat(ra, 64); err == nil {
			return seconds(int64(secs)), true
		}
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseFloat(reset, 64); err == nil {
			return seconds(int64(epoch) - now.Unix()), true
		}
	}
	return 0, false
}

func seconds(n int64) time.Duration {
	if n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
