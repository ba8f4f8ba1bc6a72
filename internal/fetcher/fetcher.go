// Package fetcher retrieves page content with bounded retry and a shared
// politeness gate. Two implementations exist: a static HTTP fetcher (colly)
// and a dynamic one driving a headless browser (chromedp) for pages that
// only render their listings client-side.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/kuuhaku1102/beauty/internal/logger"
)

// Fetcher retrieves the HTML body of a page.
type Fetcher interface {
	// Fetch returns the page content as HTML text, or a *FetchError after
	// exhausting retries.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type.
	Type() string
}

// FetchError is returned after all retry attempts for one URL have failed.
// It wraps the last underlying transport failure.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config holds shared fetcher settings.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// DefaultConfig returns sensible fetcher defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:  "Mozilla/5.0 (compatible; ScraperBot/1.0; +https://github.com/kuuhaku1102/beauty)",
		Timeout:    30 * time.Second,
		Retries:    3,
		RetryDelay: 2 * time.Second,
	}
}

// attemptFunc performs a single fetch attempt.
type attemptFunc func(ctx context.Context, url string) (string, error)

// fetchWithRetry runs attempts through the gate with linearly increasing
// delay between failures (delay × attempt number). Non-2xx status is a
// failure for the attempt, not a distinct error kind.
func fetchWithRetry(ctx context.Context, gate *Gate, cfg Config, url string, attempt attemptFunc) (string, error) {
	var lastErr error
	for i := 1; i <= cfg.Retries; i++ {
		if err := ctx.Err(); err != nil {
			return "", &FetchError{URL: url, Attempts: i - 1, Err: err}
		}
		if gate != nil {
			if err := gate.Wait(ctx); err != nil {
				return "", &FetchError{URL: url, Attempts: i - 1, Err: err}
			}
		}

		body, err := attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		logger.Debug("fetch attempt failed", "url", url, "attempt", i, "error", err)

		if i < cfg.Retries {
			if err := sleep(ctx, cfg.RetryDelay*time.Duration(i)); err != nil {
				return "", &FetchError{URL: url, Attempts: i, Err: lastErr}
			}
		}
	}
	return "", &FetchError{URL: url, Attempts: cfg.Retries, Err: lastErr}
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
