package fetcher

import (
	"context"
	"fmt"

	"github.com/gocolly/colly/v2"

	"github.com/kuuhaku1102/beauty/internal/logger"
)

// StaticFetcher uses Colly for plain HTTP fetching.
type StaticFetcher struct {
	config Config
	gate   *Gate
}

// NewStatic creates a new static fetcher. All requests pass through gate
// when it is non-nil.
func NewStatic(cfg Config, gate *Gate) *StaticFetcher {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 1 {
		cfg.Retries = def.Retries
	}
	return &StaticFetcher{config: cfg, gate: gate}
}

// Fetch retrieves page content, retrying on transport or HTTP errors.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return fetchWithRetry(ctx, f.gate, f.config, url, f.fetchOnce)
}

func (f *StaticFetcher) fetchOnce(_ context.Context, targetURL string) (string, error) {
	// A fresh collector per request keeps requests independent and allows
	// revisiting the same URL across retries.
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
	)
	c.SetRequestTimeout(f.config.Timeout)

	var body string
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		logger.Debug("fetch response", "url", targetURL, "status", r.StatusCode, "body_size", len(r.Body))
	})

	// Colly reports non-2xx statuses here as errors.
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("http status %d: %w", status, err)
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("visit failed: %w", err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
