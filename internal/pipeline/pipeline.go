// Package pipeline orchestrates the per-page processing: fetch, parse,
// complete, assemble. Pages are processed by a bounded worker pool; every
// outbound request passes through the fetcher's shared politeness gate, and
// results are accumulated per page and merged in input order.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kuuhaku1102/beauty/internal/assemble"
	"github.com/kuuhaku1102/beauty/internal/complete"
	"github.com/kuuhaku1102/beauty/internal/config"
	"github.com/kuuhaku1102/beauty/internal/fetcher"
	"github.com/kuuhaku1102/beauty/internal/logger"
	"github.com/kuuhaku1102/beauty/internal/parser"
	"github.com/kuuhaku1102/beauty/internal/sink"
)

// pageResult is the outcome of one page unit. A page that fails at fetch
// contributes no candidates; a fetched page always yields at least one.
type pageResult struct {
	url        string
	candidates []parser.Candidate
	err        error
}

// Pipeline processes listing pages into a snapshot.
type Pipeline struct {
	cfg       config.Config
	fetcher   fetcher.Fetcher
	completer *complete.Engine
}

// New creates a pipeline over the given fetcher.
func New(cfg config.Config, f fetcher.Fetcher) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		fetcher:   f,
		completer: complete.New(f, cfg.FollowMenuImages),
	}
}

// Run processes all pages and assembles the three record sets. A fetch
// failure excludes that page from the outputs and the run continues;
// cancellation aborts pending page fetches while letting in-flight parsing
// finish. The returned snapshot preserves page input order.
func (p *Pipeline) Run(ctx context.Context, pages []string) *sink.Snapshot {
	results := make([]pageResult, len(pages))

	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, pageURL := range pages {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int, url string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = p.processPage(ctx, url)

			// Politeness pause after each page unit, on top of the
			// per-request gate.
			if p.cfg.PageDelay > 0 && ctx.Err() == nil {
				t := time.NewTimer(p.cfg.PageDelay)
				select {
				case <-ctx.Done():
					t.Stop()
				case <-t.C:
				}
			}
		}(i, pageURL)
	}
	wg.Wait()

	timestamp := assemble.NowUTC()

	var cards []parser.Candidate
	fetched := 0
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			logger.Error("page skipped", "url", r.url, "error", r.err)
			continue
		}
		fetched++
		cards = append(cards, r.candidates...)
	}

	rs := assemble.Assemble(cards, timestamp)
	logger.Info("run assembled",
		"pages_ok", fetched, "pages_failed", failed,
		"clinics", len(rs.Clinics), "menus", len(rs.Menus), "hours", len(rs.Hours))

	return &sink.Snapshot{
		Clinics:   rs.Clinics,
		Menus:     rs.Menus,
		Hours:     rs.Hours,
		Cards:     cards,
		Targets:   pages,
		Timestamp: timestamp,
	}
}

// processPage moves one page through Fetched, Parsed and Completed.
func (p *Pipeline) processPage(ctx context.Context, pageURL string) pageResult {
	logger.Info("processing page", "url", pageURL)

	html, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return pageResult{url: pageURL, err: err}
	}

	candidates, err := parser.ParsePage(html, pageURL)
	if err != nil {
		return pageResult{url: pageURL, err: err}
	}
	logger.Debug("page parsed", "url", pageURL, "candidates", len(candidates))

	for i := range candidates {
		p.completer.Complete(ctx, &candidates[i])
	}

	return pageResult{url: pageURL, candidates: candidates}
}
