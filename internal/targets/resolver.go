// Package targets builds the ordered, deduplicated set of listing page URLs
// to process, from an explicit URL list, an explicit ID list, or a numeric
// ID range probed against the target host.
package targets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kuuhaku1102/beauty/internal/config"
	"github.com/kuuhaku1102/beauty/internal/logger"
)

// ErrNoTargets is returned when no input source yields any URL. The caller
// treats this as fatal: a run without targets aborts before any fetch.
var ErrNoTargets = errors.New("no target URLs resolved")

// Prober checks whether a candidate URL exists on the target host. It is a
// short-timeout existence check, distinct from the full fetcher retry policy.
type Prober interface {
	Exists(ctx context.Context, url string) bool
}

// Resolver produces the ordered target URL list.
type Resolver struct {
	cfg    config.Config
	prober Prober
}

// NewResolver creates a resolver. A nil prober falls back to a HEAD-based
// HTTP prober with a short timeout.
func NewResolver(cfg config.Config, prober Prober) *Resolver {
	if prober == nil {
		prober = &httpProber{
			client:    &http.Client{Timeout: 5 * time.Second},
			userAgent: cfg.UserAgent,
		}
	}
	return &Resolver{cfg: cfg, prober: prober}
}

// Resolve returns the deduplicated target URLs in input order, trying the
// three sources in priority order: explicit URLs, explicit IDs, ID range.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	var urls []string

	switch {
	case len(r.cfg.TargetURLs) > 0:
		for _, raw := range r.cfg.TargetURLs {
			urls = append(urls, SplitURLs(raw)...)
		}
		logger.Debug("targets from explicit URL list", "count", len(urls))

	case len(r.cfg.TargetIDs) > 0:
		for _, id := range r.cfg.TargetIDs {
			urls = append(urls, expandTemplate(r.cfg.BaseURLTemplate, id))
		}
		logger.Debug("targets from explicit ID list", "count", len(urls))

	default:
		urls = r.resolveRange(ctx)
		logger.Debug("targets from ID range probe", "count", len(urls))
	}

	urls = dedupe(urls)
	if len(urls) == 0 {
		return nil, ErrNoTargets
	}
	return urls, nil
}

// resolveRange expands the configured ID range against the base template and
// keeps only URLs that pass the existence probe.
func (r *Resolver) resolveRange(ctx context.Context) []string {
	from, to, step := NormalizeRange(r.cfg.IDFrom, r.cfg.IDTo, r.cfg.IDStep)
	if r.cfg.BaseURLTemplate == "" || (from == 0 && to == 0) {
		return nil
	}

	var urls []string
	probed := 0
	for id := from; id <= to; id += step {
		if r.cfg.MaxProbe > 0 && probed >= r.cfg.MaxProbe {
			logger.Warn("probe limit reached", "limit", r.cfg.MaxProbe, "last_id", id)
			break
		}
		if ctx.Err() != nil {
			break
		}
		probed++
		candidate := expandTemplate(r.cfg.BaseURLTemplate, id)
		if r.prober.Exists(ctx, candidate) {
			urls = append(urls, candidate)
		} else {
			logger.Debug("probe miss", "url", candidate)
		}
	}
	return urls
}

// NormalizeRange corrects a descending range with positive step into the
// equivalent ascending range, and forces a usable step.
func NormalizeRange(from, to, step int) (int, int, int) {
	if from > to {
		from, to = to, from
	}
	if step < 0 {
		step = -step
	}
	if step == 0 {
		step = 1
	}
	return from, to, step
}

var urlBoundary = regexp.MustCompile(`https?://`)

// SplitURLs splits a raw target string into individual URLs. Accepted
// separators are whitespace, commas, or nothing at all: URLs concatenated
// directly against each other are split by lookahead on the next
// http(s):// occurrence.
func SplitURLs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
	})

	var urls []string
	for _, field := range fields {
		starts := urlBoundary.FindAllStringIndex(field, -1)
		if len(starts) == 0 {
			continue
		}
		for i, loc := range starts {
			end := len(field)
			if i+1 < len(starts) {
				end = starts[i+1][0]
			}
			if u := strings.TrimSpace(field[loc[0]:end]); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// expandTemplate builds a page URL for a numeric ID.
func expandTemplate(template string, id int) string {
	if strings.Contains(template, "%d") {
		return fmt.Sprintf(template, id)
	}
	return template + strconv.Itoa(id)
}

// dedupe removes duplicates, first occurrence wins.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// httpProber checks URL existence with a HEAD request. Some hosts reject
// HEAD outright; a 403 or 405 answer is retried once as a full GET.
type httpProber struct {
	client    *http.Client
	userAgent string
}

func (p *httpProber) Exists(ctx context.Context, url string) bool {
	status, ok := p.do(ctx, http.MethodHead, url)
	if ok {
		return true
	}
	if status == http.StatusForbidden || status == http.StatusMethodNotAllowed {
		_, ok = p.do(ctx, http.MethodGet, url)
		return ok
	}
	return false
}

func (p *httpProber) do(ctx context.Context, method, url string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, resp.StatusCode >= 200 && resp.StatusCode < 400
}
