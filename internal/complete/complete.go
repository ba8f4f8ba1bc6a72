// Package complete fills in candidate fields the listing page omitted by
// fetching the clinic's own detail page and re-running the relevant field
// extractors against it. Failures here degrade to the candidate's prior
// (possibly empty) state; they never fail the page.
package complete

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kuuhaku1102/beauty/internal/extract"
	"github.com/kuuhaku1102/beauty/internal/fetcher"
	"github.com/kuuhaku1102/beauty/internal/logger"
	"github.com/kuuhaku1102/beauty/internal/parser"
)

// Engine completes candidates against their detail pages.
type Engine struct {
	fetcher          fetcher.Fetcher
	followMenuImages bool
}

// New creates a completion engine. Detail and menu-image fetches go through
// the given fetcher, which carries the shared politeness gate.
func New(f fetcher.Fetcher, followMenuImages bool) *Engine {
	return &Engine{fetcher: f, followMenuImages: followMenuImages}
}

// Complete fetches the candidate's detail page when its menus or hours are
// empty and merges any non-empty extraction result. The detail page is only
// fetched when it differs from the listing page the candidate came from;
// the listing document has already been mined for these fields.
func (e *Engine) Complete(ctx context.Context, c *parser.Candidate) {
	needMenus := len(c.Menus) == 0
	needHours := len(c.Hours) == 0

	if (needMenus || needHours) && c.ClinicURL != "" && c.ClinicURL != c.SourcePageURL {
		e.completeFromDetail(ctx, c, needMenus, needHours)
	}

	if e.followMenuImages {
		e.completeMenuImages(ctx, c)
	}
}

func (e *Engine) completeFromDetail(ctx context.Context, c *parser.Candidate, needMenus, needHours bool) {
	html, err := e.fetcher.Fetch(ctx, c.ClinicURL)
	if err != nil {
		logger.Warn("detail fetch failed, keeping partial candidate",
			"clinic_url", c.ClinicURL, "error", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("detail parse failed, keeping partial candidate",
			"clinic_url", c.ClinicURL, "error", err)
		return
	}

	if needMenus {
		if menus := extract.Menus(doc.Selection, c.ClinicURL); len(menus) > 0 {
			c.Menus = menus
			logger.Debug("completed menus from detail page", "clinic_url", c.ClinicURL, "count", len(menus))
		}
	}
	if needHours {
		if hours := extract.Hours(doc.Selection); len(hours) > 0 {
			c.Hours = hours
			logger.Debug("completed hours from detail page", "clinic_url", c.ClinicURL, "days", len(hours))
		}
	}
}

// completeMenuImages resolves menu images that the listing did not carry
// inline: og:image on the menu's own detail page wins, then the first image
// on that page, else the field stays empty.
func (e *Engine) completeMenuImages(ctx context.Context, c *parser.Candidate) {
	for i := range c.Menus {
		m := &c.Menus[i]
		if m.MenuImage != "" || m.URL == "" {
			continue
		}

		html, err := e.fetcher.Fetch(ctx, m.URL)
		if err != nil {
			logger.Warn("menu image fetch failed", "menu_url", m.URL, "error", err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			logger.Warn("menu image parse failed", "menu_url", m.URL, "error", err)
			continue
		}

		if img := extract.OGImage(doc.Selection, m.URL); img != "" {
			m.MenuImage = img
			continue
		}
		m.MenuImage = extract.FirstImage(doc.Selection, m.URL)
	}
}
