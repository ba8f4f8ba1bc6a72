// Package parser turns one listing page into clinic candidate records by
// composing the field extractors over each card element.
package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kuuhaku1102/beauty/internal/extract"
	"github.com/kuuhaku1102/beauty/internal/logger"
)

const selCard = ".card.clinic-list__card"

// Candidate is an in-flight clinic record before identifier derivation and
// note assembly. Text fields are empty strings (never null) when absent so
// downstream types stay uniform.
type Candidate struct {
	Rank          *int               `json:"rank"`
	Name          string             `json:"name"`
	ClinicURL     string             `json:"clinic_url"`
	Rating        *float64           `json:"rating"`
	ReviewCount   *int               `json:"reviews"`
	Snippet       string             `json:"snippet"`
	SnippetAuthor string             `json:"snippet_author"`
	AccessText    string             `json:"access"`
	Images        []string           `json:"images"`
	Features      []string           `json:"features"`
	Hours         map[string]string  `json:"hours"`
	Menus         []extract.MenuItem `json:"menus"`
	Breadcrumb    []string           `json:"breadcrumb"`
	Location      extract.Location   `json:"location"`
	SourcePageURL string             `json:"source_page_url"`
}

// ParsePage selects all clinic cards on a listing page and builds one
// candidate per card. A page with zero cards is treated as representing
// exactly one clinic (fallback mode), named by the page's primary heading
// or, failing that, its title; every successfully fetched page therefore
// yields at least one candidate.
func ParsePage(html, pageURL string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}

	pageBreadcrumb := extract.Breadcrumb(doc.Selection)

	var candidates []Candidate
	doc.Find(selCard).Each(func(_ int, card *goquery.Selection) {
		candidates = append(candidates, parseCard(card, pageURL, pageBreadcrumb))
	})

	if len(candidates) == 0 {
		logger.Debug("no cards found, falling back to whole-page candidate", "url", pageURL)
		candidates = append(candidates, fallbackCandidate(doc, pageURL, pageBreadcrumb))
	}

	return candidates, nil
}

// parseCard builds one candidate from a card element. Card-scoped
// breadcrumbs win over the page-level path when present.
func parseCard(card *goquery.Selection, pageURL string, pageBreadcrumb []string) Candidate {
	breadcrumb := extract.Breadcrumb(card)
	if len(breadcrumb) == 0 {
		breadcrumb = pageBreadcrumb
	}

	clinicURL := extract.ClinicURL(card, pageURL)
	if clinicURL == "" {
		// No anchor could be resolved; the listing page itself stands in.
		clinicURL = pageURL
	}

	c := Candidate{
		Rank:          extract.Rank(card),
		Name:          extract.Name(card),
		ClinicURL:     clinicURL,
		Rating:        extract.Rating(card),
		ReviewCount:   extract.ReviewCount(card),
		Snippet:       extract.Snippet(card),
		SnippetAuthor: extract.SnippetAuthor(card),
		AccessText:    extract.AccessText(card),
		Images:        extract.Images(card, pageURL),
		Features:      extract.Features(card),
		Hours:         extract.Hours(card),
		Menus:         extract.Menus(card, pageURL),
		Breadcrumb:    breadcrumb,
		Location:      extract.ClassifyBreadcrumb(breadcrumb),
		SourcePageURL: pageURL,
	}
	normalize(&c)
	return c
}

// fallbackCandidate represents a whole page as a single clinic.
func fallbackCandidate(doc *goquery.Document, pageURL string, breadcrumb []string) Candidate {
	name := extract.CleanText(doc.Find("h1").First().Text())
	if name == "" {
		name = extract.CleanText(doc.Find("title").First().Text())
	}

	c := Candidate{
		Name:          name,
		ClinicURL:     pageURL,
		Breadcrumb:    breadcrumb,
		Location:      extract.ClassifyBreadcrumb(breadcrumb),
		SourcePageURL: pageURL,
	}
	normalize(&c)
	return c
}

// normalize replaces nil collections with empty ones so serialized
// candidates carry [] and {} instead of null.
func normalize(c *Candidate) {
	if c.Images == nil {
		c.Images = []string{}
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	if c.Hours == nil {
		c.Hours = map[string]string{}
	}
	if c.Menus == nil {
		c.Menus = []extract.MenuItem{}
	}
	if c.Breadcrumb == nil {
		c.Breadcrumb = []string{}
	}
}
