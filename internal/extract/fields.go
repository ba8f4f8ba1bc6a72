package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Card element selectors. The mappings are specific to one site's markup
// conventions; where historical variants of the markup disagree, one
// canonical selector order is fixed here.
const (
	selRank          = ".number_ranked"
	selTitle         = "a.card__title"
	selRating        = ".rating-number"
	selReviewCount   = "a.report-count"
	selSnippet       = ".card__report-snippet-content"
	selSnippetAuthor = ".card__report-snippet-name"
	selImages        = ".card__image-list img.card__image"
	selFeatures      = ".card__feature-list .card__feature"
	// Access text appears under one of two selectors depending on page
	// generation; the dedicated text node wins over the container.
	selAccessText     = ".card__access-text"
	selAccessFallback = ".card__access .access-text"
)

// Rank extracts the listing position. Absent when no digits are found.
func Rank(card *goquery.Selection) *int {
	return FirstInt(card.Find(selRank).First().Text())
}

// Name extracts the clinic name, empty when the markup is absent.
func Name(card *goquery.Selection) string {
	return CleanText(card.Find(selTitle).First().Text())
}

// ClinicURL extracts the clinic's own page URL resolved against the listing
// page. Empty when no anchor could be resolved.
func ClinicURL(card *goquery.Selection, base string) string {
	href, ok := card.Find(selTitle).First().Attr("href")
	if !ok {
		return ""
	}
	return ResolveURL(base, href)
}

// Rating extracts the numeric review score. Absent on parse failure.
func Rating(card *goquery.Selection) *float64 {
	el := card.Find(selRating).First()
	if el.Length() == 0 {
		return nil
	}
	return ParseFloat(el.Text())
}

// ReviewCount extracts the review count. Absent when no digits are found.
func ReviewCount(card *goquery.Selection) *int {
	return FirstInt(card.Find(selReviewCount).First().Text())
}

// Snippet extracts the review snippet text.
func Snippet(card *goquery.Selection) string {
	return CleanText(card.Find(selSnippet).First().Text())
}

// SnippetAuthor extracts the snippet attribution, stripping the leading dash
// the markup uses as a separator.
func SnippetAuthor(card *goquery.Selection) string {
	author := CleanText(card.Find(selSnippetAuthor).First().Text())
	return strings.TrimSpace(strings.TrimLeft(author, "-"))
}

// AccessText extracts the station-access description, preferring the
// dedicated text node and falling back to the container variant.
func AccessText(card *goquery.Selection) string {
	if text := CleanText(card.Find(selAccessText).First().Text()); text != "" {
		return text
	}
	return CleanText(card.Find(selAccessFallback).First().Text())
}

// Images extracts the card's image URLs in document order. Duplicates are
// kept; empty entries are dropped.
func Images(card *goquery.Selection, base string) []string {
	var images []string
	card.Find(selImages).Each(func(_ int, img *goquery.Selection) {
		if u := ImageURL(img, base); u != "" {
			images = append(images, u)
		}
	})
	return images
}

// Features extracts the card's short feature tags in document order.
func Features(card *goquery.Selection) []string {
	var features []string
	card.Find(selFeatures).Each(func(_ int, li *goquery.Selection) {
		if text := CleanText(li.Text()); text != "" {
			features = append(features, text)
		}
	})
	return features
}
