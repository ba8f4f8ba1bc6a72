package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selMenuItems    = "ul li a.small-list__item"
	selMenuTitle    = ".small-list__title"
	selMenuPrice    = ".small-list__price"
	selMenuImage    = "img"
	selMenuPickup   = ".pickup-label_active"
	selMenuCategory = ".treatment-category"
)

// yenPrice matches a currency-prefixed numeric token like ¥3,000.
var yenPrice = regexp.MustCompile(`¥\s*([\d,]+)`)

// MenuItem is one treatment menu entry extracted from a card or detail page.
type MenuItem struct {
	Title       string `json:"title"`
	PriceJPY    *int   `json:"price_jpy"`
	PriceRaw    string `json:"price_raw"`
	URL         string `json:"url"`
	PickupFlag  bool   `json:"pickup_flag"`
	CategoryRaw string `json:"category_raw"`
	MenuImage   string `json:"menu_image"`
}

// Menus extracts the treatment menu list within scope, in document order.
// MenuImage is filled from the inline listing image only; detail-page
// fallbacks are the completion engine's job.
func Menus(scope *goquery.Selection, base string) []MenuItem {
	var menus []MenuItem
	scope.Find(selMenuItems).Each(func(_ int, a *goquery.Selection) {
		priceRaw := CleanText(a.Find(selMenuPrice).First().Text())
		href, _ := a.Attr("href")

		item := MenuItem{
			Title:       CleanText(a.Find(selMenuTitle).First().Text()),
			PriceJPY:    ParseYen(priceRaw),
			PriceRaw:    priceRaw,
			URL:         ResolveURL(base, href),
			PickupFlag:  a.Find(selMenuPickup).Length() > 0,
			CategoryRaw: CleanText(a.Find(selMenuCategory).First().Text()),
			MenuImage:   ImageURL(a.Find(selMenuImage).First(), base),
		}
		menus = append(menus, item)
	})
	return menus
}

// ParseYen parses a ¥-prefixed price token. Absent when no token matches.
func ParseYen(priceText string) *int {
	m := yenPrice.FindStringSubmatch(priceText)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &n
}

// OGImage extracts the og:image meta tag content from a document.
func OGImage(doc *goquery.Selection, base string) string {
	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok {
		return ""
	}
	return ResolveURL(base, content)
}

// FirstImage extracts the first image on a document.
func FirstImage(doc *goquery.Selection, base string) string {
	return ImageURL(doc.Find("img").First(), base)
}
