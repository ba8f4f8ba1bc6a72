package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const selBreadcrumb = ".breadcrumb li"

// Location suffixes used to classify breadcrumb segments.
var (
	prefectureSuffixes = []string{"都", "道", "府", "県"}
	citySuffixes       = []string{"市", "区", "町", "村"}
	stationSuffixes    = []string{"駅"}
)

// Location holds the breadcrumb-derived place fields.
type Location struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Station    string `json:"station"`
}

// Breadcrumb extracts the breadcrumb path segments in document order.
func Breadcrumb(scope *goquery.Selection) []string {
	var segments []string
	scope.Find(selBreadcrumb).Each(func(_ int, li *goquery.Selection) {
		if text := CleanText(li.Text()); text != "" {
			segments = append(segments, text)
		}
	})
	return segments
}

// ClassifyBreadcrumb derives prefecture, city and station from breadcrumb
// segments. Segments are scanned in order and the first match per category
// wins; once a category is filled it is never overwritten. A segment that
// matches nothing is skipped; unmatched categories stay empty.
func ClassifyBreadcrumb(segments []string) Location {
	var loc Location
	for _, seg := range segments {
		switch {
		case loc.Prefecture == "" && hasSuffix(seg, prefectureSuffixes):
			loc.Prefecture = seg
		case loc.City == "" && hasSuffix(seg, citySuffixes):
			loc.City = seg
		case loc.Station == "" && hasSuffix(seg, stationSuffixes):
			loc.Station = seg
		}
	}
	return loc
}

func hasSuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
