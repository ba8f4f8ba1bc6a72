package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ResolveURL resolves href against the enclosing page's URL. Scheme-relative
// references (//host/path) are prefixed with https:.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return ref.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// ImageURL extracts an image URL from an img element, preferring a direct
// src and falling back to the first URL token of a srcset attribute.
func ImageURL(img *goquery.Selection, base string) string {
	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return ResolveURL(base, src)
	}
	if srcset, ok := img.Attr("srcset"); ok {
		// srcset entries are "url descriptor" pairs separated by commas.
		first := strings.Split(srcset, ",")[0]
		fields := strings.Fields(first)
		if len(fields) > 0 {
			return ResolveURL(base, fields[0])
		}
	}
	return ""
}
