// Package assemble derives the cross-cutting fields and flattens clinic
// candidates into the three relational record sets: clinics, menus, hours.
// It performs no deduplication and no sorting beyond preserving input order.
package assemble

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kuuhaku1102/beauty/internal/extract"
	"github.com/kuuhaku1102/beauty/internal/parser"
)

// clinicIDPattern captures the first run of digits following the clinic
// path marker in a clinic URL.
var clinicIDPattern = regexp.MustCompile(`/clinic/(\d+)`)

// ClinicRecord is one finished clinic row.
type ClinicRecord struct {
	ClinicID      string   `json:"clinic_id"`
	Rank          *int     `json:"rank"`
	Name          string   `json:"name"`
	ClinicURL     string   `json:"clinic_url"`
	SourcePageURL string   `json:"source_page_url"`
	Rating        *float64 `json:"rating"`
	ReviewCount   *int     `json:"reviews"`
	Snippet       string   `json:"snippet"`
	SnippetAuthor string   `json:"snippet_author"`
	AccessText    string   `json:"access"`
	Images        string   `json:"images"`
	Features      string   `json:"features"`
	HoursRaw      string   `json:"hours_raw"`
	Prefecture    string   `json:"prefecture"`
	City          string   `json:"city"`
	Station       string   `json:"station"`
	Timestamp     string   `json:"timestamp_utc"`
	Notes         string   `json:"notes"`
}

// MenuRecord is one finished menu row.
type MenuRecord struct {
	ClinicID    string `json:"clinic_id"`
	ClinicName  string `json:"clinic_name"`
	Title       string `json:"title"`
	PriceJPY    *int   `json:"price_jpy"`
	PriceRaw    string `json:"price_raw"`
	URL         string `json:"url"`
	PickupFlag  bool   `json:"pickup_flag"`
	CategoryRaw string `json:"category_raw"`
	MenuImage   string `json:"menu_image"`
	Timestamp   string `json:"timestamp_utc"`
}

// HoursRecord is one finished business-hours row. Raw always preserves the
// unparsed original text for audit, even when no time pair matched.
type HoursRecord struct {
	ClinicID   string `json:"clinic_id"`
	ClinicName string `json:"clinic_name"`
	Day        string `json:"day"`
	OpenTime   string `json:"open_time"`
	CloseTime  string `json:"close_time"`
	Raw        string `json:"raw"`
	Timestamp  string `json:"timestamp_utc"`
}

// ResultSet holds the three aligned record sets of one run.
type ResultSet struct {
	Clinics []ClinicRecord
	Menus   []MenuRecord
	Hours   []HoursRecord
}

// Assemble flattens candidates into the three record sets, in input order.
func Assemble(candidates []parser.Candidate, timestamp string) ResultSet {
	rs := ResultSet{
		Clinics: make([]ClinicRecord, 0, len(candidates)),
	}

	for _, c := range candidates {
		clinicID := ExtractClinicID(c.ClinicURL)

		rs.Clinics = append(rs.Clinics, ClinicRecord{
			ClinicID:      clinicID,
			Rank:          c.Rank,
			Name:          c.Name,
			ClinicURL:     c.ClinicURL,
			SourcePageURL: c.SourcePageURL,
			Rating:        c.Rating,
			ReviewCount:   c.ReviewCount,
			Snippet:       c.Snippet,
			SnippetAuthor: c.SnippetAuthor,
			AccessText:    c.AccessText,
			Images:        JoinList(c.Images),
			Features:      JoinList(c.Features),
			HoursRaw:      HoursBlob(c.Hours),
			Prefecture:    c.Location.Prefecture,
			City:          c.Location.City,
			Station:       c.Location.Station,
			Timestamp:     timestamp,
			Notes:         Notes(c),
		})

		for _, m := range c.Menus {
			rs.Menus = append(rs.Menus, MenuRecord{
				ClinicID:    clinicID,
				ClinicName:  c.Name,
				Title:       m.Title,
				PriceJPY:    m.PriceJPY,
				PriceRaw:    m.PriceRaw,
				URL:         m.URL,
				PickupFlag:  m.PickupFlag,
				CategoryRaw: m.CategoryRaw,
				MenuImage:   m.MenuImage,
				Timestamp:   timestamp,
			})
		}

		for _, day := range orderedDays(c.Hours) {
			raw := c.Hours[day]
			open, clos := extract.SplitOpenClose(raw)
			rs.Hours = append(rs.Hours, HoursRecord{
				ClinicID:   clinicID,
				ClinicName: c.Name,
				Day:        day,
				OpenTime:   open,
				CloseTime:  clos,
				Raw:        raw,
				Timestamp:  timestamp,
			})
		}
	}

	return rs
}

// ExtractClinicID returns the numeric path segment identifying the clinic,
// or an empty string when the URL does not match the expected path shape.
func ExtractClinicID(clinicURL string) string {
	m := clinicIDPattern.FindStringSubmatch(clinicURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Notes builds the human-readable status summary: each applicable fact as a
// key=value fragment, in fixed order, joined by ", ". Absent facts are
// omitted entirely.
func Notes(c parser.Candidate) string {
	var notes []string
	if c.Rating != nil {
		notes = append(notes, "rating="+strconv.FormatFloat(*c.Rating, 'f', -1, 64))
	}
	if c.ReviewCount != nil {
		notes = append(notes, fmt.Sprintf("reviews=%d", *c.ReviewCount))
	}
	if len(c.Menus) == 0 {
		notes = append(notes, "menus=0")
	}
	if len(c.Hours) == 0 {
		notes = append(notes, "hours=0")
	}
	return strings.Join(notes, ", ")
}

// JoinList serializes a list as a comma-joined string, filtering empties.
func JoinList(items []string) string {
	kept := items[:0:0]
	for _, it := range items {
		if it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, ",")
}

// HoursBlob serializes an hours map as a key-ordered text blob.
func HoursBlob(hours map[string]string) string {
	var parts []string
	for _, day := range orderedDays(hours) {
		parts = append(parts, day+"="+hours[day])
	}
	return strings.Join(parts, "; ")
}

// orderedDays sorts day labels in canonical weekday order, unknown labels
// last in lexical order.
func orderedDays(hours map[string]string) []string {
	days := make([]string, 0, len(hours))
	for day := range hours {
		days = append(days, day)
	}
	sort.SliceStable(days, func(i, j int) bool {
		oi, oj := extract.WeekdayOrder(days[i]), extract.WeekdayOrder(days[j])
		if oi != oj {
			return oi < oj
		}
		return days[i] < days[j]
	})
	return days
}

// NowUTC returns the snapshot timestamp: RFC3339 at second precision with a
// Z suffix.
func NowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
