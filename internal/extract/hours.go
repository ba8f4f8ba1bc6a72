package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const selHoursTable = "table.table"

// weekdayTokens are the recognized day labels, in canonical order.
// 祝 (holiday) rows are carried through like any weekday.
var weekdayTokens = []string{"月", "火", "水", "木", "金", "土", "日", "祝"}

// openClosePattern matches the first open/close time pair in a row's raw
// text: two H:MM-or-HH:MM tokens in order, any separator between them.
var openClosePattern = regexp.MustCompile(`(\d{1,2}:\d{2})\D*?(\d{1,2}:\d{2})`)

// Hours extracts the business-hours table within scope as a day-label to
// raw time-text mapping. Rows whose first cell carries no recognized
// weekday token are discarded; this filter applies identically whether the
// scope is a single card or a whole detail page. Absence of a day means
// "not stated", never closed.
func Hours(scope *goquery.Selection) map[string]string {
	hours := make(map[string]string)

	table := scope.Find(selHoursTable).First()
	if table.Length() == 0 {
		table = scope.Find("table").First()
	}
	if table.Length() == 0 {
		return hours
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		day := CleanText(cells.Eq(0).Text())
		if day == "" || !hasWeekdayToken(day) {
			return
		}
		timeText := CleanText(cells.Eq(1).Text())
		hours[day] = timeText
	})

	return hours
}

func hasWeekdayToken(day string) bool {
	for _, tok := range weekdayTokens {
		if strings.Contains(day, tok) {
			return true
		}
	}
	return false
}

// SplitOpenClose finds the first open/close time pair in raw text. Both
// results are empty when no pair matches; the caller keeps the raw text
// either way.
func SplitOpenClose(raw string) (string, string) {
	m := openClosePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// WeekdayOrder returns the ordering key of a day label for serialization:
// recognized tokens in canonical weekday order, everything else after.
func WeekdayOrder(day string) int {
	for i, tok := range weekdayTokens {
		if strings.Contains(day, tok) {
			return i
		}
	}
	return len(weekdayTokens)
}
