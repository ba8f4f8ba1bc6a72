package sink

import (
	"strconv"

	"github.com/kuuhaku1102/beauty/internal/assemble"
)

// SchemaVersion tracks the shared column layout. Bump it when column order
// changes; every sink picks the change up from here.
const SchemaVersion = 1

// Column orders shared by the file, relational and spreadsheet sinks.
var (
	ClinicColumns = []string{
		"clinic_id", "rank", "name", "clinic_url", "source_page_url",
		"rating", "reviews", "snippet", "snippet_author", "access",
		"images", "features", "hours_raw", "prefecture", "city", "station",
		"timestamp_utc", "notes",
	}

	MenuColumns = []string{
		"clinic_id", "clinic_name", "title", "price_jpy", "price_raw",
		"url", "pickup_flag", "category_raw", "menu_image", "timestamp_utc",
	}

	HoursColumns = []string{
		"clinic_id", "clinic_name", "day", "open_time", "close_time",
		"raw", "timestamp_utc",
	}
)

// ClinicRow projects a clinic record onto ClinicColumns.
func ClinicRow(r assemble.ClinicRecord) []string {
	return []string{
		r.ClinicID, fmtIntPtr(r.Rank), r.Name, r.ClinicURL, r.SourcePageURL,
		fmtFloatPtr(r.Rating), fmtIntPtr(r.ReviewCount), r.Snippet, r.SnippetAuthor, r.AccessText,
		r.Images, r.Features, r.HoursRaw, r.Prefecture, r.City, r.Station,
		r.Timestamp, r.Notes,
	}
}

// MenuRow projects a menu record onto MenuColumns.
func MenuRow(r assemble.MenuRecord) []string {
	return []string{
		r.ClinicID, r.ClinicName, r.Title, fmtIntPtr(r.PriceJPY), r.PriceRaw,
		r.URL, strconv.FormatBool(r.PickupFlag), r.CategoryRaw, r.MenuImage, r.Timestamp,
	}
}

// HoursRow projects an hours record onto HoursColumns.
func HoursRow(r assemble.HoursRecord) []string {
	return []string{
		r.ClinicID, r.ClinicName, r.Day, r.OpenTime, r.CloseTime,
		r.Raw, r.Timestamp,
	}
}

// Absent optional values serialize as empty cells.
func fmtIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
