package assemble

import (
	"testing"

	"github.com/kuuhaku1102/beauty/internal/extract"
	"github.com/kuuhaku1102/beauty/internal/parser"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestExtractClinicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://beauty.example.com/clinic/1102/", "1102"},
		{"https://beauty.example.com/clinic/42", "42"},
		{"https://beauty.example.com/clinic/1102/menu/3/", "1102"},
		{"https://beauty.example.com/ranking/tokyo/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractClinicID(tt.url); got != tt.want {
			t.Errorf("ExtractClinicID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNotes(t *testing.T) {
	tests := []struct {
		name string
		c    parser.Candidate
		want string
	}{
		{
			name: "rating and reviews with empty hours",
			c: parser.Candidate{
				Rating:      f64(4.5),
				ReviewCount: i(120),
				Menus:       []extract.MenuItem{{Title: "a"}},
			},
			want: "rating=4.5, reviews=120, hours=0",
		},
		{
			name: "everything absent",
			c:    parser.Candidate{},
			want: "menus=0, hours=0",
		},
		{
			name: "complete candidate",
			c: parser.Candidate{
				Rating:      f64(3),
				ReviewCount: i(7),
				Menus:       []extract.MenuItem{{Title: "a"}},
				Hours:       map[string]string{"月": "10:00〜19:00"},
			},
			want: "rating=3, reviews=7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Notes(tt.c); got != tt.want {
				t.Errorf("Notes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble_HoursRoundTrip(t *testing.T) {
	c := parser.Candidate{
		Name:      "c",
		ClinicURL: "https://beauty.example.com/clinic/5/",
		Hours:     map[string]string{"月": "10:00〜19:00"},
	}

	rs := Assemble([]parser.Candidate{c}, "2026-08-26T00:00:00Z")
	if len(rs.Hours) != 1 {
		t.Fatalf("expected exactly 1 hours row, got %d", len(rs.Hours))
	}

	row := rs.Hours[0]
	if row.Day != "月" {
		t.Errorf("Day = %q", row.Day)
	}
	if row.OpenTime != "10:00" || row.CloseTime != "19:00" {
		t.Errorf("times = (%q, %q)", row.OpenTime, row.CloseTime)
	}
	if row.Raw != "10:00〜19:00" {
		t.Errorf("Raw = %q", row.Raw)
	}
	if row.ClinicID != "5" {
		t.Errorf("ClinicID = %q", row.ClinicID)
	}
}

func TestAssemble_HoursUnparseableKeepsRaw(t *testing.T) {
	c := parser.Candidate{
		Hours: map[string]string{"日": "休診"},
	}

	rs := Assemble([]parser.Candidate{c}, "ts")
	row := rs.Hours[0]
	if row.OpenTime != "" || row.CloseTime != "" {
		t.Errorf("unparseable times should be empty, got (%q, %q)", row.OpenTime, row.CloseTime)
	}
	if row.Raw != "休診" {
		t.Errorf("Raw = %q, must preserve original text", row.Raw)
	}
}

func TestAssemble_RecordAlignment(t *testing.T) {
	c := parser.Candidate{
		Name:          "サンプルクリニック",
		ClinicURL:     "https://beauty.example.com/clinic/1102/",
		SourcePageURL: "https://beauty.example.com/ranking/",
		Rating:        f64(4.5),
		ReviewCount:   i(120),
		Images:        []string{"https://cdn.example.com/a.jpg", "", "https://cdn.example.com/b.jpg"},
		Features:      []string{"駅近"},
		Hours: map[string]string{
			"火": "10:00〜18:00",
			"月": "10:00〜19:00",
		},
		Menus: []extract.MenuItem{
			{Title: "施術A", PriceJPY: i(3000), PriceRaw: "¥3,000"},
		},
		Location: extract.Location{Prefecture: "東京都", City: "新宿区"},
	}

	ts := "2026-08-26T00:00:00Z"
	rs := Assemble([]parser.Candidate{c}, ts)

	if len(rs.Clinics) != 1 || len(rs.Menus) != 1 || len(rs.Hours) != 2 {
		t.Fatalf("record counts = %d/%d/%d", len(rs.Clinics), len(rs.Menus), len(rs.Hours))
	}

	clinic := rs.Clinics[0]
	if clinic.ClinicID != "1102" {
		t.Errorf("ClinicID = %q", clinic.ClinicID)
	}
	if clinic.SourcePageURL != "https://beauty.example.com/ranking/" {
		t.Errorf("SourcePageURL = %q", clinic.SourcePageURL)
	}
	if clinic.Images != "https://cdn.example.com/a.jpg,https://cdn.example.com/b.jpg" {
		t.Errorf("Images = %q, empties must be filtered", clinic.Images)
	}
	if clinic.HoursRaw != "月=10:00〜19:00; 火=10:00〜18:00" {
		t.Errorf("HoursRaw = %q, must be weekday-ordered", clinic.HoursRaw)
	}
	if clinic.Notes != "rating=4.5, reviews=120" {
		t.Errorf("Notes = %q", clinic.Notes)
	}
	if clinic.Timestamp != ts {
		t.Errorf("Timestamp = %q", clinic.Timestamp)
	}

	menu := rs.Menus[0]
	if menu.ClinicID != "1102" || menu.ClinicName != "サンプルクリニック" {
		t.Errorf("menu alignment = %q/%q", menu.ClinicID, menu.ClinicName)
	}

	// Hours rows follow canonical weekday order.
	if rs.Hours[0].Day != "月" || rs.Hours[1].Day != "火" {
		t.Errorf("hours order = %q, %q", rs.Hours[0].Day, rs.Hours[1].Day)
	}
}

func TestAssemble_PreservesInputOrder(t *testing.T) {
	candidates := []parser.Candidate{
		{Name: "b", ClinicURL: "https://beauty.example.com/clinic/2/"},
		{Name: "a", ClinicURL: "https://beauty.example.com/clinic/1/"},
	}

	rs := Assemble(candidates, "ts")
	if rs.Clinics[0].Name != "b" || rs.Clinics[1].Name != "a" {
		t.Error("assembler must not reorder candidates")
	}
}

func TestJoinList(t *testing.T) {
	if got := JoinList([]string{"a", "", "b"}); got != "a,b" {
		t.Errorf("JoinList = %q", got)
	}
	if got := JoinList(nil); got != "" {
		t.Errorf("JoinList(nil) = %q", got)
	}
}
