package complete

import (
	"context"
	"errors"
	"testing"

	"github.com/kuuhaku1102/beauty/internal/extract"
	"github.com/kuuhaku1102/beauty/internal/parser"
)

// stubFetcher serves canned HTML per URL and records every fetch.
type stubFetcher struct {
	pages   map[string]string
	fetched []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	s.fetched = append(s.fetched, url)
	html, ok := s.pages[url]
	if !ok {
		return "", errors.New("not found")
	}
	return html, nil
}

func (s *stubFetcher) Close() error { return nil }

func (s *stubFetcher) Type() string { return "stub" }

const detailHTML = `
<html><body>
<table class="table">
  <tr><td>月</td><td>11:00〜20:00</td></tr>
</table>
<ul><li><a class="small-list__item" href="/menu/7/">
  <span class="small-list__title">detail menu</span>
  <span class="small-list__price">¥5,000</span>
</a></li></ul>
</body></html>`

func candidateMissingAll() parser.Candidate {
	return parser.Candidate{
		Name:          "c",
		ClinicURL:     "https://beauty.example.com/clinic/1/",
		SourcePageURL: "https://beauty.example.com/ranking/",
		Hours:         map[string]string{},
		Menus:         []extract.MenuItem{},
	}
}

func TestComplete_FillsMenusAndHours(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://beauty.example.com/clinic/1/": detailHTML,
	}}
	e := New(f, false)

	c := candidateMissingAll()
	e.Complete(context.Background(), &c)

	if c.Hours["月"] != "11:00〜20:00" {
		t.Errorf("hours not completed: %v", c.Hours)
	}
	if len(c.Menus) != 1 || c.Menus[0].Title != "detail menu" {
		t.Errorf("menus not completed: %v", c.Menus)
	}
	if len(f.fetched) != 1 {
		t.Errorf("expected exactly 1 detail fetch, got %v", f.fetched)
	}
}

func TestComplete_SkipsWhenNothingMissing(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}
	e := New(f, false)

	c := candidateMissingAll()
	c.Hours = map[string]string{"月": "10:00〜19:00"}
	c.Menus = []extract.MenuItem{{Title: "existing"}}
	e.Complete(context.Background(), &c)

	if len(f.fetched) != 0 {
		t.Errorf("complete candidate must not trigger fetches, got %v", f.fetched)
	}
}

func TestComplete_SkipsWhenURLEqualsSourcePage(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}
	e := New(f, false)

	c := candidateMissingAll()
	c.ClinicURL = c.SourcePageURL
	e.Complete(context.Background(), &c)

	if len(f.fetched) != 0 {
		t.Errorf("same-URL candidate must reuse listing content, got %v", f.fetched)
	}
}

func TestComplete_FetchFailureKeepsPartialCandidate(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}
	e := New(f, false)

	c := candidateMissingAll()
	e.Complete(context.Background(), &c)

	if len(c.Hours) != 0 || len(c.Menus) != 0 {
		t.Error("failed completion must leave fields in their prior empty state")
	}
}

func TestComplete_MenuImages(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://beauty.example.com/menu/1/": `<html><head><meta property="og:image" content="/og.jpg"></head><body><img src="/first.jpg"></body></html>`,
		"https://beauty.example.com/menu/2/": `<html><body><img src="/first.jpg"></body></html>`,
		"https://beauty.example.com/menu/3/": `<html><body><p>no images</p></body></html>`,
	}}
	e := New(f, true)

	c := candidateMissingAll()
	c.Hours = map[string]string{"月": "x"}
	c.Menus = []extract.MenuItem{
		{Title: "og", URL: "https://beauty.example.com/menu/1/"},
		{Title: "first", URL: "https://beauty.example.com/menu/2/"},
		{Title: "none", URL: "https://beauty.example.com/menu/3/"},
		{Title: "inline", URL: "https://beauty.example.com/menu/4/", MenuImage: "https://cdn.example.com/inline.jpg"},
	}
	e.Complete(context.Background(), &c)

	if c.Menus[0].MenuImage != "https://beauty.example.com/og.jpg" {
		t.Errorf("og:image should win: %q", c.Menus[0].MenuImage)
	}
	if c.Menus[1].MenuImage != "https://beauty.example.com/first.jpg" {
		t.Errorf("first image fallback: %q", c.Menus[1].MenuImage)
	}
	if c.Menus[2].MenuImage != "" {
		t.Errorf("imageless page should leave field empty: %q", c.Menus[2].MenuImage)
	}
	if c.Menus[3].MenuImage != "https://cdn.example.com/inline.jpg" {
		t.Error("inline image must not be overwritten")
	}
	if len(f.fetched) != 3 {
		t.Errorf("expected 3 menu fetches, got %v", f.fetched)
	}
}

func TestComplete_MenuImagesDisabled_NoSecondaryFetch(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}
	e := New(f, false)

	c := candidateMissingAll()
	c.Hours = map[string]string{"月": "x"}
	c.Menus = []extract.MenuItem{{Title: "m", URL: "https://beauty.example.com/menu/1/"}}
	e.Complete(context.Background(), &c)

	if len(f.fetched) != 0 {
		t.Errorf("menu-image completion disabled: no secondary fetch expected, got %v", f.fetched)
	}
	if c.Menus[0].MenuImage != "" {
		t.Errorf("menu image should stay empty, got %q", c.Menus[0].MenuImage)
	}
}
