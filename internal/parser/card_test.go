package parser

import (
	"bytes"
	"encoding/json"
	"testing"
)

const listingHTML = `
<html>
<head><title>東京のクリニック一覧</title></head>
<body>
<ol class="breadcrumb">
  <li>ホーム</li>
  <li>東京都</li>
  <li>新宿区</li>
</ol>
<div class="card clinic-list__card">
  <span class="number_ranked">1</span>
  <a class="card__title" href="/clinic/1102/">サンプルクリニック</a>
  <span class="rating-number">4.5</span>
  <a class="report-count">120件</a>
  <table class="table">
    <tbody><tr><td>月</td><td>10:00〜19:00</td></tr></tbody>
  </table>
  <ul><li><a class="small-list__item" href="/menu/1/">
    <span class="small-list__title">施術A</span>
    <span class="small-list__price">¥3,000</span>
  </a></li></ul>
</div>
<div class="card clinic-list__card">
  <a class="card__title" href="/clinic/2205/">第二クリニック</a>
</div>
</body>
</html>`

func TestParsePage_Cards(t *testing.T) {
	candidates, err := ParsePage(listingHTML, "https://beauty.example.com/ranking/")
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Name != "サンプルクリニック" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.ClinicURL != "https://beauty.example.com/clinic/1102/" {
		t.Errorf("ClinicURL = %q", first.ClinicURL)
	}
	if first.Rank == nil || *first.Rank != 1 {
		t.Errorf("Rank = %v", first.Rank)
	}
	if first.Rating == nil || *first.Rating != 4.5 {
		t.Errorf("Rating = %v", first.Rating)
	}
	if first.ReviewCount == nil || *first.ReviewCount != 120 {
		t.Errorf("ReviewCount = %v", first.ReviewCount)
	}
	if first.Hours["月"] != "10:00〜19:00" {
		t.Errorf("Hours = %v", first.Hours)
	}
	if len(first.Menus) != 1 || first.Menus[0].Title != "施術A" {
		t.Errorf("Menus = %v", first.Menus)
	}
	if first.Location.Prefecture != "東京都" || first.Location.City != "新宿区" {
		t.Errorf("Location = %+v", first.Location)
	}
	if first.SourcePageURL != "https://beauty.example.com/ranking/" {
		t.Errorf("SourcePageURL = %q", first.SourcePageURL)
	}

	second := candidates[1]
	if second.Rank != nil || second.Rating != nil {
		t.Error("sparse card should have absent rank and rating")
	}
	if second.Snippet != "" || second.AccessText != "" {
		t.Error("sparse card text fields should be empty strings")
	}
	if second.Images == nil || second.Features == nil || second.Menus == nil || second.Hours == nil {
		t.Error("collections must be initialized, never nil")
	}
}

func TestParsePage_FallbackToHeading(t *testing.T) {
	html := `<html><head><title>ページタイトル</title></head>
<body><h1>単独クリニック</h1></body></html>`

	candidates, err := ParsePage(html, "https://beauty.example.com/clinic/9/")
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected exactly 1 fallback candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Name != "単独クリニック" {
		t.Errorf("Name = %q, want h1 text", c.Name)
	}
	if c.ClinicURL != "https://beauty.example.com/clinic/9/" {
		t.Errorf("ClinicURL = %q, want the page URL", c.ClinicURL)
	}
	if len(c.Menus) != 0 || len(c.Hours) != 0 {
		t.Error("fallback candidate should have empty menus and hours")
	}
}

func TestParsePage_FallbackToTitle(t *testing.T) {
	html := `<html><head><title>タイトルのみ</title></head><body><p>本文</p></body></html>`

	candidates, err := ParsePage(html, "https://beauty.example.com/clinic/9/")
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	if candidates[0].Name != "タイトルのみ" {
		t.Errorf("Name = %q, want title text", candidates[0].Name)
	}
}

func TestParsePage_Idempotent(t *testing.T) {
	pageURL := "https://beauty.example.com/ranking/"

	first, err := ParsePage(listingHTML, pageURL)
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	second, err := ParsePage(listingHTML, pageURL)
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("re-running the parser on the same document must yield byte-identical candidates")
	}
}
