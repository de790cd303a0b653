package services

import (
	"context"
	"testing"
	"time"

	"rustore-scout/models"
	"rustore-scout/utils"
)

func newTestLogger() *utils.Logger { return utils.NewSilentLogger() }

func TestCleanerParseRating(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want float64
	}{
		{"4.5", 4.5},
		{"4,7", 4.7},
		{"Rated 4.2 stars out of five stars", 4.2},
		{"5.0", 5.0},
		{"", 0},
		{"New", 0},
		{"6.0", 0},
	}

	for _, tt := range tests {
		got := c.parseRating(tt.raw)
		if got != tt.want {
			t.Errorf("parseRating(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseInstallsText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"10M+", "10M+"},
		{"1,000,000+ downloads", "1,000,000+"},
		{"500 K+", "500K+"},
		{"", "N/A"},
		{"N/A", "N/A"},
		{"Contains ads", "N/A"},
	}
	for _, tt := range tests {
		if got := parseInstallsText(tt.raw); got != tt.want {
			t.Errorf("parseInstallsText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseRatingText(t *testing.T) {
	if r := ParseRatingText("4.8"); r == nil || *r != 4.8 {
		t.Errorf("ParseRatingText(4.8) = %v", r)
	}
	for _, raw := range []string{"", "Нет оценок", "0", "6"} {
		if r := ParseRatingText(raw); r != nil {
			t.Errorf("ParseRatingText(%q) = %v; want nil", raw, *r)
		}
	}
}

func TestCleanerDropsEmptyURLAndTitle(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawSourceApp{
		{Title: "No URL", URL: "", Platform: "googleplay", ScrapedAt: time.Now()},
		{Title: "N/A", URL: "https://play.google.com/store/apps/details?id=a", Platform: "googleplay"},
		{Title: "Has URL", URL: "https://play.google.com/store/apps/details?id=b", Platform: "googleplay", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 app after dropping empty URL/title, got %d", len(cleaned))
	}
}

func TestCleanerDeduplicatesURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawSourceApp{
		{Title: "A", URL: "https://play.google.com/store/apps/details?id=a", Platform: "googleplay"},
		{Title: "B", URL: " https://play.google.com/store/apps/details?id=a ", Platform: "googleplay"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 app after deduplication, got %d", len(cleaned))
	}
}

func TestCleanerNormalisesFields(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawSourceApp{{
		Rank:     3,
		Title:    "  Photo   Editor\tPro ",
		Category: " Photography ",
		Rating:   "4.6",
		Installs: "10M+",
		Recent:   " 2 days ago",
		URL:      "https://play.google.com/store/apps/details?id=photo",
		Platform: " GooglePlay ",
	}}

	got := c.Clean(raw)[0]
	if got.Title != "Photo Editor Pro" || got.Category != "Photography" || got.Platform != "googleplay" {
		t.Errorf("text not normalised: %+v", got)
	}
	if got.Rank != 3 || got.Rating != 4.6 || got.Installs != "10M+" || got.Recent != "2 days ago" {
		t.Errorf("fields not carried over: %+v", got)
	}
	if s := got.Signal(); s.GPRating != 4.6 || s.Installs != "10M+" {
		t.Errorf("Signal() = %+v", s)
	}
}

func TestNormaliseTextFoldsCompatibilityForms(t *testing.T) {
	tests := map[string]string{
		"Ｔｅｌｅｇｒａｍ":        "Telegram",
		"ﬁle manager":  "file manager",
		"  VPN　Proxy ": "VPN Proxy",
	}
	for in, want := range tests {
		if got := normaliseText(in); got != want {
			t.Errorf("normaliseText(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestCleanerKeepsTrademarkGlyphsForQueryBuilding(t *testing.T) {
	c := NewCleaner(newTestLogger())
	b := newTestQueryBuilder(&fakeTranslator{})

	tests := []struct {
		title string
		kind  models.TitleKind
		query string
	}{
		{"Minecraft™", models.KindBrand, "minecraft"},
		{"Tetris™ Block Puzzle Game", models.KindMixed, "tetris block puzzle game"},
	}

	for _, tt := range tests {
		cleaned := c.Clean([]*models.RawSourceApp{{Title: tt.title, URL: "https://play.google.com/x"}})
		if len(cleaned) != 1 {
			t.Fatalf("%q: got %d apps", tt.title, len(cleaned))
		}

		q, cls := b.Build(context.Background(), cleaned[0].Title, "")
		if cls.Kind != tt.kind {
			t.Errorf("%q: kind = %s; want %s", tt.title, cls.Kind, tt.kind)
		}
		if q.Query != tt.query {
			t.Errorf("%q: query = %q; want %q", tt.title, q.Query, tt.query)
		}
	}
}
