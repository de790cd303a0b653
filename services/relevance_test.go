package services

import (
	"math"
	"testing"

	"rustore-scout/models"
)

func rating(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"photo editor", "photo editor pro", 2.0 / 3.0},
		{"Photo Editor", "photo EDITOR", 1},
		{"", "photo", 0},
		{"a b", "a b", 0},
		{"weather", "photo editor", 0},
		{"photo a", "photo b", 1},
	}
	for _, tt := range tests {
		if got := Jaccard(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("Jaccard(%q, %q) = %.4f; want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRelevanceScore(t *testing.T) {
	query := "photo editor pro"

	tests := []struct {
		name   string
		c      models.CompetitorRecord
		want   float64
		accept bool
	}{
		{"exact name with rating", models.CompetitorRecord{Name: "Photo Editor Pro", Rating: rating(4.5)}, 1.0, true},
		{"exact name without rating", models.CompetitorRecord{Name: "photo editor pro"}, 0.9, true},
		{"contained name", models.CompetitorRecord{Name: "Photo Editor", Rating: rating(4.1)}, 0.6*2.0/3.0 + 0.3 + 0.1, true},
		{"token overlap only", models.CompetitorRecord{Name: "Pro Photo Editor Studio"}, 0.6 * 0.75, true},
		{"rating only", models.CompetitorRecord{Name: "Weather Forecast", Rating: rating(4.9)}, 0.1, false},
		{"nothing", models.CompetitorRecord{Name: "Weather Forecast"}, 0, false},
		{"one-letter name", models.CompetitorRecord{Name: "p"}, 0, false},
	}

	for _, tt := range tests {
		got := RelevanceScore(tt.c, query, query)
		if !approx(got, tt.want) {
			t.Errorf("%s: score = %.4f; want %.4f", tt.name, got, tt.want)
		}
		if Accept(got) != tt.accept {
			t.Errorf("%s: Accept(%.4f) = %v; want %v", tt.name, got, Accept(got), tt.accept)
		}
	}
}

func TestRelevanceExactMatchIsExactlyOne(t *testing.T) {
	c := models.CompetitorRecord{Name: "Flashlight", Rating: rating(4.4)}
	if got := RelevanceScore(c, "flashlight", "flashlight"); got != 1.0 {
		t.Errorf("score = %v; want exactly 1", got)
	}
}

func TestRelevanceUsesCleanedTitleToo(t *testing.T) {
	c := models.CompetitorRecord{Name: "Фоторедактор"}
	if got := RelevanceScore(c, "фоторедактор про", "photo editor pro"); !approx(got, 0.6*0.5+0.3) {
		t.Errorf("score = %.4f; want %.4f", got, 0.6*0.5+0.3)
	}
	c = models.CompetitorRecord{Name: "Photo Editor Pro"}
	if got := RelevanceScore(c, "фоторедактор про", "photo editor pro"); !approx(got, 0.9) {
		t.Errorf("score = %.4f; want 0.9", got)
	}
}

func TestRelevanceBoundsAndMonotonicity(t *testing.T) {
	names := []string{"Photo Editor Pro", "Photo", "Editor Pro Max", "Unrelated Game", "", "pro"}
	for _, n := range names {
		unrated := RelevanceScore(models.CompetitorRecord{Name: n}, "photo editor pro", "photo editor pro")
		rated := RelevanceScore(models.CompetitorRecord{Name: n, Rating: rating(3)}, "photo editor pro", "photo editor pro")
		if unrated < 0 || unrated > 1 || rated < 0 || rated > 1 {
			t.Errorf("%q: score out of [0,1]: %.4f / %.4f", n, unrated, rated)
		}
		if rated < unrated {
			t.Errorf("%q: rating lowered the score: %.4f < %.4f", n, rated, unrated)
		}
	}
}

func TestScoreCompetitorsKeepsOrder(t *testing.T) {
	in := []models.CompetitorRecord{
		{Name: "Weather"},
		{Name: "Photo Editor Pro", Rating: rating(4)},
	}
	out := ScoreCompetitors(in, "photo editor pro", "photo editor pro")
	if len(out) != 2 || out[0].Name != "Weather" || out[1].Name != "Photo Editor Pro" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out[0].Relevant || !out[1].Relevant {
		t.Errorf("relevance flags: got %v/%v, want false/true", out[0].Relevant, out[1].Relevant)
	}
}
