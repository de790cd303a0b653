package services

import (
	"testing"

	"rustore-scout/models"
)

func TestParseInstalls(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1,234K+", 1234000},
		{"10M+", 1e7},
		{"100,000,000+", 1e8},
		{"1.5B", 1.5e9},
		{"5 k", 5000},
		{"500", 500},
		{"2T", 2e12},
		{"N/A", 0},
		{"", 0},
		{"lots", 0},
		{"1.2.3M", 0},
		{"10MB", 0},
	}
	for _, tt := range tests {
		if got := ParseInstalls(tt.raw); got != tt.want {
			t.Errorf("ParseInstalls(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestOpportunityScoreZeroCompetitors(t *testing.T) {
	got := OpportunityScore(models.OpportunityStats{
		CompetitorsCount: 0,
		GPRating:         4.2,
		Installs:         "10M+",
	})
	if got != 85 {
		t.Errorf("score = %d; want 85", got)
	}
}

func TestOpportunityScoreWithCompetitors(t *testing.T) {
	got := OpportunityScore(models.OpportunityStats{
		CompetitorsCount: 10,
		AvgRating:        rating(4.0),
		MaxRating:        rating(4.5),
		GPRating:         4.5,
		Installs:         "1M+",
	})
	// .30*.5 + .25*(1/3) + .25*(6/9) + .10*1 + .10*(1/6) = .5167
	if got != 52 {
		t.Errorf("score = %d; want 52", got)
	}
}

func TestOpportunityScoreBounds(t *testing.T) {
	best := OpportunityScore(models.OpportunityStats{
		AvgRating: rating(2.0),
		MaxRating: rating(2.0),
		GPRating:  5,
		Installs:  "5B+",
	})
	if best != 100 {
		t.Errorf("best score = %d; want 100", best)
	}

	worst := OpportunityScore(models.OpportunityStats{
		CompetitorsCount: 40,
		AvgRating:        rating(5),
		MaxRating:        rating(5),
		GPRating:         1,
		Installs:         "N/A",
	})
	if worst != 0 {
		t.Errorf("worst score = %d; want 0", worst)
	}
}

func TestOpportunityScoreMonotonic(t *testing.T) {
	base := models.OpportunityStats{AvgRating: rating(3.8), MaxRating: rating(4.6), GPRating: 4.0, Installs: "1M+"}

	prev := 101
	for n := 0; n <= 25; n++ {
		s := base
		s.CompetitorsCount = n
		got := OpportunityScore(s)
		if got > prev {
			t.Errorf("more competitors raised the score: %d competitors → %d (prev %d)", n, got, prev)
		}
		prev = got
	}

	prev = -1
	for r := 0.0; r <= 5.0; r += 0.25 {
		s := base
		s.GPRating = r
		got := OpportunityScore(s)
		if got < prev {
			t.Errorf("higher rating lowered the score: %.2f → %d (prev %d)", r, got, prev)
		}
		prev = got
	}

	prev = -1
	for _, inst := range []string{"N/A", "10+", "1K+", "100K+", "1M+", "50M+", "1B+", "10B+"} {
		s := base
		s.Installs = inst
		got := OpportunityScore(s)
		if got < prev {
			t.Errorf("more installs lowered the score: %s → %d (prev %d)", inst, got, prev)
		}
		prev = got
	}
}
