package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"rustore-scout/models"
)

const (
	// RelevanceThreshold is the minimum score for a competitor to count.
	RelevanceThreshold = 0.15

	jaccardWeight    = 0.6
	substringBonus   = 0.3
	ratingBonus      = 0.1
	minCompareLength = 2
)

// Jaccard is the token-set similarity of a and b. Tokens shorter than two
// characters are ignored; an empty side gives 0.
func Jaccard(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// RelevanceScore estimates in [0,1] whether the competitor is the same kind
// of app as the one searched for.
func RelevanceScore(c models.CompetitorRecord, searchQuery, cleanedTitle string) float64 {
	best := Jaccard(c.Name, searchQuery)
	if j := Jaccard(c.Name, cleanedTitle); j > best {
		best = j
	}

	score := jaccardWeight * best

	name := strings.ToLower(strings.TrimSpace(c.Name))
	if nameOverlaps(name, searchQuery) || nameOverlaps(name, cleanedTitle) {
		score += substringBonus
	}

	if c.Rating != nil {
		score += ratingBonus
	}

	// 0.6+0.3+0.1 sums to 0.9999999999999999 in binary
	score = math.Round(score*1e9) / 1e9
	if score > 1 {
		score = 1
	}
	return score
}

// Accept reports whether a relevance score passes the threshold.
func Accept(score float64) bool {
	return score >= RelevanceThreshold
}

// ScoreCompetitors scores every candidate independently, keeping input order.
func ScoreCompetitors(candidates []models.CompetitorRecord, searchQuery, cleanedTitle string) []models.ScoredCompetitor {
	scored := make([]models.ScoredCompetitor, 0, len(candidates))
	for _, c := range candidates {
		s := RelevanceScore(c, searchQuery, cleanedTitle)
		scored = append(scored, models.ScoredCompetitor{
			CompetitorRecord: c,
			Relevance:        s,
			Relevant:         Accept(s),
		})
	}
	return scored
}

// nameOverlaps checks containment in both directions.
func nameOverlaps(name, other string) bool {
	other = strings.ToLower(strings.TrimSpace(other))
	if utf8.RuneCountInString(name) < minCompareLength || utf8.RuneCountInString(other) < minCompareLength {
		return false
	}
	return strings.Contains(other, name) || strings.Contains(name, other)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}
