package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"rustore-scout/models"
)

// Scoring constants. Changing any of them changes every stored score.
const (
	competitorSaturation = 20.0
	unknownQualityGap    = 0.7
	ratingFloor          = 2.0
	ratingSpan           = 3.0
	installsLogScale     = 9.0
	gpRatingFloor        = 2.5
	gpRatingSpan         = 2.0

	weightCompetition = 0.30
	weightQualityGap  = 0.25
	weightDemand      = 0.25
	weightValidated   = 0.10
	weightTopWeakness = 0.10
)

var installsRegexp = regexp.MustCompile(`^([\d.]+)\s*([KMBT]?)$`)

var installsMultiplier = map[string]float64{
	"":  1,
	"K": 1e3,
	"M": 1e6,
	"B": 1e9,
	"T": 1e12,
}

// ParseInstalls converts strings like "10M+", "1,234K+" or "500" into a
// number. "N/A" and anything unparseable give 0.
func ParseInstalls(s string) float64 {
	s = strings.NewReplacer("+", "", ",", "").Replace(s)
	s = strings.ToUpper(strings.TrimSpace(s))

	m := installsRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return n * installsMultiplier[m[2]]
}

// OpportunityScore collapses competition and demand signals into 0–100.
func OpportunityScore(stats models.OpportunityStats) int {
	raw := weightCompetition*competitionGap(stats.CompetitorsCount) +
		weightQualityGap*qualityGap(stats.AvgRating) +
		weightDemand*provenDemand(ParseInstalls(stats.Installs)) +
		weightValidated*validatedQuality(stats.GPRating) +
		weightTopWeakness*topWeakness(stats.MaxRating)

	score := int(math.Round(100 * raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func competitionGap(count int) float64 {
	return math.Max(0, 1-float64(count)/competitorSaturation)
}

func qualityGap(avg *float64) float64 {
	if avg == nil {
		return unknownQualityGap
	}
	return math.Max(0, 1-(*avg-ratingFloor)/ratingSpan)
}

func provenDemand(installs float64) float64 {
	if installs <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(installs+1)/installsLogScale)
}

func validatedQuality(gpRating float64) float64 {
	return clamp01((gpRating - gpRatingFloor) / gpRatingSpan)
}

func topWeakness(max *float64) float64 {
	if max == nil {
		return 1
	}
	return math.Max(0, 1-(*max-ratingFloor)/ratingSpan)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
