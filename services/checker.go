package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"rustore-scout/models"
	"rustore-scout/utils"
)

const topCompetitorsLimit = 5

// CompetitorSource finds listings on the target storefront.
type CompetitorSource interface {
	Search(ctx context.Context, query string) ([]models.CompetitorRecord, error)
	SearchURL(query string) string
}

// Checker runs the full opportunity check for one app.
type Checker struct {
	queries *QueryBuilder
	logger  *utils.Logger
	now     func() time.Time
}

// NewChecker creates a Checker on top of a QueryBuilder.
func NewChecker(queries *QueryBuilder, logger *utils.Logger) *Checker {
	return &Checker{queries: queries, logger: logger, now: time.Now}
}

// Check builds the search query, fetches candidates from source, keeps the
// relevant ones and scores the opportunity. It fails only when source does.
func (c *Checker) Check(ctx context.Context, title, category string, signal models.OriginalAppSignal, source CompetitorSource) (*models.OpportunityReport, error) {
	query, cls := c.queries.Build(ctx, title, category)

	candidates, err := source.Search(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("check %q: search %q: %w", title, query.Query, err)
	}

	report := &models.OpportunityReport{
		AppTitle:       title,
		Category:       category,
		Kind:           cls.Kind,
		SearchQuery:    query.Query,
		WasTranslated:  query.WasTranslated,
		SearchURL:      source.SearchURL(query.Query),
		TopCompetitors: []models.ScoredCompetitor{},
		CheckedAt:      c.now(),
	}

	if len(candidates) > 0 {
		relevant := relevantOnly(ScoreCompetitors(candidates, query.Query, CleanTitle(title)))
		report.CompetitorsCount = len(relevant)
		report.AvgRating, report.MaxRating = ratingStats(relevant)
		report.TopCompetitors = topByRating(relevant, topCompetitorsLimit)

		c.logger.Debug("[checker] %q: %d/%d candidates relevant for %q",
			title, len(relevant), len(candidates), query.Query)
	}

	report.OpportunityScore = OpportunityScore(models.OpportunityStats{
		CompetitorsCount: report.CompetitorsCount,
		AvgRating:        report.AvgRating,
		MaxRating:        report.MaxRating,
		GPRating:         signal.GPRating,
		Installs:         signal.Installs,
	})

	return report, nil
}

// Summarize derives the per-app existence/score summary from a report. The
// app exists on the target storefront when a relevant competitor's name
// equals or contains the cleaned title.
func Summarize(report *models.OpportunityReport, appURL string) models.ExistenceSummary {
	cleaned := CleanTitle(report.AppTitle)
	exists := false
	for _, c := range report.TopCompetitors {
		if cleaned != "" && strings.Contains(CleanTitle(c.Name), cleaned) {
			exists = true
			break
		}
	}
	return models.ExistenceSummary{
		AppURL:           appURL,
		ExistsOnTarget:   exists,
		CompetitorsCount: report.CompetitorsCount,
		OpportunityScore: report.OpportunityScore,
		CheckedAt:        report.CheckedAt,
	}
}

func relevantOnly(scored []models.ScoredCompetitor) []models.ScoredCompetitor {
	out := make([]models.ScoredCompetitor, 0, len(scored))
	for _, s := range scored {
		if s.Relevant {
			out = append(out, s)
		}
	}
	return out
}

// ratingStats returns the 1-decimal average and max rating over rated
// competitors, or nils when none is rated.
func ratingStats(competitors []models.ScoredCompetitor) (avg, max *float64) {
	var total, best float64
	n := 0
	for _, c := range competitors {
		if c.Rating == nil {
			continue
		}
		total += *c.Rating
		if n == 0 || *c.Rating > best {
			best = *c.Rating
		}
		n++
	}
	if n == 0 {
		return nil, nil
	}
	a, m := round1(total/float64(n)), round1(best)
	return &a, &m
}

func topByRating(competitors []models.ScoredCompetitor, limit int) []models.ScoredCompetitor {
	sorted := make([]models.ScoredCompetitor, len(competitors))
	copy(sorted, competitors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RatingOrZero() > sorted[j].RatingOrZero()
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
