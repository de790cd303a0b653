package services

import (
	"fmt"
	"sort"
	"strings"

	"rustore-scout/models"
	"rustore-scout/utils"
)

var scoreBuckets = []struct {
	label string
	min   int
}{
	{"80-100", 80},
	{"60-79", 60},
	{"40-59", 40},
	{"0-39", 0},
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate aggregates a batch of reports into a market summary.
func (s *InsightService) Generate(reports []*models.OpportunityReport) *models.MarketSummary {
	summary := &models.MarketSummary{
		ByKind:       make(map[models.TitleKind]int),
		ScoreBuckets: make(map[string]int),
	}

	if len(reports) == 0 {
		return summary
	}

	summary.TotalChecked = len(reports)

	var total int
	for _, r := range reports {
		total += r.OpportunityScore
		summary.ByKind[r.Kind]++
		if r.WasTranslated {
			summary.Translated++
		}
		if r.CompetitorsCount == 0 {
			summary.Untapped++
		}
		summary.ScoreBuckets[bucketFor(r.OpportunityScore)]++
	}
	summary.AverageScore = round2(float64(total) / float64(len(reports)))

	ranked := make([]*models.OpportunityReport, len(reports))
	copy(ranked, reports)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OpportunityScore > ranked[j].OpportunityScore
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	summary.TopOpportunities = ranked

	return summary
}

func (s *InsightService) Print(r *models.MarketSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 RUSTORE OPPORTUNITY INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Apps checked           : \033[1m%d\033[0m\n", r.TotalChecked)
	fmt.Printf("  Queries translated     : \033[1m%d\033[0m\n", r.Translated)
	fmt.Printf("  No competitors at all  : \033[1m%d\033[0m\n", r.Untapped)
	if r.TotalChecked > 0 {
		fmt.Printf("  Average score          : \033[1;32m%.2f\033[0m\n", r.AverageScore)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Titles by Kind\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, k := range []models.TitleKind{models.KindBrand, models.KindMixed, models.KindDescriptive} {
		fmt.Printf("  %-12s %d\n", k, r.ByKind[k])
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top 5 Opportunities\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopOpportunities) == 0 {
		fmt.Printf("  No reports\n")
	} else {
		for i, rep := range r.TopOpportunities {
			fmt.Printf("  \033[1m%d.\033[0m %-36s \033[1;32m%3d\033[0m (%d competitors)\n",
				i+1, truncate(rep.AppTitle, 34), rep.OpportunityScore, rep.CompetitorsCount)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Score Distribution\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, b := range scoreBuckets {
		count := r.ScoreBuckets[b.label]
		fmt.Printf("  %-8s %s (%d)\n", b.label, strings.Repeat("█", count), count)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func bucketFor(score int) string {
	for _, b := range scoreBuckets {
		if score >= b.min {
			return b.label
		}
	}
	return scoreBuckets[len(scoreBuckets)-1].label
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
