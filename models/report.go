package models

import "time"

// TitleKind says whether a title names a product, describes one, or both.
type TitleKind string

const (
	KindBrand       TitleKind = "brand"
	KindDescriptive TitleKind = "descriptive"
	KindMixed       TitleKind = "mixed"
)

// TitleClassification splits a title into brand-protected tokens and the
// meaningful remainder (fillers already removed).
type TitleClassification struct {
	Kind        TitleKind
	BrandTokens []string
	OtherTokens []string
}

// SearchQuery is the normalized string sent to the target storefront.
type SearchQuery struct {
	Query         string
	WasTranslated bool
}

// CompetitorRecord is a listing found on the target storefront.
// Rating is nil when the listing shows none.
type CompetitorRecord struct {
	Name     string
	Category string
	Rating   *float64
	URL      string
}

// RatingOrZero returns the rating, treating a missing one as 0.
func (c CompetitorRecord) RatingOrZero() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// ScoredCompetitor is a CompetitorRecord with its relevance verdict.
type ScoredCompetitor struct {
	CompetitorRecord
	Relevance float64
	Relevant  bool
}

// OpportunityStats is the input of the opportunity scorer.
type OpportunityStats struct {
	CompetitorsCount int
	AvgRating        *float64
	MaxRating        *float64
	GPRating         float64
	Installs         string
}

// OpportunityReport is the result of a single check.
type OpportunityReport struct {
	AppTitle         string
	Category         string
	Kind             TitleKind
	SearchQuery      string
	WasTranslated    bool
	SearchURL        string
	CompetitorsCount int
	TopCompetitors   []ScoredCompetitor
	AvgRating        *float64
	MaxRating        *float64
	OpportunityScore int
	CheckedAt        time.Time
}

// ExistenceSummary is the per-app outcome stored next to the source app.
type ExistenceSummary struct {
	AppURL           string
	ExistsOnTarget   bool
	CompetitorsCount int
	OpportunityScore int
	CheckedAt        time.Time
}

// MarketSummary holds the computed analytics over a batch of reports.
type MarketSummary struct {
	TotalChecked     int
	Translated       int
	Untapped         int
	AverageScore     float64
	ByKind           map[TitleKind]int
	ScoreBuckets     map[string]int
	TopOpportunities []*OpportunityReport
}
