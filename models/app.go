package models

import "time"

// RawSourceApp holds unprocessed chart data directly from the browser.
// This is written to CSV before any cleaning or transformation.
type RawSourceApp struct {
	Rank      int
	Title     string
	Category  string
	Rating    string
	Installs  string
	Recent    string
	URL       string
	ScrapedAt time.Time
	Platform  string
}

// SourceApp is the cleaned, validated chart entry ready for PostgreSQL storage.
type SourceApp struct {
	ID        int64
	Platform  string
	Rank      int
	Title     string
	Category  string
	Rating    float64
	Installs  string
	Recent    string
	URL       string
	CreatedAt time.Time
}

// OriginalAppSignal is the original app's proven-market evidence.
// Installs may be "N/A" when the source did not report it.
type OriginalAppSignal struct {
	GPRating float64
	Installs string
}

// Signal returns the market evidence used for scoring this app.
func (a *SourceApp) Signal() OriginalAppSignal {
	return OriginalAppSignal{GPRating: a.Rating, Installs: a.Installs}
}
