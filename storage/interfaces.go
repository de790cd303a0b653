package storage

import (
	"context"

	"rustore-scout/models"
)

// AppStore persists cleaned source apps and their check summaries.
type AppStore interface {
	UpsertApps(ctx context.Context, apps []*models.SourceApp) error
	UpdateSummary(ctx context.Context, summary models.ExistenceSummary) error
	FetchApps(ctx context.Context) ([]*models.SourceApp, error)
	Close() error
}

// ReportWriter persists one report per check.
type ReportWriter interface {
	SaveReport(ctx context.Context, appURL string, report *models.OpportunityReport) (int64, error)
}

// RawAppWriter is the interface for persisting unprocessed scraped data.
type RawAppWriter interface {
	WriteRaw(apps []*models.RawSourceApp) error
	Close() error
}
