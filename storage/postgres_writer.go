package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"rustore-scout/models"
)

// PostgresWriter persists source apps, check summaries and reports to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := NewPostgresWriterFromDB(db)
	if err := pw.Migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

// NewPostgresWriterFromDB wraps an already opened database.
func NewPostgresWriterFromDB(db *sql.DB) *PostgresWriter {
	return &PostgresWriter{db: db}
}

// Migrate creates the tables and indexes if they do not exist yet.
func (pw *PostgresWriter) Migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS source_apps (
			id                SERIAL PRIMARY KEY,
			platform          VARCHAR(50)  NOT NULL,
			rank              INTEGER      NOT NULL DEFAULT 0,
			title             TEXT         NOT NULL,
			category          TEXT         NOT NULL DEFAULT '',
			rating            NUMERIC(4,2) NOT NULL DEFAULT 0,
			installs          TEXT         NOT NULL DEFAULT 'N/A',
			recent            TEXT         NOT NULL DEFAULT '',
			url               TEXT         UNIQUE NOT NULL,
			exists_on_target  BOOLEAN      NOT NULL DEFAULT FALSE,
			competitors_count INTEGER      NOT NULL DEFAULT 0,
			opportunity_score INTEGER,
			checked_at        TIMESTAMPTZ,
			created_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS opportunity_reports (
			id                SERIAL PRIMARY KEY,
			app_url           TEXT         NOT NULL REFERENCES source_apps(url) ON DELETE CASCADE,
			app_title         TEXT         NOT NULL,
			category          TEXT         NOT NULL DEFAULT '',
			kind              VARCHAR(20)  NOT NULL,
			search_query      TEXT         NOT NULL,
			was_translated    BOOLEAN      NOT NULL DEFAULT FALSE,
			search_url        TEXT         NOT NULL,
			competitors_count INTEGER      NOT NULL DEFAULT 0,
			avg_rating        NUMERIC(3,1),
			max_rating        NUMERIC(3,1),
			opportunity_score INTEGER      NOT NULL,
			top_competitors   JSONB        NOT NULL DEFAULT '[]',
			checked_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_source_apps_score     ON source_apps(opportunity_score);
		CREATE INDEX IF NOT EXISTS idx_source_apps_category  ON source_apps(category);
		CREATE INDEX IF NOT EXISTS idx_reports_app_url       ON opportunity_reports(app_url);
		CREATE INDEX IF NOT EXISTS idx_reports_checked_at    ON opportunity_reports(checked_at);
	`)
	return err
}

// UpsertApps batch-inserts cleaned apps, refreshing chart fields of apps
// already stored under the same URL.
func (pw *PostgresWriter) UpsertApps(ctx context.Context, apps []*models.SourceApp) error {
	const batchSize = 50
	for i := 0; i < len(apps); i += batchSize {
		end := i + batchSize
		if end > len(apps) {
			end = len(apps)
		}
		if err := pw.upsertBatch(ctx, apps[i:end]); err != nil {
			return fmt.Errorf("postgres: upsert apps: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) upsertBatch(ctx context.Context, batch []*models.SourceApp) error {
	const cols = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, a := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			a.Platform, a.Rank, a.Title, a.Category, a.Rating, a.Installs, a.Recent, a.URL)
	}

	query := fmt.Sprintf(`
		INSERT INTO source_apps (platform, rank, title, category, rating, installs, recent, url)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			rank     = EXCLUDED.rank,
			title    = EXCLUDED.title,
			category = EXCLUDED.category,
			rating   = EXCLUDED.rating,
			installs = EXCLUDED.installs,
			recent   = EXCLUDED.recent
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.ExecContext(ctx, query, valueArgs...)
	return err
}

// UpdateSummary stores the latest existence/score outcome on the app row.
func (pw *PostgresWriter) UpdateSummary(ctx context.Context, s models.ExistenceSummary) error {
	_, err := pw.db.ExecContext(ctx, `
		UPDATE source_apps
		SET exists_on_target = $1, competitors_count = $2, opportunity_score = $3, checked_at = $4
		WHERE url = $5
	`, s.ExistsOnTarget, s.CompetitorsCount, s.OpportunityScore, s.CheckedAt, s.AppURL)
	if err != nil {
		return fmt.Errorf("postgres: update summary: %w", err)
	}
	return nil
}

type competitorRow struct {
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Rating    *float64 `json:"rating"`
	URL       string   `json:"url"`
	Relevance float64  `json:"relevance"`
}

// SaveReport inserts a report and returns its id.
func (pw *PostgresWriter) SaveReport(ctx context.Context, appURL string, r *models.OpportunityReport) (int64, error) {
	rows := make([]competitorRow, 0, len(r.TopCompetitors))
	for _, c := range r.TopCompetitors {
		rows = append(rows, competitorRow{
			Name: c.Name, Category: c.Category, Rating: c.Rating, URL: c.URL, Relevance: c.Relevance,
		})
	}
	top, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("postgres: encode competitors: %w", err)
	}

	var id int64
	err = pw.db.QueryRowContext(ctx, `
		INSERT INTO opportunity_reports (
			app_url, app_title, category, kind, search_query, was_translated, search_url,
			competitors_count, avg_rating, max_rating, opportunity_score, top_competitors, checked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`,
		appURL, r.AppTitle, r.Category, string(r.Kind), r.SearchQuery, r.WasTranslated, r.SearchURL,
		r.CompetitorsCount, nullFloat(r.AvgRating), nullFloat(r.MaxRating), r.OpportunityScore, string(top), r.CheckedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: save report: %w", err)
	}
	return id, nil
}

// FetchApps retrieves all stored source apps in chart order.
func (pw *PostgresWriter) FetchApps(ctx context.Context) ([]*models.SourceApp, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT id, platform, rank, title, category, rating, installs, recent, url, created_at
		FROM source_apps
		ORDER BY rank, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch apps: %w", err)
	}
	defer rows.Close()

	var apps []*models.SourceApp
	for rows.Next() {
		a := &models.SourceApp{}
		if err := rows.Scan(
			&a.ID, &a.Platform, &a.Rank, &a.Title, &a.Category,
			&a.Rating, &a.Installs, &a.Recent, &a.URL, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan app: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// LatestReports returns the most recent report of every app.
func (pw *PostgresWriter) LatestReports(ctx context.Context) ([]*models.OpportunityReport, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT DISTINCT ON (app_url)
			app_title, category, kind, search_query, was_translated, search_url,
			competitors_count, avg_rating, max_rating, opportunity_score, top_competitors, checked_at
		FROM opportunity_reports
		ORDER BY app_url, checked_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: latest reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.OpportunityReport
	for rows.Next() {
		var (
			r        models.OpportunityReport
			kind     string
			avg, max sql.NullFloat64
			top      []byte
		)
		if err := rows.Scan(
			&r.AppTitle, &r.Category, &kind, &r.SearchQuery, &r.WasTranslated, &r.SearchURL,
			&r.CompetitorsCount, &avg, &max, &r.OpportunityScore, &top, &r.CheckedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan report: %w", err)
		}
		r.Kind = models.TitleKind(kind)
		r.AvgRating = floatPtr(avg)
		r.MaxRating = floatPtr(max)

		var comps []competitorRow
		if err := json.Unmarshal(top, &comps); err != nil {
			return nil, fmt.Errorf("postgres: decode competitors: %w", err)
		}
		r.TopCompetitors = make([]models.ScoredCompetitor, 0, len(comps))
		for _, c := range comps {
			r.TopCompetitors = append(r.TopCompetitors, models.ScoredCompetitor{
				CompetitorRecord: models.CompetitorRecord{Name: c.Name, Category: c.Category, Rating: c.Rating, URL: c.URL},
				Relevance:        c.Relevance,
				Relevant:         true,
			})
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
