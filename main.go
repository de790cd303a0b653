package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"rustore-scout/config"
	"rustore-scout/models"
	"rustore-scout/scraper/browser"
	"rustore-scout/scraper/googleplay"
	"rustore-scout/scraper/rustore"
	"rustore-scout/services"
	"rustore-scout/storage"
	"rustore-scout/translate"
	"rustore-scout/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== RuStore Opportunity Scout starting ===")
	logger.Info("Config — apps: %d | competitors/search: %d | concurrency: %d | rate: %dms",
		cfg.SourceAppsLimit, cfg.CompetitorLimit, cfg.MaxConcurrency, cfg.RateLimitMs)

	fillers, err := services.LoadFillerTableFile(cfg.FillersPath)
	if err != nil {
		logger.Error("Failed to load filler table: %v", err)
		os.Exit(1)
	}
	logger.Info("Filler table version %d loaded", fillers.Version)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	browserCtx, closeBrowser := browser.NewContext(cfg.ChromeBin, logger)
	defer closeBrowser()

	rawApps, err := googleplay.New(cfg, logger).Scrape(browserCtx)
	if err != nil {
		logger.Error("Google Play scrape failed: %v", err)
	}
	if len(rawApps) == 0 {
		logger.Error("No source apps were scraped. Exiting.")
		os.Exit(1)
	}

	if err := csvWriter.WriteRaw(rawApps); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Raw source apps saved to %s", cfg.CSVOutputPath)
	}

	apps := services.NewCleaner(logger).Clean(rawApps)
	if len(apps) == 0 {
		logger.Error("All apps were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	ctx := context.Background()
	apps, err = persistApps(ctx, pgWriter, apps)
	if err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		os.Exit(1)
	}

	translator := services.NewTranslator(
		translate.NewClient(&http.Client{}, cfg.TranslateURL, cfg.SourceLang, cfg.TargetLang),
		services.NewMemoryCache(),
		&utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
			MaxJitter:   time.Duration(cfg.RetryJitterMs) * time.Millisecond,
			Logger:      logger,
		},
		cfg.TranslateTimeout(),
		logger,
	)
	checker := services.NewChecker(services.NewQueryBuilder(fillers, translator, logger), logger)
	searcher := rustore.NewSearcher(browserCtx, cfg, logger)

	reports := checkAll(ctx, cfg, logger, checker, searcher, pgWriter, apps)
	logger.Info("Checked %d/%d apps", len(reports), len(apps))

	stored, err := pgWriter.LatestReports(ctx)
	if err != nil {
		logger.Error("Failed to fetch reports from DB for insights: %v", err)
		stored = reports
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(stored))

	fmt.Printf("  Done. Raw CSV → %s | Reports → PostgreSQL (opportunity_reports table)\n\n",
		cfg.CSVOutputPath)
}

// reportStore is where each finished check ends up.
type reportStore interface {
	storage.AppStore
	storage.ReportWriter
}

// persistApps upserts this run's apps and returns them as stored, so each
// check works from the persisted row. Apps from earlier runs are not rechecked.
func persistApps(ctx context.Context, store storage.AppStore, apps []*models.SourceApp) ([]*models.SourceApp, error) {
	if err := store.UpsertApps(ctx, apps); err != nil {
		return nil, err
	}
	stored, err := store.FetchApps(ctx)
	if err != nil {
		return nil, err
	}

	current := utils.NewKeySet()
	for _, a := range apps {
		current.Add(a.URL)
	}
	out := make([]*models.SourceApp, 0, len(apps))
	for _, a := range stored {
		if current.Contains(a.URL) {
			out = append(out, a)
		}
	}
	return out, nil
}

// checkAll runs one check per app through the worker pool and persists
// every report with its summary. Failed checks are logged and skipped.
func checkAll(
	ctx context.Context,
	cfg *config.Config,
	logger *utils.Logger,
	checker *services.Checker,
	source services.CompetitorSource,
	store reportStore,
	apps []*models.SourceApp,
) []*models.OpportunityReport {
	pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs)

	var mu sync.Mutex
	reports := make([]*models.OpportunityReport, 0, len(apps))

	for _, app := range apps {
		a := app
		pool.Submit(func() {
			report, err := checker.Check(ctx, a.Title, a.Category, a.Signal(), source)
			if err != nil {
				logger.Error("[check] %s: %v", a.Title, err)
				return
			}

			if _, err := store.SaveReport(ctx, a.URL, report); err != nil {
				logger.Error("[check] %s: %v", a.Title, err)
			}
			if err := store.UpdateSummary(ctx, services.Summarize(report, a.URL)); err != nil {
				logger.Error("[check] %s: %v", a.Title, err)
			}

			logger.Info("[check] %-32s → %q: %d competitors, score %d",
				a.Title, report.SearchQuery, report.CompetitorsCount, report.OpportunityScore)

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		})
	}
	pool.Wait()

	return reports
}
