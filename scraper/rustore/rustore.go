// Package rustore searches the RuStore catalogue for competing apps.
package rustore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"rustore-scout/config"
	"rustore-scout/models"
	"rustore-scout/services"
	"rustore-scout/utils"
)

const searchBaseURL = "https://www.rustore.ru/search?query="

// Searcher runs catalogue searches in tabs of a shared browser.
// It satisfies services.CompetitorSource.
type Searcher struct {
	browserCtx context.Context
	cfg        *config.Config
	logger     *utils.Logger
	retry      *utils.RetryConfig
}

// NewSearcher creates a Searcher that opens its tabs from browserCtx.
func NewSearcher(browserCtx context.Context, cfg *config.Config, logger *utils.Logger) *Searcher {
	return &Searcher{
		browserCtx: browserCtx,
		cfg:        cfg,
		logger:     logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
			MaxJitter:   time.Duration(cfg.RetryJitterMs) * time.Millisecond,
			Logger:      logger,
		},
	}
}

// SearchURL returns the public search page for query.
func (s *Searcher) SearchURL(query string) string {
	return searchBaseURL + url.QueryEscape(query)
}

type searchCard struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Rating   string `json:"rating"`
	URL      string `json:"url"`
}

// Search returns the listings shown for query, in page order. When every
// navigation attempt fails the result is empty, not an error.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.CompetitorRecord, error) {
	var cards []searchCard
	searchURL := s.SearchURL(query)

	err := s.retry.Do(ctx, fmt.Sprintf("rustore-search %q", query), func(context.Context) error {
		tabCtx, cancel := chromedp.NewContext(s.browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout())
		defer cancelTimeout()

		err := chromedp.Run(tabCtx,
			chromedp.Navigate(searchURL),
			chromedp.Sleep(4*time.Second),

			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(1*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var seen = {};
					var links = document.querySelectorAll('a[href*="/catalog/app/"]');
					for (var i = 0; i < links.length; i++) {
						var href = links[i].href;
						if (!href || seen[href]) continue;
						seen[href] = true;

						var nameEl = links[i].querySelector('[data-testid="title"]') ||
						             links[i].querySelector('p, h3, span');
						var catEl = links[i].querySelector('[data-testid="category"]');
						var ratingEl = links[i].querySelector('[data-testid="rating"]');

						var lines = (links[i].innerText || '').split('\n')
							.map(function(l){ return l.trim(); })
							.filter(Boolean);

						results.push({
							name:     nameEl ? nameEl.innerText.trim() : (lines[0] || ''),
							category: catEl ? catEl.innerText.trim() : (lines[1] || ''),
							rating:   ratingEl ? ratingEl.innerText.trim() :
							          (lines.find(function(l){ return /^\d[.,]\d$/.test(l); }) || ''),
							url:      href
						});
					}
					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp search extract: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("[rustore] Search %q gave up: %v", query, err)
		return []models.CompetitorRecord{}, nil
	}

	records := toRecords(cards, s.cfg.CompetitorLimit)
	s.logger.Debug("[rustore] %q → %d listings", query, len(records))
	return records, nil
}

// toRecords drops nameless or duplicate cards and caps the result at limit
// (0 means no cap). Missing ratings stay nil.
func toRecords(cards []searchCard, limit int) []models.CompetitorRecord {
	seen := utils.NewKeySet()
	records := make([]models.CompetitorRecord, 0, len(cards))

	for _, c := range cards {
		name := strings.TrimSpace(c.Name)
		if name == "" || !seen.Add(c.URL) {
			continue
		}
		records = append(records, models.CompetitorRecord{
			Name:     name,
			Category: strings.TrimSpace(c.Category),
			Rating:   services.ParseRatingText(c.Rating),
			URL:      c.URL,
		})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records
}
