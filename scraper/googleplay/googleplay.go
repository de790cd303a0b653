// Package googleplay collects source-app listings from a Google Play chart.
package googleplay

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"rustore-scout/config"
	"rustore-scout/models"
	"rustore-scout/utils"
)

const platform = "googleplay"

// chartRatingRegexp matches a chart rating line ("4.5", "4,5 star") but not
// an installs line such as "50M+" or "5B+".
var chartRatingRegexp = regexp.MustCompile(`^\d[.,]\d\b`)

// chartRating drops anything the page script picked up that is not a rating.
func chartRating(line string) string {
	line = strings.TrimSpace(line)
	if !chartRatingRegexp.MatchString(line) {
		return ""
	}
	return line
}

// Scraper reads a Google Play chart page and enriches each entry from its
// details page.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	pool       *utils.WorkerPool
	visitedURL *utils.KeySet
	retry      *utils.RetryConfig

	mu   sync.Mutex
	apps []*models.RawSourceApp
}

// New creates a ready-to-use Google Play Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
			MaxJitter:   time.Duration(cfg.RetryJitterMs) * time.Millisecond,
			Logger:      logger,
		},
		apps: make([]*models.RawSourceApp, 0),
	}
}

type chartCard struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Rating   string `json:"rating"`
	URL      string `json:"url"`
}

type detailData struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Rating   string `json:"rating"`
	Installs string `json:"installs"`
	Recent   string `json:"recent"`
}

// Scrape loads the chart and returns up to SourceAppsLimit raw listings in
// chart order.
func (s *Scraper) Scrape(browserCtx context.Context) ([]*models.RawSourceApp, error) {
	s.logger.Info("[googleplay] Starting scrape — chart: %s, limit: %d",
		s.cfg.SourceChartURL, s.cfg.SourceAppsLimit)

	cards, err := s.scrapeChart(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("googleplay: chart: %w", err)
	}

	rank := 0
	for _, c := range cards {
		if c.URL == "" || !s.visitedURL.Add(c.URL) {
			continue
		}
		rank++
		s.apps = append(s.apps, &models.RawSourceApp{
			Rank:      rank,
			Title:     c.Title,
			Category:  c.Category,
			Rating:    chartRating(c.Rating),
			Installs:  "N/A",
			URL:       c.URL,
			ScrapedAt: time.Now(),
			Platform:  platform,
		})
		if rank >= s.cfg.SourceAppsLimit {
			break
		}
	}

	s.logger.Info("[googleplay] Chart parsed — %d apps, fetching details...", len(s.apps))
	s.enrichApps(browserCtx, s.apps)

	s.logger.Info("[googleplay] Scrape complete — total raw apps: %d", len(s.apps))
	return s.apps, nil
}

func (s *Scraper) scrapeChart(browserCtx context.Context) ([]chartCard, error) {
	var cards []chartCard

	err := s.retry.Do(browserCtx, "googleplay-chart", func(context.Context) error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, s.cfg.NavigationTimeout())
		defer cancelTimeout()

		err := chromedp.Run(ctx,
			chromedp.Navigate(s.cfg.SourceChartURL),
			chromedp.Sleep(5*time.Second),

			// Scroll so lazily rendered chart rows are present
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var seen = {};
					var links = document.querySelectorAll('a[href*="/store/apps/details?id="]');
					for (var i = 0; i < links.length; i++) {
						var href = links[i].href.split('&')[0];
						if (!href || seen[href]) continue;
						seen[href] = true;

						var lines = (links[i].innerText || '').split('\n')
							.map(function(l){ return l.trim(); })
							.filter(Boolean)
							.filter(function(l){ return !/^\d+$/.test(l); });

						var title = links[i].getAttribute('aria-label') || lines[0] || '';
						var rating = lines.find(function(l){ return /^\d[.,]\d\b/.test(l); }) || '';
						var category = lines.length > 1 && lines[1] !== rating ? lines[1] : '';

						results.push({ title: title, category: category, rating: rating, url: href });
					}
					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp chart extract: %w", err)
		}
		if len(cards) == 0 {
			return fmt.Errorf("no chart entries found")
		}
		return nil
	})

	return cards, err
}

// enrichApps visits every details page to read installs, category and the
// last-update line, which charts do not show.
func (s *Scraper) enrichApps(browserCtx context.Context, apps []*models.RawSourceApp) {
	for _, app := range apps {
		a := app
		s.pool.Submit(func() {
			details, err := s.scrapeDetailPage(browserCtx, a.URL)
			if err != nil {
				s.logger.Warn("[googleplay] Details failed for %s: %v", a.URL, err)
				return
			}

			s.mu.Lock()
			defer s.mu.Unlock()

			if a.Title == "" && details.Title != "" {
				a.Title = details.Title
			}
			if details.Category != "" {
				a.Category = details.Category
			}
			if details.Rating != "" {
				a.Rating = details.Rating
			}
			if details.Installs != "" {
				a.Installs = details.Installs
			}
			a.Recent = details.Recent

			s.logger.Debug("[googleplay] Enriched: %s (%s installs)", a.Title, a.Installs)
		})
	}
	s.pool.Wait()
}

func (s *Scraper) scrapeDetailPage(browserCtx context.Context, url string) (*detailData, error) {
	var details detailData

	err := s.retry.Do(browserCtx, "googleplay-details", func(context.Context) error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, s.cfg.NavigationTimeout())
		defer cancelTimeout()

		err := chromedp.Run(ctx,
			chromedp.Navigate(url+"&hl=en&gl=US"),
			chromedp.Sleep(3*time.Second),

			chromedp.Evaluate(`
				(function() {
					var result = { title: '', category: '', rating: '', installs: '', recent: '' };

					var h1 = document.querySelector('h1');
					if (h1) result.title = h1.innerText.trim();

					var genre = document.querySelector('a[itemprop="genre"]') ||
					            document.querySelector('a[href*="/store/apps/category/"]');
					if (genre) result.category = genre.innerText.trim();

					var ratingEl = document.querySelector('[itemprop="starRating"]') ||
					               document.querySelector('div[aria-label*="Rated"]');
					if (ratingEl) {
						var m = (ratingEl.innerText || ratingEl.getAttribute('aria-label') || '').match(/(\d[.,]\d)/);
						result.rating = m ? m[1] : '';
					}

					var blocks = document.querySelectorAll('div');
					for (var i = 0; i < blocks.length; i++) {
						var t = (blocks[i].innerText || '').trim();
						if (!result.installs && /^[\d.,]+\s*[KMB]?\+$/.test(t.split('\n')[0]) && /Downloads/i.test(t)) {
							result.installs = t.split('\n')[0].trim();
						}
						if (!result.recent && /^Updated on/i.test(t)) {
							result.recent = t.split('\n').slice(-1)[0].trim();
						}
					}
					return result;
				})()
			`, &details),
		)
		if err != nil {
			return fmt.Errorf("chromedp details extract: %w", err)
		}

		details.Title = strings.TrimSpace(details.Title)
		return nil
	})

	return &details, err
}
