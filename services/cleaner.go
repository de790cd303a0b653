package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"rustore-scout/models"
	"rustore-scout/utils"
)

var (
	// ratingRegexp captures a numeric rating in the 0.0–5.0 range
	ratingRegexp = regexp.MustCompile(`\b([0-5](?:[.,]\d{1,2})?)\b`)
	// installsTextRegexp captures "10M+", "1,000,000+", "500K" and similar
	installsTextRegexp = regexp.MustCompile(`[\d][\d,.]*\s*[KMBTkmbt]?\+?`)
)

const notAvailable = "N/A"

// Cleaner transforms RawSourceApps into clean, validated SourceApps.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw chart entries and returns cleaned records.
func (c *Cleaner) Clean(raw []*models.RawSourceApp) []*models.SourceApp {
	seen := utils.NewKeySet()
	result := make([]*models.SourceApp, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping app with empty URL: %s", r.Title)
			continue
		}

		title := normaliseTitle(r.Title)
		if title == "" || title == notAvailable {
			c.logger.Warn("[cleaner] Dropping app with empty title: %s", url)
			continue
		}

		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		result = append(result, &models.SourceApp{
			Platform:  normalisePlatform(r.Platform),
			Rank:      r.Rank,
			Title:     title,
			Category:  normaliseText(r.Category),
			Rating:    c.parseRating(r.Rating),
			Installs:  parseInstallsText(r.Installs),
			Recent:    normaliseText(r.Recent),
			URL:       url,
			CreatedAt: time.Now(),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d apps (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parseRating extracts a 0.0–5.0 numeric rating from a raw string.
// A decimal comma ("4,5") is accepted.
func (c *Cleaner) parseRating(raw string) float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return 0
	}
	val, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	if val < 0 || val > 5 {
		return 0
	}
	return val
}

// parseInstallsText keeps the storefront's own installs notation
// ("10M+", "1,000,000+") and maps anything else to "N/A".
func parseInstallsText(raw string) string {
	match := installsTextRegexp.FindString(strings.TrimSpace(raw))
	if match == "" {
		return notAvailable
	}
	return strings.ReplaceAll(match, " ", "")
}

// ParseRatingText extracts an optional rating from listing text, as shown
// on storefront search cards.
func ParseRatingText(raw string) *float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	val, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
	if err != nil || val <= 0 || val > 5 {
		return nil
	}
	return &val
}

// normaliseTitle composes the title (NFC) and collapses whitespace. The
// compatibility fold is not applied: it would turn ™ into "TM".
func normaliseTitle(s string) string {
	return collapseSpace(norm.NFC.String(s))
}

// normaliseText applies NFKC (folding full-width letters and ligatures),
// then trims and collapses whitespace.
func normaliseText(s string) string {
	return collapseSpace(norm.NFKC.String(s))
}

func collapseSpace(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func normalisePlatform(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
