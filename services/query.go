package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"rustore-scout/models"
	"rustore-scout/utils"
)

const (
	// Titles this short are searched as-is.
	shortTitleWords = 2
	minQueryWords   = 2
	minQueryChars   = 3
	minFinalChars   = 2
)

// TextTranslator turns a source-language phrase into the target language.
// Implementations never fail; they fall back to the input.
type TextTranslator interface {
	Translate(ctx context.Context, text string) string
}

// QueryBuilder turns an app title into a search string for the target storefront.
type QueryBuilder struct {
	classifier *TitleClassifier
	fillers    *FillerTable
	translator TextTranslator
	logger     *utils.Logger
}

// NewQueryBuilder creates a QueryBuilder. translator may be nil, in which
// case descriptive titles are searched untranslated.
func NewQueryBuilder(fillers *FillerTable, translator TextTranslator, logger *utils.Logger) *QueryBuilder {
	return &QueryBuilder{
		classifier: NewTitleClassifier(fillers),
		fillers:    fillers,
		translator: translator,
		logger:     logger,
	}
}

// Build classifies the title, normalizes it and translates descriptive titles.
func (b *QueryBuilder) Build(ctx context.Context, title, category string) (models.SearchQuery, models.TitleClassification) {
	cls := b.classifier.Classify(title)
	query := b.Normalize(title, category, cls)

	if cls.Kind != models.KindDescriptive || b.translator == nil {
		return models.SearchQuery{Query: query}, cls
	}

	translated := CleanTitle(b.translator.Translate(ctx, query))
	if translated == query || utf8.RuneCountInString(translated) < minFinalChars {
		return models.SearchQuery{Query: query}, cls
	}

	b.logger.Debug("[query] %q translated to %q", query, translated)
	return models.SearchQuery{Query: translated, WasTranslated: true}, cls
}

// Normalize strips filler words from the title without ever producing an
// empty query. Brand tokens and the first word are never removed.
func (b *QueryBuilder) Normalize(title, category string, cls models.TitleClassification) string {
	words := strings.Fields(title)
	cleaned := CleanTitle(title)

	if len(words) <= shortTitleWords {
		return finalGuard(cleaned, title)
	}

	protected := make(map[string]struct{}, len(cls.BrandTokens)+1)
	for _, t := range cls.BrandTokens {
		protected[strings.ToLower(t)] = struct{}{}
	}
	if first := strings.ToLower(stripPunctuation(words[0])); first != "" {
		protected[first] = struct{}{}
	}

	text := b.fillers.stripUniversal(strings.ToLower(title), protected)
	if category != "" {
		text = b.fillers.stripCategory(text, category, protected)
	}
	text = CleanTitle(text)

	if countLongWords(text) < minQueryWords || utf8.RuneCountInString(text) < minQueryChars {
		text = cleaned
	}

	return finalGuard(text, title)
}

// CleanTitle lower-cases s, strips punctuation and collapses whitespace.
// Applying it twice is a no-op.
func CleanTitle(s string) string {
	return strings.Join(strings.Fields(stripPunctuation(strings.ToLower(s))), " ")
}

func finalGuard(query, title string) string {
	if utf8.RuneCountInString(query) < minFinalChars {
		return title
	}
	return query
}

func countLongWords(s string) int {
	n := 0
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) >= 2 {
			n++
		}
	}
	return n
}
