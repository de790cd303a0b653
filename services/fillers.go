package services

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fillers.yaml
var defaultFillers []byte

type fillerFile struct {
	Version    int                 `yaml:"version"`
	Universal  []string            `yaml:"universal"`
	Categories map[string][]string `yaml:"categories"`
}

// fillerMatcher removes one filler word or phrase as a whole-word match.
type fillerMatcher struct {
	phrase string
	re     *regexp.Regexp
}

// FillerTable is the read-only set of universal and per-category filler
// words. Build it once at startup and share it.
type FillerTable struct {
	Version int

	universalWords   map[string]struct{}
	universalPhrases map[string]struct{}
	universal        []fillerMatcher
	categories       map[string][]fillerMatcher
}

// LoadFillerTable returns the table embedded in the binary.
func LoadFillerTable() (*FillerTable, error) {
	return ParseFillerTable(defaultFillers)
}

// LoadFillerTableFile reads a table from disk. An empty path falls back to
// the embedded table.
func LoadFillerTableFile(path string) (*FillerTable, error) {
	if path == "" {
		return LoadFillerTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fillers: read %q: %w", path, err)
	}
	return ParseFillerTable(data)
}

// MustLoadFillerTable is LoadFillerTable for package-level defaults and tests.
func MustLoadFillerTable() *FillerTable {
	t, err := LoadFillerTable()
	if err != nil {
		panic(err)
	}
	return t
}

// ParseFillerTable decodes a YAML filler table.
func ParseFillerTable(data []byte) (*FillerTable, error) {
	var f fillerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fillers: decode: %w", err)
	}

	t := &FillerTable{
		Version:          f.Version,
		universalWords:   make(map[string]struct{}),
		universalPhrases: make(map[string]struct{}),
		categories:       make(map[string][]fillerMatcher, len(f.Categories)),
	}

	for _, raw := range f.Universal {
		phrase := normalisePhrase(raw)
		if phrase == "" {
			continue
		}
		if strings.Contains(phrase, " ") {
			t.universalPhrases[phrase] = struct{}{}
		} else {
			t.universalWords[phrase] = struct{}{}
		}
		t.universal = append(t.universal, newFillerMatcher(phrase))
	}

	for category, words := range f.Categories {
		key := normalisePhrase(category)
		for _, raw := range words {
			phrase := normalisePhrase(raw)
			if phrase == "" {
				continue
			}
			t.categories[key] = append(t.categories[key], newFillerMatcher(phrase))
		}
	}

	return t, nil
}

// IsUniversalWord reports whether a single token is a universal filler.
func (t *FillerTable) IsUniversalWord(word string) bool {
	_, ok := t.universalWords[strings.ToLower(word)]
	return ok
}

// IsUniversalPhrase reports whether a multi-word phrase is a universal filler.
func (t *FillerTable) IsUniversalPhrase(phrase string) bool {
	_, ok := t.universalPhrases[normalisePhrase(phrase)]
	return ok
}

// HasCategory reports whether the category has its own filler list.
func (t *FillerTable) HasCategory(category string) bool {
	_, ok := t.categories[normalisePhrase(category)]
	return ok
}

// stripUniversal removes universal fillers from lower-cased text, keeping
// any single-word filler present in protected.
func (t *FillerTable) stripUniversal(text string, protected map[string]struct{}) string {
	return strip(text, t.universal, protected)
}

// stripCategory removes the category's fillers, keeping protected words.
func (t *FillerTable) stripCategory(text, category string, protected map[string]struct{}) string {
	return strip(text, t.categories[normalisePhrase(category)], protected)
}

func strip(text string, matchers []fillerMatcher, protected map[string]struct{}) string {
	for _, m := range matchers {
		if _, keep := protected[m.phrase]; keep {
			continue
		}
		text = m.re.ReplaceAllString(text, " ")
	}
	return text
}

func newFillerMatcher(phrase string) fillerMatcher {
	parts := strings.Fields(phrase)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return fillerMatcher{
		phrase: phrase,
		re:     regexp.MustCompile(`\b` + strings.Join(parts, `\s+`) + `\b`),
	}
}

func normalisePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
