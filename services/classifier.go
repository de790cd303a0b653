package services

import (
	"strings"
	"unicode"

	"rustore-scout/models"
)

// titlePunctuation is stripped from tokens and queries.
const titlePunctuation = ",()[]:;!?'\"&–—™®©"

const trademarkGlyphs = "™®©"

// TitleClassifier decides whether a title is a brand, a description, or both.
type TitleClassifier struct {
	fillers *FillerTable
}

// NewTitleClassifier creates a TitleClassifier over the given filler table.
func NewTitleClassifier(fillers *FillerTable) *TitleClassifier {
	return &TitleClassifier{fillers: fillers}
}

// Classify splits the title into brand tokens and meaningful other tokens.
//
// A token is a brand token when it is camel-compounded ("WhatsApp"), all
// upper-case with at least two letters ("VPN"), mixes letters and digits
// ("MP3", "4K"), or carries a trademark glyph.
func (c *TitleClassifier) Classify(title string) models.TitleClassification {
	var brand, other []string

	for _, raw := range strings.Fields(title) {
		token := stripPunctuation(raw)
		if token == "" {
			continue
		}
		if strings.ContainsAny(raw, trademarkGlyphs) || isBrandToken(token) {
			brand = append(brand, token)
			continue
		}
		other = append(other, token)
	}

	other = c.dropFillers(other)

	return models.TitleClassification{
		Kind:        kindOf(brand, other),
		BrandTokens: brand,
		OtherTokens: other,
	}
}

// dropFillers removes universal fillers, including multi-word ones spread
// over adjacent tokens.
func (c *TitleClassifier) dropFillers(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && c.fillers.IsUniversalPhrase(tokens[i]+" "+tokens[i+1]) {
			i++
			continue
		}
		if c.fillers.IsUniversalWord(tokens[i]) {
			continue
		}
		kept = append(kept, tokens[i])
	}
	return kept
}

func kindOf(brand, other []string) models.TitleKind {
	switch {
	case len(brand) == 0:
		return models.KindDescriptive
	case len(other) == 0:
		return models.KindBrand
	default:
		return models.KindMixed
	}
}

func isBrandToken(token string) bool {
	return isCamelCompound(token) || isAllCaps(token) || hasLetterAndDigit(token)
}

func isCamelCompound(token string) bool {
	runes := []rune(token)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			return true
		}
	}
	return false
}

func isAllCaps(token string) bool {
	n := 0
	for _, r := range token {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
		n++
	}
	return n >= 2
}

func hasLetterAndDigit(token string) bool {
	var letter, digit bool
	for _, r := range token {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(titlePunctuation, r) {
			return -1
		}
		return r
	}, s)
}
