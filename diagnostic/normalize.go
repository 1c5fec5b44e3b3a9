package diagnostic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText composes accents (NFC), drops control characters, trims and lower-cases.
// Composed and decomposed spellings of "fièvre" therefore compare equal.
func NormalizeText(text string) string {
	normed := norm.NFC.String(text)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, normed)
	normed = strings.TrimSpace(normed)
	if normed == "" {
		return ""
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Lower(language.Und).String(normed)
}

// Normalize maps a free-text phrase to its canonical symptom key.
// Matching is exact after normalization; the boolean is false for unknown phrases.
func (kb *KnowledgeBase) Normalize(text string) (SymptomKey, bool) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return "", false
	}
	// plain map lookup: no prefix, stemming or edit-distance matching
	key, ok := kb.index[normalized]
	return key, ok
}

// SplitSymptoms splits raw input on commas and returns the normalized, non-empty tokens.
func SplitSymptoms(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if token := NormalizeText(p); token != "" {
			out = append(out, token)
		}
	}
	return out
}
