package correction

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultFallbackThreshold = 85
	minFallbackWordLength    = 4
)

// CorrectByParts matches every word of a multi-word name on its own and
// replaces the words scoring strictly above threshold. Short words and
// single-word names are kept as they are.
func (m *Matcher) CorrectByParts(name string, threshold int) string {
	words := strings.Fields(name)
	if len(words) < 2 {
		return name
	}

	for i, w := range words {
		if utf8.RuneCountInString(w) < minFallbackWordLength {
			continue
		}
		if match := m.Match(w, threshold); match.Score > threshold {
			words[i] = match.Name
		}
	}
	return strings.Join(words, " ")
}
