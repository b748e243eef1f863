package correction

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPrefixLength   = 4
	DefaultMaxLengthDrift = 20
)

// Match is the outcome of looking a name up in the dictionary.
type Match struct {
	// Name is the dictionary entry when accepted, the input otherwise.
	Name     string
	Score    int
	Accepted bool
}

// Matcher looks names up in a dictionary and applies the acceptance rules.
type Matcher struct {
	dict           Dictionary
	sim            Similarity
	prefixLength   int
	maxLengthDrift int
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithSimilarity replaces the default Fuzzy similarity.
func WithSimilarity(s Similarity) MatcherOption {
	return func(m *Matcher) { m.sim = s }
}

// WithPrefixLength sets how many leading characters of a name must occur in
// a match that shares no whole word with it.
func WithPrefixLength(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.prefixLength = n
		}
	}
}

// WithMaxLengthDrift sets the exclusive upper bound of the length difference
// between a name and an accepted match.
func WithMaxLengthDrift(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.maxLengthDrift = n
		}
	}
}

func NewMatcher(dict Dictionary, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		dict:           dict,
		sim:            Fuzzy{},
		prefixLength:   DefaultPrefixLength,
		maxLengthDrift: DefaultMaxLengthDrift,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match finds the best dictionary entry for name. The weighted similarity is
// tried first; when it stays under threshold the word-set similarity decides.
// A candidate is only accepted if it also looks like the same company, so a
// rejected lookup returns name itself together with the score it reached.
func (m *Matcher) Match(name string, threshold int) Match {
	if name == "" || m.dict.Len() == 0 {
		return Match{Name: name}
	}

	best, score := m.extractOne(name, m.sim.Weighted)
	if score < threshold {
		best, score = m.extractOne(name, m.sim.TokenSet)
	}

	if score >= threshold && m.plausible(name, best) {
		return Match{Name: best, Score: score, Accepted: true}
	}
	return Match{Name: name, Score: score}
}

// ScoreMatch scores name against dict with the default settings.
func ScoreMatch(name string, dict Dictionary, threshold int) (string, int) {
	m := NewMatcher(dict).Match(name, threshold)
	return m.Name, m.Score
}

func (m *Matcher) extractOne(name string, score func(a, b string) float64) (string, int) {
	best, bestScore := "", -1
	for _, candidate := range m.dict.entries {
		s := roundScore(score(name, candidate))
		if s > bestScore {
			best, bestScore = candidate, s
			if s == 100 {
				break
			}
		}
	}
	return best, bestScore
}

func (m *Matcher) plausible(name, match string) bool {
	if !sharesWord(name, match) && !strings.Contains(match, prefix(name, m.prefixLength)) {
		return false
	}
	drift := utf8.RuneCountInString(match) - utf8.RuneCountInString(name)
	if drift < 0 {
		drift = -drift
	}
	return drift < m.maxLengthDrift
}

func sharesWord(a, b string) bool {
	words := tokenSet(b)
	for _, w := range strings.Fields(a) {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func roundScore(f float64) int {
	switch {
	case f <= 0:
		return 0
	case f >= 100:
		return 100
	}
	return int(math.Round(f))
}
