package correction

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// Similarity scores two strings on a 0..100 scale.
type Similarity interface {
	// Weighted tolerates word order and partial containment.
	Weighted(a, b string) float64
	// TokenSet compares the sets of words of both strings.
	TokenSet(a, b string) float64
}

// Fuzzy is the default Similarity. It works on bytes, which is exact for
// normalized names since those are plain ASCII.
type Fuzzy struct{}

var _ Similarity = Fuzzy{}

func (Fuzzy) Weighted(a, b string) float64 { return weightedRatio(a, b) }

func (Fuzzy) TokenSet(a, b string) float64 { return tokenSetRatio(a, b) }

// ratio is the normalized InDel similarity: a substitution costs as much as
// a deletion plus an insertion.
func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * float64(total-dist) / float64(total)
}

// partialRatio is the best ratio of the shorter string against any window of
// the longer one, including windows cut off at either end.
func partialRatio(a, b string) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if short == "" {
		if long == "" {
			return 100
		}
		return 0
	}

	best := 0.0
	n := len(short)
	for i := 0; i+n <= len(long); i++ {
		if r := ratio(short, long[i:i+n]); r > best {
			best = r
			if best == 100 {
				return best
			}
		}
	}
	for k := 1; k < n && k <= len(long); k++ {
		if r := ratio(short, long[:k]); r > best {
			best = r
		}
		if r := ratio(short, long[len(long)-k:]); r > best {
			best = r
		}
	}
	return best
}

func tokenSortRatio(a, b string) float64 {
	return ratio(sortedTokens(a), sortedTokens(b))
}

func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	sect := strings.Join(inter, " ")
	combinedA := joinNonEmpty(sect, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(sect, strings.Join(onlyB, " "))

	best := ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, ratio(sect, combinedA), ratio(sect, combinedB))
	}
	return best
}

func partialTokenRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	for t := range ta {
		if _, ok := tb[t]; ok {
			return 100
		}
	}
	return partialRatio(sortedTokens(a), sortedTokens(b))
}

// weightedRatio picks the most telling of the ratios above depending on how
// different the lengths are.
func weightedRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := float64(len(a)), float64(len(b))
	lenRatio := max(la, lb) / min(la, lb)

	best := ratio(a, b)
	if lenRatio < 1.5 {
		return max(best, max(tokenSortRatio(a, b), tokenSetRatio(a, b))*0.95)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	best = max(best, partialRatio(a, b)*partialScale)
	return max(best, partialTokenRatio(a, b)*0.95*partialScale)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func sortedTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
