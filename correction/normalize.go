package correction

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sep is anything that ends up as a space: "S.A.", "S A", "S. A", "S,A".
const sep = `[^A-Z0-9&/]*`

var (
	reParenthesized = regexp.MustCompile(`\(.*?\)`)
	reDisallowed    = regexp.MustCompile(`[^A-Z0-9&/ ]`)

	reSAU = regexp.MustCompile(`\bS` + sep + `A` + sep + `U\b`)
	// SA not followed by U; run after reSAU
	rePlainSA = regexp.MustCompile(`\bS` + sep + `A\b`)

	// Order matters: the longer forms must be rewritten before SA and SL.
	legalSuffixes = []struct {
		re  *regexp.Regexp
		out string
	}{
		{reSAU, "SAU"},
		{regexp.MustCompile(`\bS` + sep + `L` + sep + `U\b`), "SLU"},
		{rePlainSA, "SA"},
		{regexp.MustCompile(`\bS` + sep + `L\b`), "SL"},
		{regexp.MustCompile(`\bC` + sep + `V\b`), "CV"},
		{regexp.MustCompile(`\bCOOP\b`), "COOP"},
		{regexp.MustCompile(`\bINC\b`), "INC"},
		{regexp.MustCompile(`\bLTDA\b`), "LTDA"},
		{regexp.MustCompile(`\bE` + sep + `I` + sep + `R` + sep + `L\b`), "EIRL"},
	}

	nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })
)

// Normalize maps a raw company name onto its canonical form: upper case,
// plain ASCII, no parenthesized remarks, canonical legal suffixes, and only
// letters, digits, '&', '/' and single spaces. It is total and idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	s := reParenthesized.ReplaceAllString(name, "")
	s = strings.ToUpper(s)
	// compatibility forms like ligatures decompose to lower case letters
	s = strings.ToUpper(foldASCII(s))

	// '_' counts as a word character for \b but is dropped below anyway
	s = strings.ReplaceAll(s, "_", " ")

	if strings.Contains(s, "UNIPERSONAL") {
		s = reSAU.ReplaceAllString(s, "SAU")
		s = rePlainSA.ReplaceAllString(s, "SAU")
	}
	for _, suffix := range legalSuffixes {
		s = suffix.re.ReplaceAllString(s, suffix.out)
	}

	s = reDisallowed.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
