package contact

import (
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	reEmailNormal     = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]{1,64}@[a-z0-9.\-]{2,}\.[a-z]{2,}\b`)
	reEmailFragmented = regexp.MustCompile(`(?i)([a-z0-9._%+\-]{1,64})\s+@\s*([a-z0-9.\-]{1,200}\.[a-z]{2,})|([a-z0-9._%+\-]{1,64})\s*@\s+([a-z0-9.\-]{1,200}\.[a-z]{2,})`)
	reEmailObfuscated = regexp.MustCompile(`(?i)\b([a-z0-9._+\-]{1,64})\s*(?:\[at\]|\(at\)|\{at\}|\[arroba\]|\(arroba\))\s*([a-z0-9\-]+(?:(?:\.|\s*(?:\[dot\]|\(dot\)|\[punto\]|\(punto\))\s*)[a-z0-9\-]+)+)`)
	reDotWord         = regexp.MustCompile(`(?i)\s*(?:\[dot\]|\(dot\)|\[punto\]|\(punto\)|\.)\s*`)
	reTLDTail         = regexp.MustCompile(`(?i)(@[a-z0-9.\-]+\.[a-z]{2,})`)
	reLocalOK         = regexp.MustCompile(`^[a-z0-9._+\-]{1,64}$`)
	reLabelOK         = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// asset names like logo@2x.png look like addresses
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".css", ".js", ".ico"}

var ignoredMailboxes = []string{"noreply@", "no-reply@", "donotreply@", "postmaster@", "mailer-daemon@"}

// Emails returns the distinct valid addresses in text in order of
// appearance: plain ones, ones split around the '@' and obfuscated ones
// like "info [at] empresa [dot] es".
func Emails(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(raw string) {
		clean := SanitizeEmail(raw)
		if clean == "" {
			return
		}
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	for _, m := range reEmailNormal.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range reEmailFragmented.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			add(m[1] + "@" + m[2])
		} else {
			add(m[3] + "@" + m[4])
		}
	}
	for _, m := range reEmailObfuscated.FindAllStringSubmatch(text, -1) {
		add(m[1] + "@" + reDotWord.ReplaceAllString(m[2], "."))
	}
	return out
}

// FirstEmail returns the first address of Emails, or "".
func FirstEmail(text string) string {
	if all := Emails(text); len(all) > 0 {
		return all[0]
	}
	return ""
}

// SanitizeEmail trims decoration around an address and validates it.
// It returns "" for anything that is not a plausible mailbox.
func SanitizeEmail(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, "%40", "@")
	clean = strings.TrimPrefix(clean, "mailto:")
	if i := strings.Index(clean, "?"); i != -1 {
		clean = clean[:i]
	}
	clean = strings.Trim(clean, "<> \t\n\r\"',.;:[]{}()›»")
	clean = strings.ToLower(clean)

	if strings.Count(clean, "@") != 1 || strings.ContainsAny(clean, " \t") {
		return ""
	}
	clean = truncateEmailAfterTLD(clean)

	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(clean, suffix) {
			return ""
		}
	}
	for _, box := range ignoredMailboxes {
		if strings.HasPrefix(clean, box) {
			return ""
		}
	}

	local, domain, _ := strings.Cut(clean, "@")
	if !reLocalOK.MatchString(local) || !ValidDomain(domain) {
		return ""
	}
	if _, err := mail.ParseAddress(clean); err != nil {
		return ""
	}
	return clean
}

func truncateEmailAfterTLD(email string) string {
	loc := reTLDTail.FindStringIndex(email)
	if loc != nil {
		return email[:loc[1]]
	}
	return email
}

// ValidDomain checks label syntax and that a registrable domain exists.
func ValidDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if strings.Count(domain, ".") < 1 {
		return false
	}
	labels := strings.Split(domain, ".")
	for _, l := range labels {
		if l == "" || len(l) > 63 || !reLabelOK.MatchString(l) {
			return false
		}
		if strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
	}
	if len(labels[len(labels)-1]) < 2 {
		return false
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	return err == nil && etld1 != ""
}

// RegistrableDomain returns the eTLD+1 of host, or host itself when none
// can be determined.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}
