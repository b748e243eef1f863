package main

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"companyfix/contact"
	"companyfix/correction"
)

// ---------- Firmenname zerlegen ----------

// Rechtsformen und Füllwörter tragen nichts zur Domain bei.
var companyStopwords = map[string]struct{}{
	"sa": {}, "sl": {}, "sau": {}, "slu": {}, "coop": {}, "inc": {}, "ltda": {}, "cv": {}, "eirl": {},
	"de": {}, "del": {}, "la": {}, "el": {}, "los": {}, "las": {}, "y": {}, "e": {}, "grupo": {},
}

// companyTokens liefert die kleingeschriebenen, alphanumerischen Wörter des
// normalisierten Namens ohne Rechtsform und Füllwörter.
func companyTokens(company string) []string {
	var out []string
	for _, t := range strings.Fields(strings.ToLower(correction.Normalize(company))) {
		if _, stop := companyStopwords[t]; stop {
			continue
		}
		var b strings.Builder
		for _, r := range t {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func companyKey(company string) string {
	return strings.Join(companyTokens(company), "")
}

// brandOf gibt das Label vor der öffentlichen Endung zurück, ohne Bindestriche.
func brandOf(host string) string {
	reg := contact.RegistrableDomain(host)
	brand, _, _ := strings.Cut(reg, ".")
	return strings.ReplaceAll(brand, "-", "")
}

// brandMatchesCompany: Marke steckt im Namen, ein prägnantes Wort steckt in
// der Marke oder die Marke ist das Akronym des Namens.
func brandMatchesCompany(domain, company string) bool {
	brand := brandOf(domain)
	tokens := companyTokens(company)
	if brand == "" || len(tokens) == 0 {
		return false
	}
	if len(brand) >= 3 && strings.Contains(strings.Join(tokens, ""), brand) {
		return true
	}
	for _, t := range tokens {
		if len(t) >= 4 && strings.Contains(brand, t) {
			return true
		}
	}
	if len(tokens) >= 2 {
		acr := ""
		for _, t := range tokens {
			acr += t[:1]
		}
		return brand == acr
	}
	return false
}

// ---------- MX-Prüfung mit Cache ----------

type mxChecker struct {
	servers []string
	client  *dns.Client
	cache   sync.Map
}

func newMXChecker(servers []string, timeout time.Duration) *mxChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &mxChecker{
		servers: servers,
		client:  &dns.Client{Timeout: timeout},
	}
}

// HasMX meldet, ob die Domain MX-Einträge hat. Antwortet kein Server
// endgültig, gilt die Domain als gültig und das Ergebnis wird nicht gecacht.
func (m *mxChecker) HasMX(ctx context.Context, domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	if v, ok := m.cache.Load(domain); ok {
		return v.(bool)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	for _, server := range m.servers {
		resp, _, err := m.client.ExchangeContext(ctx, msg, server)
		if err != nil || resp == nil {
			continue
		}
		// nur NOERROR und NXDOMAIN sind endgültig, SERVFAIL/REFUSED -> nächster Server
		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			m.cache.Store(domain, false)
			return false
		default:
			continue
		}
		ok := false
		for _, rr := range resp.Answer {
			if _, isMX := rr.(*dns.MX); isMX {
				ok = true
				break
			}
		}
		m.cache.Store(domain, ok)
		return ok
	}
	return true
}

func joinOutput(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
