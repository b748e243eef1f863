package main

import (
	"context"
	"strings"

	"companyfix/contact"
)

// Postfächer, die eine Firma als allgemeinen Kontakt angibt.
var contactMailboxes = []string{"info", "contacto", "contact", "comercial", "ventas", "atencion", "clientes", "administracion", "hola"}

// Postfächer, die selten für Anfragen gedacht sind.
var avoidedMailboxes = []string{"privacidad", "privacy", "rgpd", "gdpr", "lopd", "dpo", "protecciondatos", "rrhh", "empleo", "jobs", "webmaster", "abuse", "prensa", "press"}

// scoreEmail bewertet eine Adresse für eine Firma. siteHost ist der Host
// der Seite, auf der die Adresse gefunden wurde, und darf leer sein.
func scoreEmail(email, company, siteHost string) int {
	local, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return -1
	}
	score := 0

	// 1. Domain passt zur Firma (4 Punkte)
	if brandMatchesCompany(domain, company) {
		score += 4
	}

	// 2. gleiche Domain wie die Website (3 Punkte)
	if siteHost != "" && contact.RegistrableDomain(domain) == contact.RegistrableDomain(strings.ToLower(siteHost)) {
		score += 3
	}

	// 3. Postfach
	compactLocal := strings.NewReplacer(".", "", "-", "", "_", "").Replace(local)
	for _, box := range contactMailboxes {
		if compactLocal == box || strings.HasPrefix(compactLocal, box) {
			score += 2
			break
		}
	}
	for _, box := range avoidedMailboxes {
		if strings.Contains(compactLocal, box) {
			score -= 3
			break
		}
	}

	// 4. Firmenwort im Postfach
	for _, t := range companyTokens(company) {
		if len(t) >= 4 && strings.Contains(compactLocal, t) {
			score += 1
			break
		}
	}
	return score
}

// mxLookup wird nil übergeben, wenn keine MX-Prüfung gewünscht ist.
type mxLookup interface {
	HasMX(ctx context.Context, domain string) bool
}

// bestEmail wählt die Adresse mit der höchsten Bewertung. Bei Gleichstand
// gewinnt die frühere. Adressen ohne MX werden verworfen, wenn mx gesetzt ist.
func bestEmail(ctx context.Context, candidates []string, company, siteHost string, mx mxLookup) (string, int) {
	best, bestScore := "", -1<<30
	for _, email := range candidates {
		if mx != nil {
			_, domain, _ := strings.Cut(email, "@")
			if !mx.HasMX(ctx, domain) {
				continue
			}
		}
		if score := scoreEmail(email, company, siteHost); score > bestScore {
			best, bestScore = email, score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}
