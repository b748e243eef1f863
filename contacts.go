package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"companyfix/contact"
)

// companyRow ist eine Eingabezeile des Kontakt-Laufs.
type companyRow struct {
	Identifier string
	Company    string
	URL        string
}

// contactResult ist genau eine Ausgabezeile je Eingabezeile. Err ist bei
// Erfolg leer.
type contactResult struct {
	companyRow
	ContactURL string
	Address    string
	Phone      string
	Email      string
	Source     string
	Err        string
}

type contactScraper struct {
	search *searcher
	fetch  pageFetcher
	mx     mxLookup
	cfg    scrapeConfig
	log    *zap.Logger
}

// scrapeAll verarbeitet alle Zeilen mit begrenzter Parallelität. Das
// Ergebnis hat dieselbe Länge und Reihenfolge wie rows.
func (c *contactScraper) scrapeAll(ctx context.Context, rows []companyRow) []contactResult {
	out := make([]contactResult, len(rows))

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			out[i] = c.scrapeSafe(ctx, row)
			if out[i].Err != "" {
				c.log.Warn("contact scrape failed",
					zap.String("company", row.Company), zap.String("error", out[i].Err))
			} else {
				c.log.Info("contact scraped",
					zap.String("company", row.Company),
					zap.String("email", out[i].Email),
					zap.String("source", out[i].Source))
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *contactScraper) scrapeSafe(ctx context.Context, row companyRow) (res contactResult) {
	res.companyRow = row
	defer func() {
		if r := recover(); r != nil {
			res = contactResult{companyRow: row, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, c.cfg.TaskTimeout)
	defer cancel()

	res, err := c.scrapeOne(taskCtx, row)
	if err != nil {
		return contactResult{companyRow: res.companyRow, Err: err.Error()}
	}
	return res
}

func (c *contactScraper) scrapeOne(ctx context.Context, row companyRow) (contactResult, error) {
	res := contactResult{companyRow: row}

	if strings.TrimSpace(res.URL) == "" {
		if strings.TrimSpace(row.Company) == "" {
			return res, fmt.Errorf("no company name")
		}
		u, err := c.search.findOfficialURL(ctx, row.Company)
		if err != nil {
			return res, fmt.Errorf("find url: %w", err)
		}
		res.URL = u
	}

	res.ContactURL = c.search.findContactPage(ctx, res.URL)
	page, err := c.fetch.Fetch(ctx, res.ContactURL)
	if err != nil && res.ContactURL != res.URL {
		res.ContactURL = res.URL
		page, err = c.fetch.Fetch(ctx, res.URL)
	}
	if err != nil {
		return res, err
	}

	details := contact.Extract(page.HTML)
	sources := []string{page.Source}
	if res.ContactURL != res.URL && (details.Address == "" || details.Phone == "" || details.Email == "") {
		if home, err := c.fetch.Fetch(ctx, res.URL); err == nil {
			details = details.Merge(contact.Extract(home.HTML))
			sources = append(sources, home.Source)
		}
	}

	siteHost := hostOf(page.URL)
	res.Address = details.Address
	res.Phone = details.Phone
	res.Email, _ = bestEmail(ctx, details.Emails, row.Company, siteHost, c.mx)

	if res.Email == "" && c.cfg.PDFFallback {
		email, _, err := c.pdfEmail(ctx, row.Company, siteHost)
		if err != nil {
			c.log.Debug("pdf fallback failed", zap.String("company", row.Company), zap.Error(err))
		}
		if email != "" {
			res.Email = email
			sources = append(sources, "pdf")
		}
	}
	res.Source = joinSources(sources)
	return res, nil
}

func joinSources(sources []string) string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range sources {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return strings.Join(out, "+")
}
