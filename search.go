package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"companyfix/contact"
	"companyfix/correction"
)

// -------- Options & Defaults --------

type searchOptions struct {
	Limit         int           // maximale Anzahl an Ergebnis-URLs
	MaxPages      int           // Sicherheitslimit für Seiten
	PageSizeGuess int           // ungefähre Treffer/Seite (für Offset)
	PDFOnly       bool          // nur .pdf-Links zurückgeben
	VerifyLinks   bool          // HEAD-Check der gefundenen URLs
	Workers       int           // parallele Verifizierungs-Worker
	MinDelay      time.Duration // min. Delay zwischen Seitenabfragen
	MaxDelay      time.Duration // max. Delay zwischen Seitenabfragen
}

func webSearchOptions(cfg scrapeConfig) searchOptions {
	return searchOptions{
		Limit:         cfg.MaxResults,
		MaxPages:      cfg.MaxPages,
		PageSizeGuess: 30,
		MinDelay:      cfg.MinDelay,
		MaxDelay:      cfg.MaxDelay,
		Workers:       4,
	}
}

func pdfSearchOptions(cfg scrapeConfig) searchOptions {
	opts := webSearchOptions(cfg)
	opts.PDFOnly = true
	opts.Limit = 4
	opts.MaxPages = 1
	return opts
}

var errNoResults = errors.New("no search results")

// searcher fragt den HTML-Endpunkt von DuckDuckGo ab.
type searcher struct {
	client *http.Client
	cfg    scrapeConfig
	log    *zap.Logger
}

func newSearcher(cfg scrapeConfig, client *http.Client, log *zap.Logger) *searcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &searcher{client: client, cfg: cfg, log: log}
}

// -------- Kernsuche --------

func (s *searcher) search(ctx context.Context, query string, opts searchOptions) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty search query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	var (
		results = make([]string, 0, opts.Limit)
		seen    = make(map[string]struct{}, opts.Limit*2)
	)

	for page := 0; page < opts.MaxPages && len(results) < opts.Limit; page++ {
		if page > 0 {
			// Höflichkeitspause mit Jitter
			if err := sleepJitter(ctx, opts.MinDelay, opts.MaxDelay); err != nil {
				return results, err
			}
		}

		pageURLs, err := s.searchPage(ctx, query, page*opts.PageSizeGuess, opts.PDFOnly, seen)
		if err != nil {
			if len(results) > 0 {
				s.log.Debug("search paging stopped", zap.String("query", query), zap.Error(err))
				break
			}
			return nil, err
		}
		if opts.VerifyLinks && len(pageURLs) > 0 {
			pageURLs = s.verifyLinks(ctx, pageURLs, opts.Workers)
		}
		if len(pageURLs) == 0 {
			break
		}
		for _, u := range pageURLs {
			if len(results) >= opts.Limit {
				break
			}
			results = append(results, u)
		}
	}
	s.log.Debug("search done", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func (s *searcher) searchPage(ctx context.Context, query string, offset int, pdfOnly bool, seen map[string]struct{}) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	if offset > 0 {
		params.Set("s", strconv.Itoa(offset))
	}
	searchURL := s.cfg.SearchURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var urls []string
	doc.Find(".result__a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		decoded, err := extractRealDuckDuckGoURL(href)
		if err != nil || decoded == "" {
			return
		}
		decoded = strings.TrimSpace(decoded)
		if !strings.HasPrefix(decoded, "http") {
			return
		}
		if pdfOnly && !isPDFLink(decoded) {
			return
		}
		if _, exists := seen[decoded]; exists {
			return
		}
		seen[decoded] = struct{}{}
		urls = append(urls, decoded)
	})
	return urls, nil
}

// Extrahiert aus DuckDuckGo-Umleitungs-URL die echte Ziel-URL
func extractRealDuckDuckGoURL(href string) (string, error) {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	realURL := u.Query().Get("uddg")
	if realURL == "" {
		// DDG liefert manchmal direkte Links
		return href, nil
	}
	return url.QueryUnescape(realURL)
}

func isPDFLink(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

func sleepJitter(ctx context.Context, minDelay, maxDelay time.Duration) error {
	sleep := minDelay
	if maxDelay > minDelay {
		sleep += time.Duration(rand.Int63n(int64(maxDelay - minDelay)))
	}
	if sleep <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// -------- Offizielle Website --------

// findOfficialURL sucht "<Firma> <Suffix>" und nimmt den Treffer, dessen
// Domain dem Firmennamen am nächsten kommt.
func (s *searcher) findOfficialURL(ctx context.Context, company string) (string, error) {
	query := strings.TrimSpace(company + " " + s.cfg.QuerySuffix)
	links, err := s.search(ctx, query, webSearchOptions(s.cfg))
	if err != nil {
		return "", err
	}

	candidates := rankCandidates(company, filterBlocked(links, s.cfg.BlockedHosts))
	if len(candidates) == 0 {
		return "", errNoResults
	}
	if !s.cfg.Strict {
		return candidates[0].URL, nil
	}

	for _, c := range candidates {
		ok, err := s.mentionsCompany(ctx, c.URL, company)
		if err != nil {
			s.log.Debug("strict check failed", zap.String("url", c.URL), zap.Error(err))
			continue
		}
		if ok {
			return c.URL, nil
		}
	}
	return "", fmt.Errorf("%w: no page mentions %q", errNoResults, company)
}

type urlCandidate struct {
	URL   string
	Score float64
}

// rankCandidates sortiert stabil nach Ähnlichkeit zwischen Markenname der
// Domain und Firmenname, bei Gleichstand bleibt die Suchreihenfolge.
func rankCandidates(company string, links []string) []urlCandidate {
	key := companyKey(company)
	tokens := companyTokens(company)

	out := make([]urlCandidate, 0, len(links))
	for _, l := range links {
		out = append(out, urlCandidate{URL: l, Score: domainScore(l, key, tokens)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func domainScore(link, key string, tokens []string) float64 {
	u, err := url.Parse(link)
	if err != nil || key == "" {
		return 0
	}
	brand := brandOf(u.Hostname())
	if brand == "" {
		return 0
	}

	longest := len(brand)
	if len(key) > longest {
		longest = len(key)
	}
	score := 1 - float64(levenshtein.ComputeDistance(brand, key))/float64(longest)
	if len(brand) >= 3 && strings.Contains(key, brand) {
		score += 0.5
	}
	for _, t := range tokens {
		if len(t) >= 4 && strings.Contains(brand, t) {
			score += 0.3
			break
		}
	}
	return score
}

func filterBlocked(links, blocked []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if isBlockedHost(l, blocked) || isPDFLink(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func isBlockedHost(link string, blocked []string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, b := range blocked {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if strings.HasSuffix(b, ".") {
			if strings.HasPrefix(host, b) || strings.Contains(host, "."+b) {
				return true
			}
			continue
		}
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

// mentionsCompany lädt die Seite und prüft, ob das erste prägnante Wort
// des Firmennamens im sichtbaren Text vorkommt.
func (s *searcher) mentionsCompany(ctx context.Context, link, company string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return false, err
	}

	text := strings.ToLower(correction.Normalize(contact.VisibleText(string(body))))
	for _, t := range companyTokens(company) {
		if len(t) >= 3 {
			return strings.Contains(strings.ReplaceAll(text, " ", ""), t), nil
		}
	}
	return strings.Contains(strings.ReplaceAll(text, " ", ""), companyKey(company)), nil
}

// -------- Kontaktseite --------

// findContactPage probiert die üblichen Kontaktpfade per HEAD. Der erste
// Pfad mit 2xx gewinnt, sonst bleibt die Basis-URL.
func (s *searcher) findContactPage(ctx context.Context, base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	root := u.Scheme + "://" + u.Host

	candidates := make([]string, 0, len(s.cfg.ContactPaths))
	for _, p := range s.cfg.ContactPaths {
		candidates = append(candidates, root+"/"+strings.TrimPrefix(p, "/"))
	}
	if ok := s.verifyLinks(ctx, candidates, len(candidates)); len(ok) > 0 {
		return ok[0]
	}
	return base
}

// verifyLinks prüft die URLs parallel und gibt die erreichbaren in der
// Eingabereihenfolge zurück.
func (s *searcher) verifyLinks(ctx context.Context, urls []string, workers int) []string {
	if workers < 1 {
		workers = 1
	}

	ok := make([]bool, len(urls))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				ok[idx] = s.reachable(ctx, urls[idx])
			}
		}()
	}

	// Jobs verteilen
	for i := range urls {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	verified := make([]string, 0, len(urls))
	for i, u := range urls {
		if ok[i] {
			verified = append(verified, u)
		}
	}
	return verified
}

func (s *searcher) reachable(ctx context.Context, u string) bool {
	status, err := s.status(ctx, http.MethodHead, u)
	if err != nil {
		return false
	}
	if status == http.StatusMethodNotAllowed {
		// Fallback: GET, wenn HEAD nicht erlaubt ist
		if status, err = s.status(ctx, http.MethodGet, u); err != nil {
			return false
		}
	}
	return status >= 200 && status < 300
}

func (s *searcher) status(ctx context.Context, method, u string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
