package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"companyfix/contact"
)

// =================== Tuning / Limits ===================

const (
	maxPDFBytes           = 8 << 20    // hartes Download-Limit
	maxPDFPages           = 40         // nie mehr Seiten lesen
	perPageTextLimitBytes = 256 * 1024 // Textlimit pro Seite
)

var errNotPDF = errors.New("not a PDF response")

// =================== Download with size limit ===================

// downloadPDF lädt u in eine temporäre Datei und gibt deren Pfad zurück.
// Der Aufrufer löscht die Datei.
func downloadPDF(ctx context.Context, client *http.Client, u, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf,application/octet-stream;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download %s: status %d", u, resp.StatusCode)
	}
	if cl := resp.ContentLength; cl > maxPDFBytes {
		return "", fmt.Errorf("download %s: %d bytes exceeds limit", u, cl)
	}
	// viele Server liefern octet-stream
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.HasPrefix(ct, "application/pdf") && !strings.HasPrefix(ct, "application/octet-stream") {
		return "", fmt.Errorf("download %s: %w (%s)", u, errNotPDF, ct)
	}

	out, err := os.CreateTemp("", "companyfix-*.pdf")
	if err != nil {
		return "", err
	}
	n, err := io.Copy(out, io.LimitReader(resp.Body, maxPDFBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxPDFBytes {
		err = fmt.Errorf("download %s: body exceeds limit", u)
	}
	if err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// =================== PDF text ===================

// pdfText liest den Klartext der ersten Seiten. Fehlerhafte PDFs lassen
// den Parser gelegentlich paniken, das wird zum Fehler.
func pdfText(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if total > maxPDFPages {
		total = maxPDFPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return b.String(), err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if len(content) > perPageTextLimitBytes {
			content = content[:perPageTextLimitBytes]
		}
		content = strings.ReplaceAll(content, "\u00a0", " ")
		b.WriteString(strings.Join(strings.Fields(content), " "))
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String()), nil
}

// =================== Fallback ===================

// pdfEmail sucht "<Firma> contacto filetype:pdf" und nimmt die beste
// Adresse aus den gefundenen PDFs.
func (c *contactScraper) pdfEmail(ctx context.Context, company, siteHost string) (string, string, error) {
	links, err := c.search.search(ctx, company+" contacto filetype:pdf", pdfSearchOptions(c.cfg))
	if err != nil {
		return "", "", err
	}

	for _, link := range links {
		path, err := downloadPDF(ctx, c.search.client, link, c.cfg.UserAgent)
		if err != nil {
			c.log.Debug("pdf download failed", zap.String("url", link), zap.Error(err))
			continue
		}
		text, err := pdfText(ctx, path)
		os.Remove(path)
		if err != nil {
			c.log.Debug("pdf read failed", zap.String("url", link), zap.Error(err))
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			continue
		}
		if email, _ := bestEmail(ctx, contact.Emails(text), company, siteHost, c.mx); email != "" {
			return email, link, nil
		}
	}
	return "", "", nil
}

func hostOf(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
