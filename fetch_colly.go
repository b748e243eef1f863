package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly"

	"companyfix/contact"
)

// fetchedPage ist eine geladene Seite samt Herkunft ("static" oder "rendered").
type fetchedPage struct {
	URL    string
	HTML   string
	Source string
}

type pageFetcher interface {
	Fetch(ctx context.Context, url string) (fetchedPage, error)
}

const (
	sourceStatic   = "static"
	sourceRendered = "rendered"
)

var errEmptyPage = errors.New("empty page")

// collyFetcher lädt Seiten ohne JavaScript.
type collyFetcher struct {
	userAgent string
	timeout   time.Duration
}

func newCollyFetcher(cfg scrapeConfig) *collyFetcher {
	return &collyFetcher{userAgent: cfg.UserAgent, timeout: 20 * time.Second}
}

func (f *collyFetcher) Fetch(ctx context.Context, u string) (fetchedPage, error) {
	if err := ctx.Err(); err != nil {
		return fetchedPage{}, err
	}

	timeout := f.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.SetRequestTimeout(timeout)

	var (
		body     []byte
		finalURL = u
		visitErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(u); err != nil && visitErr == nil {
		visitErr = err
	}
	c.Wait()
	if visitErr != nil {
		return fetchedPage{}, fmt.Errorf("fetch %s: %w", u, visitErr)
	}
	if len(body) == 0 {
		return fetchedPage{}, fmt.Errorf("fetch %s: %w", u, errEmptyPage)
	}
	return fetchedPage{URL: finalURL, HTML: string(body), Source: sourceStatic}, nil
}

// hybridFetcher lädt zuerst statisch und rendert nur, wenn der sichtbare
// Text kürzer als minText ist.
type hybridFetcher struct {
	static   pageFetcher
	rendered pageFetcher
	minText  int
}

func (h *hybridFetcher) Fetch(ctx context.Context, u string) (fetchedPage, error) {
	page, staticErr := h.static.Fetch(ctx, u)
	if staticErr == nil && len([]rune(contact.VisibleText(page.HTML))) >= h.minText {
		return page, nil
	}
	if h.rendered == nil {
		return page, staticErr
	}

	rendered, err := h.rendered.Fetch(ctx, u)
	if err != nil {
		if staticErr == nil {
			return page, nil
		}
		return fetchedPage{}, errors.Join(staticErr, err)
	}
	return rendered, nil
}
