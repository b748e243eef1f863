package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"
)

// browserFetcher rendert Seiten in einem gemeinsamen Chrome. Die Anzahl
// gleichzeitig offener Tabs ist durch tabs begrenzt.
type browserFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc

	startOnce     sync.Once
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	startErr      error

	tabs *semaphore.Weighted
	wait time.Duration
}

func newBrowserFetcher(parent context.Context, cfg scrapeConfig) *browserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !cfg.ShowBrowser),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(parent, opts...)
	return &browserFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		tabs:        semaphore.NewWeighted(int64(cfg.BrowserTabs)),
		wait:        cfg.RenderWait,
	}
}

func (b *browserFetcher) start() error {
	b.startOnce.Do(func() {
		b.browserCtx, b.cancelBrowser = chromedp.NewContext(b.allocCtx)
		// leerer Run startet den Browser
		b.startErr = chromedp.Run(b.browserCtx)
	})
	return b.startErr
}

func (b *browserFetcher) Fetch(ctx context.Context, u string) (fetchedPage, error) {
	if err := b.tabs.Acquire(ctx, 1); err != nil {
		return fetchedPage{}, err
	}
	defer b.tabs.Release(1)

	if err := b.start(); err != nil {
		return fetchedPage{}, fmt.Errorf("start browser: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html, location string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(u),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.wait),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return fetchedPage{}, fmt.Errorf("render %s: %w", u, ctx.Err())
		}
		return fetchedPage{}, fmt.Errorf("render %s: %w", u, err)
	}
	if location == "" {
		location = u
	}
	return fetchedPage{URL: location, HTML: html, Source: sourceRendered}, nil
}

func (b *browserFetcher) Close() {
	if b.cancelBrowser != nil {
		b.cancelBrowser()
	}
	b.cancelAlloc()
}
