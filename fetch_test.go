package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned pages by URL and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	source string
	err    error
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (fetchedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	if f.err != nil {
		return fetchedPage{}, f.err
	}
	html, ok := f.pages[u]
	if !ok {
		return fetchedPage{}, fmt.Errorf("fetch %s: not found", u)
	}
	return fetchedPage{URL: u, HTML: html, Source: f.source}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestCollyFetcher(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>Hola</p></body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newCollyFetcher(testScrapeConfig(""))
	page, err := f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.Equal(t, sourceStatic, page.Source)
	require.Contains(t, page.HTML, "Hola")
	require.Equal(t, srv.URL+"/ok", page.URL)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, srv.URL+"/ok")
	require.ErrorIs(t, err, context.Canceled)
}

func TestHybridFetcher(t *testing.T) {
	t.Parallel()

	long := "<html><body><p>" + strings.Repeat("texto visible ", 50) + "</p></body></html>"
	short := "<html><body><div id=app></div></body></html>"

	t.Run("static is enough", func(t *testing.T) {
		static := &fakeFetcher{pages: map[string]string{"u": long}, source: sourceStatic}
		rendered := &fakeFetcher{pages: map[string]string{"u": long}, source: sourceRendered}
		h := &hybridFetcher{static: static, rendered: rendered, minText: 500}

		page, err := h.Fetch(context.Background(), "u")
		require.NoError(t, err)
		require.Equal(t, sourceStatic, page.Source)
		require.Zero(t, rendered.callCount())
	})

	t.Run("short text is rendered", func(t *testing.T) {
		static := &fakeFetcher{pages: map[string]string{"u": short}, source: sourceStatic}
		rendered := &fakeFetcher{pages: map[string]string{"u": long}, source: sourceRendered}
		h := &hybridFetcher{static: static, rendered: rendered, minText: 500}

		page, err := h.Fetch(context.Background(), "u")
		require.NoError(t, err)
		require.Equal(t, sourceRendered, page.Source)
	})

	t.Run("render failure keeps static page", func(t *testing.T) {
		static := &fakeFetcher{pages: map[string]string{"u": short}, source: sourceStatic}
		rendered := &fakeFetcher{err: errors.New("chrome missing")}
		h := &hybridFetcher{static: static, rendered: rendered, minText: 500}

		page, err := h.Fetch(context.Background(), "u")
		require.NoError(t, err)
		require.Equal(t, short, page.HTML)
	})

	t.Run("both fail", func(t *testing.T) {
		static := &fakeFetcher{err: errors.New("refused")}
		rendered := &fakeFetcher{err: errors.New("chrome missing")}
		h := &hybridFetcher{static: static, rendered: rendered, minText: 500}

		_, err := h.Fetch(context.Background(), "u")
		require.ErrorContains(t, err, "refused")
		require.ErrorContains(t, err, "chrome missing")
	})

	t.Run("no browser", func(t *testing.T) {
		static := &fakeFetcher{pages: map[string]string{"u": short}, source: sourceStatic}
		h := &hybridFetcher{static: static, minText: 500}

		page, err := h.Fetch(context.Background(), "u")
		require.NoError(t, err)
		require.Equal(t, sourceStatic, page.Source)
	})
}
