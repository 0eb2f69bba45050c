package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// scriptedFetcher serves canned HTML per URL and records every fetch.
// The handler receives the 1-based call count for its URL so tests can
// script different responses across retries.
type scriptedFetcher struct {
	mu      sync.Mutex
	calls   []string
	perURL  map[string]int
	handler func(url string, call int) (string, error)
}

func newScriptedFetcher(handler func(url string, call int) (string, error)) *scriptedFetcher {
	return &scriptedFetcher{perURL: make(map[string]int), handler: handler}
}

func (f *scriptedFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.perURL[url]++
	call := f.perURL[url]
	f.mu.Unlock()

	html, err := f.handler(url, call)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *scriptedFetcher) countMatching(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, url := range f.calls {
		if strings.Contains(url, substr) {
			n++
		}
	}
	return n
}

func catalogCard(href, date string) string {
	return fmt.Sprintf(`<div data-marker="item">
		<div data-marker="item-date">%s</div>
		<a itemprop="url" href="%s">card</a>
	</div>`, date, href)
}

func catalogPage(cards ...string) string {
	return "<html><body>" + strings.Join(cards, "\n") + "</body></html>"
}

func TestHarvest_CollectsLinksWithDates(t *testing.T) {
	page := catalogPage(
		catalogCard("/moskva/pomeschenie-1", "10 января 2024"),
		catalogCard("/moskva/pomeschenie-2", "3 дня назад"),
	)
	fetcher := newScriptedFetcher(func(string, int) (string, error) {
		return page, nil
	})
	h := NewLinkHarvester(fetcher, fixedResolver(2024, time.January, 15))

	links, err := h.Harvest(context.Background(), "https://example.test/catalog", nil)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}

	want1 := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	if d := links["/moskva/pomeschenie-1"]; d == nil || !d.Equal(want1) {
		t.Fatalf("unexpected date for first link: %v", d)
	}
	want2 := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	if d := links["/moskva/pomeschenie-2"]; d == nil || !d.Equal(want2) {
		t.Fatalf("unexpected date for second link: %v", d)
	}
}

func TestHarvest_WatermarkStopsScan(t *testing.T) {
	// Cards in page order: 2024-01-10, 2024-01-06, 2024-01-01. A card
	// dated exactly at the watermark is kept; the scan stops at the
	// first one strictly before it.
	page := catalogPage(
		catalogCard("/moskva/pomeschenie-1", "10 января 2024"),
		catalogCard("/moskva/pomeschenie-2", "6 января 2024"),
		catalogCard("/moskva/pomeschenie-3", "1 января 2024"),
	)
	fetcher := newScriptedFetcher(func(string, int) (string, error) {
		return page, nil
	})
	h := NewLinkHarvester(fetcher, fixedResolver(2024, time.January, 15))

	watermark := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	links, err := h.Harvest(context.Background(), "https://example.test/catalog", &watermark)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links before the watermark stop, got %d", len(links))
	}
	if _, ok := links["/moskva/pomeschenie-3"]; ok {
		t.Fatal("card behind the watermark should not be collected")
	}
}

func TestHarvest_UndatedCardsNeverStopScan(t *testing.T) {
	page := catalogPage(
		catalogCard("/moskva/pomeschenie-1", "размещено недавно"),
		catalogCard("/moskva/pomeschenie-2", "10 января 2024"),
	)
	fetcher := newScriptedFetcher(func(string, int) (string, error) {
		return page, nil
	})
	h := NewLinkHarvester(fetcher, fixedResolver(2024, time.January, 15))

	watermark := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	links, err := h.Harvest(context.Background(), "https://example.test/catalog", &watermark)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if _, ok := links["/moskva/pomeschenie-1"]; !ok {
		t.Fatal("undated card should be collected")
	}
	if d := links["/moskva/pomeschenie-1"]; d != nil {
		t.Fatalf("undated card should carry a nil date, got %v", d)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		name string
		html string
		want int
	}{
		{
			"pagination links",
			`<html><body>
				<div data-marker="item"><a itemprop="url" href="/x">x</a></div>
				<div class="pagination-pages">
					<a href="?p=2">2</a>
					<a href="?p=3">3</a>
					<a href="?p=7">last</a>
				</div>
			</body></html>`,
			7,
		},
		{
			"no pagination with cards",
			catalogPage(catalogCard("/x", "вчера")),
			1,
		},
		{
			"empty catalog",
			"<html><body><div class=\"empty\"></div></body></html>",
			0,
		},
		{
			"pagination block without page links",
			`<html><body>
				<div data-marker="item"><a itemprop="url" href="/x">x</a></div>
				<div class="pagination-pages"><span>1</span></div>
			</body></html>`,
			1,
		},
	}

	for _, tc := range cases {
		fetcher := newScriptedFetcher(func(string, int) (string, error) {
			return tc.html, nil
		})
		h := NewLinkHarvester(fetcher, NewDateResolver())
		if got := h.TotalPages(context.Background(), "https://example.test/catalog"); got != tc.want {
			t.Fatalf("%s: expected %d pages, got %d", tc.name, tc.want, got)
		}
	}
}
