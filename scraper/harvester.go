package scraper

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"avito_harvester/fetch"
)

// LinkHarvester walks catalog pages and collects detail-page links with
// their publish dates.
type LinkHarvester struct {
	fetcher fetch.Fetcher
	dates   *DateResolver
}

func NewLinkHarvester(fetcher fetch.Fetcher, dates *DateResolver) *LinkHarvester {
	return &LinkHarvester{fetcher: fetcher, dates: dates}
}

// Harvest fetches one catalog page and returns relative detail URLs
// keyed by publish date. When a watermark is set, scanning stops at the
// first card dated strictly before it and only the entries collected so
// far are returned; cards without a parseable date never trigger the
// stop. A fetch failure yields an empty map together with the error so
// the caller can decide whether to back off.
func (h *LinkHarvester) Harvest(ctx context.Context, pageURL string, watermark *time.Time) (map[string]*time.Time, error) {
	links := make(map[string]*time.Time)

	doc, err := h.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return links, err
	}

	doc.Find("div[data-marker=item]").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		date := h.dates.Resolve(card.Find("div[data-marker=item-date]").First().Text())
		if watermark != nil && date != nil && date.Before(*watermark) {
			return false
		}
		href, ok := card.Find("a[itemprop=url]").First().Attr("href")
		if !ok {
			return true
		}
		if href = strings.TrimSpace(href); href != "" {
			// Duplicate links collapse last-write-wins; the site
			// repeats promoted ads across pages.
			links[href] = date
		}
		return true
	})

	return links, nil
}

// TotalPages discovers the catalog depth from the pagination control of
// the first results page: the highest page number referenced by a
// pagination link. A control without page links means a single page; no
// control and no listing cards means an empty catalog.
func (h *LinkHarvester) TotalPages(ctx context.Context, baseURL string) int {
	doc, err := h.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		log.Printf("Failed to discover page count for %s: %v", baseURL, err)
		return 0
	}

	pagination := doc.Find("div.pagination-pages")
	if pagination.Length() == 0 {
		if doc.Find("div[data-marker=item]").Length() > 0 {
			return 1
		}
		return 0
	}

	total := 1
	pagination.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if n := pageParam(href); n > total {
			total = n
		}
	})
	return total
}
