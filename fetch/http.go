package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// HTTPFetcher fetches pages over a plain HTTP client. It is sufficient
// for the server-rendered catalog and detail pages; the browser fetcher
// exists for deployments where the site only serves rendered markup.
type HTTPFetcher struct {
	client *http.Client
	pacer  *Pacer
}

func NewHTTPFetcher(client *http.Client, pacer *Pacer) *HTTPFetcher {
	return &HTTPFetcher{client: client, pacer: pacer}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.pacer != nil {
		if err := f.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	req.Header.Set("Referer", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{Code: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
