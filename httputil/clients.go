package httputil

import (
	"net/http"
	"net/url"
	"time"

	"avito_harvester/config"
)

type Clients struct {
	Scraping *http.Client // optionally proxied, for the target site
	API      *http.Client // direct, for everything else
}

// NewClients builds the shared HTTP clients. The scraping client routes
// through the configured proxy when one is set and follows redirects,
// since the site redirects relocated listings to their new URLs.
func NewClients(proxyCfg *config.ProxyConfig) *Clients {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	scraping := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 30 * time.Second},
	}
}
