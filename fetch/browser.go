package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher drives a real Chromium instance through Playwright and
// returns the rendered markup. The catalog only exposes listing cards
// after client-side rendering, so plain HTTP fetching sees empty pages
// on some site revisions.
type BrowserFetcher struct {
	pacer *Pacer

	mu          sync.Mutex
	pw          *playwright.Playwright
	browserCtx  playwright.BrowserContext
	page        playwright.Page
	initialized bool
}

func NewBrowserFetcher(pacer *Pacer) *BrowserFetcher {
	return &BrowserFetcher{pacer: pacer}
}

func (f *BrowserFetcher) ensureBrowser() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	var err error
	f.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	cwd, _ := os.Getwd()
	userDataDir := filepath.Join(cwd, "browser_data")
	f.browserCtx, err = f.pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	f.page, err = f.browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	f.initialized = true
	return nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.pacer != nil {
		if err := f.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := f.ensureBrowser(); err != nil {
		return nil, err
	}

	resp, err := f.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if resp != nil {
		switch {
		case resp.Status() == 429:
			return nil, &RateLimitError{Code: resp.Status()}
		case resp.Status() == 404:
			return nil, ErrNotFound
		case resp.Status() >= 400:
			return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.Status())
		}
	}

	// Listing cards arrive with a delayed render pass; poll until they
	// show up or give up and parse whatever is there.
	var content string
	for i := 0; i < 20; i++ {
		content, _ = f.page.Content()
		if strings.Contains(content, `data-marker="item"`) {
			break
		}
		f.page.WaitForTimeout(500)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

func (f *BrowserFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.page != nil {
		f.page.Close()
		f.page = nil
	}
	if f.browserCtx != nil {
		f.browserCtx.Close()
	}
	if f.pw != nil {
		f.pw.Stop()
	}
	f.initialized = false
}
