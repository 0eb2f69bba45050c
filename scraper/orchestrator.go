package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"avito_harvester/config"
	"avito_harvester/fetch"
	"avito_harvester/models"
	"avito_harvester/storage"
)

// RecordStore is the persistence surface the orchestrator writes to.
type RecordStore interface {
	CreateListing(ctx context.Context, l *models.Listing) error
	MaxPublishDate(ctx context.Context) (*time.Time, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Text the site serves instead of a listing when it suspects a bot.
const softBlockMarker = "доступ временно заблокирован"

var errSoftBlocked = errors.New("soft block persisted after retries")

// Orchestrator drives the crawl: pagination accounting, link
// harvesting, detail extraction, validation and persistence. Execution
// is strictly sequential; the injected fetcher owns all pacing.
type Orchestrator struct {
	cfg       *config.Config
	fetcher   fetch.Fetcher
	store     RecordStore
	ops       *storage.SQLiteStore
	harvester *LinkHarvester
	dates     *DateResolver
	filters   []models.Filter
	paused    bool
}

// NewOrchestrator wires the crawl pipeline. ops may be nil when run
// accounting is not wanted.
func NewOrchestrator(cfg *config.Config, fetcher fetch.Fetcher, store RecordStore, ops *storage.SQLiteStore) *Orchestrator {
	dates := NewDateResolver()
	return &Orchestrator{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     store,
		ops:       ops,
		harvester: NewLinkHarvester(fetcher, dates),
		dates:     dates,
		filters:   models.FilterMatrix(cfg.Cities),
	}
}

func (o *Orchestrator) Filters() []models.Filter {
	return o.filters
}

func (o *Orchestrator) SetPaused(paused bool) {
	o.paused = paused
	if paused {
		log.Println("Harvester paused")
	} else {
		log.Println("Harvester resumed")
	}
}

func (o *Orchestrator) IsPaused() bool {
	return o.paused
}

// RunIncremental crawls every filter bounded by the stored publish-date
// watermark and returns the number of listings persisted.
func (o *Orchestrator) RunIncremental(ctx context.Context) (int, error) {
	if o.paused {
		log.Println("Harvester is paused, skipping incremental run")
		return 0, nil
	}

	watermark, err := o.store.MaxPublishDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("load watermark: %w", err)
	}
	log.Printf("Starting incremental run, watermark: %s", formatDate(watermark))

	total := 0
	for _, f := range o.filters {
		count, err := o.RunFilter(ctx, f, watermark, models.RunModeIncremental)
		total += count
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			log.Printf("Filter %s failed: %v", f, err)
		}
	}
	log.Printf("Incremental run complete: %d listings saved", total)
	return total, nil
}

// RunFull crawls every filter exhaustively, then purges records older
// than the run's start time.
func (o *Orchestrator) RunFull(ctx context.Context) (int, error) {
	if o.paused {
		log.Println("Harvester is paused, skipping full run")
		return 0, nil
	}

	start := time.Now()
	log.Println("Starting full run")

	total := 0
	for _, f := range o.filters {
		count, err := o.RunFilter(ctx, f, nil, models.RunModeFull)
		total += count
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			log.Printf("Filter %s failed: %v", f, err)
		}
	}

	purged, err := o.store.DeleteOlderThan(ctx, start)
	if err != nil {
		log.Printf("Purge failed: %v", err)
	} else {
		log.Printf("Full run complete: %d listings saved, %d stale records purged", total, purged)
	}
	return total, nil
}

// RunFilter crawls one filter and returns the number of listings
// persisted for it.
func (o *Orchestrator) RunFilter(ctx context.Context, f models.Filter, watermark *time.Time, mode models.RunMode) (int, error) {
	run := o.startRun(f, mode)
	o.logf(run, models.LogLevelInfo, "Starting %s harvest", mode)

	base := CatalogURL(f)

	var totalPages int
	if watermark == nil {
		totalPages = o.harvester.TotalPages(ctx, base)
	} else {
		// New activity between runs never exceeds a few catalog
		// pages, so depth is capped instead of discovered.
		totalPages = o.cfg.Harvest.IncrementalPageCap
	}
	o.logf(run, models.LogLevelInfo, "Scanning %d catalog pages", totalPages)

	links := make(map[string]*time.Time)
	for page := 1; page <= totalPages; page++ {
		pageURL := CatalogPageURL(base, page)
		m, err := o.harvester.Harvest(ctx, pageURL, watermark)
		if fetch.IsRateLimited(err) {
			o.logf(run, models.LogLevelWarn, "Rate limited on page %d, sleeping %s", page, o.cfg.Harvest.BlockSleep)
			if serr := fetch.Sleep(ctx, o.cfg.Harvest.BlockSleep); serr != nil {
				o.failRun(run)
				return 0, serr
			}
			m, err = o.harvester.Harvest(ctx, pageURL, watermark)
		}
		if err != nil {
			if ctx.Err() != nil {
				o.failRun(run)
				return 0, ctx.Err()
			}
			o.logf(run, models.LogLevelWarn, "Catalog page %d failed: %v", page, err)
			run.ErrorsCount++
			continue
		}
		for href, date := range m {
			links[href] = date
		}
	}
	run.LinksFound = len(links)
	o.logf(run, models.LogLevelInfo, "Collected %d links", len(links))

	saved := 0
	processed := 0
	for href, date := range links {
		processed++
		log.Printf("[%s] Processing listing %d of %d", f, processed, len(links))

		ok, err := o.processDetail(ctx, href, date, f)
		if err != nil {
			if ctx.Err() != nil {
				run.ListingsSaved = saved
				o.failRun(run)
				return saved, ctx.Err()
			}
			o.logf(run, models.LogLevelError, "Listing %s failed: %v", href, err)
			run.ErrorsCount++
			continue
		}
		if ok {
			saved++
		} else {
			run.Skipped++
		}
	}

	run.ListingsSaved = saved
	run.Status = models.RunStatusCompleted
	o.finishRun(run)
	o.logf(run, models.LogLevelInfo, "Completed: %d links, %d saved, %d skipped, %d errors",
		run.LinksFound, run.ListingsSaved, run.Skipped, run.ErrorsCount)
	return saved, nil
}

// processDetail fetches one detail page, validates it and persists the
// extracted listing. It returns false without an error when the page is
// rejected by validation rather than by a failure.
func (o *Orchestrator) processDetail(ctx context.Context, href string, publishDate *time.Time, f models.Filter) (bool, error) {
	url := DetailURL(href)

	doc, err := o.fetchDetail(ctx, url)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", url, err)
	}

	address := ExtractAddress(doc)
	if f.Category == models.CategoryCommercial && !AddressInScope(address, f.City) {
		log.Printf("Warning: address out of scope for %s: %q (%s)", f.City.Name, address, url)
		return false, nil
	}

	title := ExtractTitle(doc)
	if title == "" {
		log.Printf("Warning: listing has no title, skipping %s", url)
		return false, nil
	}

	listing := &models.Listing{
		ID:          uuid.New(),
		Title:       title,
		Link:        url,
		Area:        ExtractArea(doc),
		Price:       ExtractPrice(doc),
		Address:     address,
		Stations:    ExtractStations(doc),
		Description: ExtractDescription(doc),
		PostedRaw:   ExtractPostedRaw(doc),
		PublishDate: publishDate,
		City:        f.City.Name,
		Category:    f.Category.Title(),
		AdvType:     f.Type.Title(),
		Seller:      ExtractSeller(doc),
		CreatedAt:   time.Now(),
	}

	if err := o.store.CreateListing(ctx, listing); err != nil {
		return false, fmt.Errorf("persist listing: %w", err)
	}
	return true, nil
}

// fetchDetail retries the same URL through rate-limit backoff and a
// bounded number of soft-block re-fetches.
func (o *Orchestrator) fetchDetail(ctx context.Context, url string) (*goquery.Document, error) {
	softRetries := 0
	for {
		doc, err := o.fetcher.Fetch(ctx, url)
		if err != nil {
			if fetch.IsRateLimited(err) {
				log.Printf("Rate limited, sleeping %s before resuming", o.cfg.Harvest.BlockSleep)
				if serr := fetch.Sleep(ctx, o.cfg.Harvest.BlockSleep); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, err
		}

		if isSoftBlocked(doc) {
			softRetries++
			if softRetries > o.cfg.Harvest.SoftBlockRetries {
				return nil, errSoftBlocked
			}
			log.Printf("Soft block detected, retry %d/%d for %s", softRetries, o.cfg.Harvest.SoftBlockRetries, url)
			continue
		}
		return doc, nil
	}
}

func isSoftBlocked(doc *goquery.Document) bool {
	return strings.Contains(strings.ToLower(doc.Text()), softBlockMarker)
}

func (o *Orchestrator) startRun(f models.Filter, mode models.RunMode) *models.HarvestRun {
	run := &models.HarvestRun{
		Filter:    f.String(),
		Mode:      mode,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if o.ops != nil {
		id, err := o.ops.CreateRun(run)
		if err != nil {
			log.Printf("Warning: failed to create run record: %v", err)
		} else {
			run.ID = id
		}
	}
	return run
}

func (o *Orchestrator) finishRun(run *models.HarvestRun) {
	now := time.Now()
	run.FinishedAt = &now
	if o.ops != nil {
		if err := o.ops.UpdateRun(run); err != nil {
			log.Printf("Warning: failed to update run record: %v", err)
		}
	}
}

func (o *Orchestrator) failRun(run *models.HarvestRun) {
	run.Status = models.RunStatusFailed
	o.finishRun(run)
}

func (o *Orchestrator) logf(run *models.HarvestRun, level models.LogLevel, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s: %s", level, run.Filter, message)
	if o.ops != nil {
		o.ops.Log(&run.ID, level, message, run.Filter)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format("2006-01-02")
}
