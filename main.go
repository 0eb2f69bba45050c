package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"avito_harvester/config"
	"avito_harvester/fetch"
	"avito_harvester/httputil"
	"avito_harvester/logging"
	"avito_harvester/scheduler"
	"avito_harvester/scraper"
	"avito_harvester/storage"
	"avito_harvester/web"
)

var (
	harvestNow = flag.Bool("harvest", false, "Run an incremental harvest once and exit")
	fullNow    = flag.Bool("full", false, "Run a full harvest once and exit")
)

func main() {
	flag.Parse()

	logFile, err := logging.Setup("harvester.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting avito_harvester...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d cities", len(cfg.Cities))
	for _, city := range cfg.Cities {
		log.Printf("  - %s (%s)", city.Name, city.Slug)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.DatabaseURL))

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	pacer := fetch.NewPacer(cfg.Harvest.FetchDelay, cfg.Harvest.BatchPause, cfg.Harvest.BatchSize)

	var fetcher fetch.Fetcher
	switch cfg.Harvest.Fetcher {
	case "browser":
		browser := fetch.NewBrowserFetcher(pacer)
		defer browser.Close()
		fetcher = browser
		log.Println("Using browser fetcher")
	default:
		clients := httputil.NewClients(&cfg.Proxy)
		if cfg.Proxy.URL != "" {
			log.Printf("Proxy: %s", cfg.Proxy.URL)
		}
		fetcher = fetch.NewHTTPFetcher(clients.Scraping, pacer)
		log.Println("Using HTTP fetcher")
	}

	orchestrator := scraper.NewOrchestrator(cfg, fetcher, pgStore, sqliteStore)

	if *harvestNow || *fullNow {
		var count int
		if *fullNow {
			count, err = orchestrator.RunFull(ctx)
		} else {
			count, err = orchestrator.RunIncremental(ctx)
		}
		if err != nil {
			log.Fatalf("Harvest failed: %v", err)
		}
		log.Printf("Harvest complete: %d listings saved", count)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, orchestrator, sqliteStore)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	server := web.NewServer(cfg.Web.Addr, pgStore, sqliteStore, orchestrator)
	server.Start()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Web server shutdown error: %v", err)
	}
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks the password in a connection string before
// it reaches the logs.
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
