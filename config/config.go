package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"avito_harvester/models"
)

type Config struct {
	DatabaseURL string
	DBPath      string
	Proxy       ProxyConfig
	Scheduler   SchedulerConfig
	Harvest     HarvestConfig
	Web         WebConfig
	Cities      []models.City
}

type ProxyConfig struct {
	URL string
}

type SchedulerConfig struct {
	// Incremental passes reuse the stored watermark; full passes rescan
	// everything and purge stale records afterwards.
	IncrementalCron string
	FullCron        string
}

type HarvestConfig struct {
	Fetcher            string        // "http" or "browser"
	FetchDelay         time.Duration // mandatory delay before every fetch
	BatchPause         time.Duration // coarse pause every BatchSize fetches
	BatchSize          int
	BlockSleep         time.Duration // single long sleep after a rate-limit signal
	SoftBlockRetries   int           // same-URL retries on soft-block pages
	IncrementalPageCap int           // catalog pages scanned when a watermark exists
}

type WebConfig struct {
	Addr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      getEnv("DB_PATH", "harvester.db"),
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Scheduler: SchedulerConfig{
			IncrementalCron: getEnv("CRON_INCREMENTAL", "0 3 * * *"),
			FullCron:        getEnv("CRON_FULL", "0 1 * * 6"),
		},
		Harvest: HarvestConfig{
			Fetcher:            getEnv("FETCHER", "http"),
			FetchDelay:         getEnvDuration("FETCH_DELAY", 6*time.Second),
			BatchPause:         getEnvDuration("BATCH_PAUSE", time.Minute),
			BatchSize:          getEnvInt("BATCH_SIZE", 500),
			BlockSleep:         getEnvDuration("BLOCK_SLEEP", time.Hour),
			SoftBlockRetries:   getEnvInt("SOFT_BLOCK_RETRIES", 3),
			IncrementalPageCap: getEnvInt("INCREMENTAL_PAGE_CAP", 3),
		},
		Web: WebConfig{
			Addr: getEnv("WEB_ADDR", ":8080"),
		},
	}

	cities, err := loadCities()
	if err != nil {
		return nil, err
	}
	cfg.Cities = cities

	return cfg, nil
}

// loadCities reads per-city YAML files from config/cities. When the
// directory is absent the built-in city set is used.
func loadCities() ([]models.City, error) {
	configDir := "config/cities"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultCities(), nil
		}
		return nil, err
	}

	var cities []models.City
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(configDir, entry.Name()))
		if err != nil {
			return nil, err
		}

		var city models.City
		if err := yaml.Unmarshal(data, &city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}

	if len(cities) == 0 {
		return defaultCities(), nil
	}
	return cities, nil
}

func defaultCities() []models.City {
	return []models.City{
		{Name: "Москва", Slug: "moskva", Pattern: "московская"},
		{Name: "Тюмень", Slug: "tyumen", Pattern: "тюменская"},
		{Name: "Екатеринбург", Slug: "ekaterinburg", Pattern: "свердловская"},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
