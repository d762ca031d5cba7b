package models

import (
	"time"
)

// ScrapeOptions carry per-request overrides of the configured scraper
// defaults. Zero values mean "use the default".
type ScrapeOptions struct {
	MaxArticles int
	Delay       time.Duration
	Timeout     time.Duration
	MaxRetries  int
}

// HasFetcherOverrides reports whether the request needs a fetcher built
// from scratch instead of the shared default one
func (o ScrapeOptions) HasFetcherOverrides() bool {
	return o.Delay > 0 || o.Timeout > 0 || o.MaxRetries > 0
}

// ScrapeStats aggregates the outcome of one scrape run.
// Created fresh per orchestrator invocation and immutable once returned.
type ScrapeStats struct {
	TotalAttempted    int           `json:"total_attempted"`
	Successful        int           `json:"successful"`
	Failed            int           `json:"failed"`
	FailedURLs        []string      `json:"failed_urls"`
	ExecutionTime     time.Duration `json:"execution_time"`
	ArticlesPerSecond float64       `json:"articles_per_second"`
	Error             string        `json:"error,omitempty"` // Set only when link discovery itself failed
}

// ScraperInfo describes a registered source adapter
type ScraperInfo struct {
	Name        string `json:"name"`
	Source      string `json:"source"` // Display name injected into scraped articles
	BaseURL     string `json:"base_url"`
	Description string `json:"description"`
}

// ScrapeResult is the payload of a completed scrape task
type ScrapeResult struct {
	ScraperName string       `json:"scraper_name"`
	Articles    []*Article   `json:"articles"`
	Stats       *ScrapeStats `json:"statistics"`
}

// PersistStats tallies persistence outcomes separately from scrape
// failures: a scraped article can still fail to save.
type PersistStats struct {
	Saved    int      `json:"saved"`
	Existing int      `json:"existing"` // Already stored under the same URL
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ScrapePersistResult is the payload of a scrape-and-persist task
type ScrapePersistResult struct {
	ScraperName string       `json:"scraper_name"`
	Stats       *ScrapeStats `json:"statistics"`
	Persist     PersistStats `json:"persistence"`
}

// ScrapeAllResult aggregates per-scraper reports from a run across all
// registered adapters
type ScrapeAllResult struct {
	Reports  []*ScrapePersistResult `json:"reports"`
	Scrapers int                    `json:"scrapers"`
	Errors   []string               `json:"errors,omitempty"` // Per-scraper run-level failures
}
