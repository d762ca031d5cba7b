package interfaces

import (
	"context"

	"github.com/ternarybob/medwire/internal/models"
)

// ScrapeProgressFunc receives per-URL completion updates during a
// scrape run. May be nil.
type ScrapeProgressFunc func(current, total int, message string)

// Scraper is one news-source adapter. Implementations know the site's
// listing pages, URL shapes and selector cascades; the orchestrator and
// service layers stay source-agnostic.
type Scraper interface {
	// Info describes the adapter for registry listings
	Info() models.ScraperInfo

	// GetArticleLinks discovers candidate article URLs from the source's
	// listing pages, deduplicated and in discovery order
	GetArticleLinks(ctx context.Context, maxArticles int) ([]string, error)

	// ScrapeArticle fetches and extracts a single article
	ScrapeArticle(ctx context.Context, url string) (*models.Article, error)

	// ScrapeArticles runs discovery then per-URL scraping with
	// partial-failure isolation. Failed URLs are recorded in stats,
	// never returned as articles.
	ScrapeArticles(ctx context.Context, maxArticles int, progress ScrapeProgressFunc) ([]*models.Article, *models.ScrapeStats, error)
}

// ScraperService - registry facade over the source adapters. Requests
// can override fetcher settings per run; adapters are rebuilt on demand
// for overridden runs so the shared courtesy limiter stays untouched.
type ScraperService interface {
	// GetScraper returns the default-configured adapter for name
	GetScraper(name string) (Scraper, error)

	// ListScrapers returns info for every registered adapter
	ListScrapers() []models.ScraperInfo

	// ScrapeArticles runs a full scrape against one named source
	ScrapeArticles(ctx context.Context, name string, opts models.ScrapeOptions, progress ScrapeProgressFunc) ([]*models.Article, *models.ScrapeStats, error)

	// ScrapeSingleArticle scrapes one URL with the named adapter
	ScrapeSingleArticle(ctx context.Context, name, url string, opts models.ScrapeOptions) (*models.Article, error)

	// GetArticleLinks runs discovery only for the named adapter
	GetArticleLinks(ctx context.Context, name string, opts models.ScrapeOptions) ([]string, error)
}
