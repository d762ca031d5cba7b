package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// DiscoverFunc overrides listing-page link harvesting for sources with
// a better discovery channel (feeds). A failing override falls back to
// the HTML harvest.
type DiscoverFunc func(ctx context.Context, maxArticles int) ([]string, error)

// AdapterConfig wires one source adapter
type AdapterConfig struct {
	Info         models.ScraperInfo
	ListingPaths []string // Relative to Info.BaseURL
	URLPatterns  []*regexp.Regexp
	Rules        ExtractionRules
	Credibility  float64
	Discover     DiscoverFunc // Optional
}

// Adapter implements interfaces.Scraper for one configured source. Site
// knowledge lives in the config; fetching, extraction and the scrape
// loop are shared.
type Adapter struct {
	cfg       AdapterConfig
	fetcher   *Fetcher
	extractor *Extractor
	logger    arbor.ILogger
}

// NewAdapter creates a source adapter over a fetcher
func NewAdapter(cfg AdapterConfig, fetcher *Fetcher) *Adapter {
	return &Adapter{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: NewExtractor(cfg.Rules),
		logger:    common.GetLogger(),
	}
}

// Info describes the adapter for registry listings
func (a *Adapter) Info() models.ScraperInfo {
	return a.cfg.Info
}

// GetArticleLinks discovers candidate article URLs in discovery order,
// deduplicated, capped at maxArticles
func (a *Adapter) GetArticleLinks(ctx context.Context, maxArticles int) ([]string, error) {
	if a.cfg.Discover != nil {
		links, err := a.cfg.Discover(ctx, maxArticles)
		if err == nil {
			return links, nil
		}
		a.logger.Warn().
			Str("scraper", a.cfg.Info.Name).
			Err(err).
			Msg("Discovery override failed, falling back to listing pages")
	}
	return a.harvestLinks(ctx, maxArticles)
}

// harvestLinks walks the listing pages collecting anchors that match
// the source's article URL patterns
func (a *Adapter) harvestLinks(ctx context.Context, maxArticles int) ([]string, error) {
	seen := make(map[string]bool)
	var links []string
	var lastErr error

	for _, path := range a.cfg.ListingPaths {
		if len(links) >= maxArticles {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listingURL := a.cfg.Info.BaseURL + path
		doc, err := a.fetcher.Fetch(ctx, listingURL)
		if err != nil {
			lastErr = err
			a.logger.Warn().
				Str("scraper", a.cfg.Info.Name).
				Str("url", listingURL).
				Err(err).
				Msg("Failed to fetch listing page")
			continue
		}

		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok {
				return true
			}
			resolved := a.resolveURL(href)
			if resolved == "" || seen[resolved] || !a.isArticleURL(resolved) {
				return true
			}
			seen[resolved] = true
			links = append(links, resolved)
			return len(links) < maxArticles
		})
	}

	if len(links) == 0 && lastErr != nil {
		return nil, fmt.Errorf("discover links for %s: %w", a.cfg.Info.Name, lastErr)
	}
	return links, nil
}

// resolveURL makes hrefs absolute against the source base URL and
// strips fragments
func (a *Adapter) resolveURL(href string) string {
	base, err := url.Parse(a.cfg.Info.BaseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host != base.Host {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

func (a *Adapter) isArticleURL(rawURL string) bool {
	for _, pattern := range a.cfg.URLPatterns {
		if pattern.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// ScrapeArticle fetches one URL and extracts an article from it
func (a *Adapter) ScrapeArticle(ctx context.Context, articleURL string) (*models.Article, error) {
	doc, err := a.fetcher.Fetch(ctx, articleURL)
	if err != nil {
		return nil, err
	}

	article, err := a.extractor.Extract(doc, articleURL)
	if err != nil {
		return nil, err
	}

	article.Source = a.cfg.Info.Source
	article.CredibilityScore = a.cfg.Credibility
	return article, nil
}

// ScrapeArticles discovers links then scrapes each one. A failing URL
// is tallied and skipped, never fatal to the run; cancellation is
// checked before every URL.
func (a *Adapter) ScrapeArticles(ctx context.Context, maxArticles int, progress interfaces.ScrapeProgressFunc) ([]*models.Article, *models.ScrapeStats, error) {
	start := time.Now()
	stats := &models.ScrapeStats{FailedURLs: []string{}}

	links, err := a.GetArticleLinks(ctx, maxArticles)
	if err != nil {
		stats.Error = err.Error()
		stats.ExecutionTime = time.Since(start)
		return nil, stats, fmt.Errorf("link discovery failed: %w", err)
	}

	stats.TotalAttempted = len(links)
	articles := make([]*models.Article, 0, len(links))

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			stats.ExecutionTime = time.Since(start)
			return articles, stats, err
		}

		article, err := a.ScrapeArticle(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				stats.ExecutionTime = time.Since(start)
				return articles, stats, ctx.Err()
			}
			stats.Failed++
			stats.FailedURLs = append(stats.FailedURLs, link)
			a.logger.Warn().
				Str("scraper", a.cfg.Info.Name).
				Str("url", link).
				Err(err).
				Msg("Failed to scrape article")
		} else {
			stats.Successful++
			articles = append(articles, article)
		}

		if progress != nil {
			progress(i+1, len(links), fmt.Sprintf("Scraped %d/%d articles", i+1, len(links)))
		}
	}

	stats.ExecutionTime = time.Since(start)
	if secs := stats.ExecutionTime.Seconds(); secs > 0 {
		stats.ArticlesPerSecond = float64(stats.Successful) / secs
	}

	a.logger.Info().
		Str("scraper", a.cfg.Info.Name).
		Int("attempted", stats.TotalAttempted).
		Int("successful", stats.Successful).
		Int("failed", stats.Failed).
		Dur("execution_time", stats.ExecutionTime).
		Msg("Scrape run completed")

	return articles, stats, nil
}
