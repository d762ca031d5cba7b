package scraper

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/mmcdole/gofeed"

	"github.com/ternarybob/medwire/internal/models"
)

const healthlineFeedURL = "https://www.healthline.com/rss/health-news"

var healthlineURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/health-news/[a-zA-Z0-9-]+`),
	regexp.MustCompile(`/health/[a-zA-Z0-9-]+`),
	regexp.MustCompile(`/nutrition/[a-zA-Z0-9-]+`),
}

// NewHealthlineScraper creates the Healthline adapter. Discovery goes
// through the RSS feed first; the listing-page harvest covers feed
// outages.
func NewHealthlineScraper(fetcher *Fetcher) *Adapter {
	return NewAdapter(AdapterConfig{
		Info: models.ScraperInfo{
			Name:        "healthline",
			Source:      "Healthline",
			BaseURL:     "https://www.healthline.com",
			Description: "Health news and wellness articles from Healthline",
		},
		ListingPaths: []string{"/health-news", "/"},
		URLPatterns:  healthlineURLPatterns,
		Credibility:  8.0,
		Discover:     healthlineFeedDiscovery(fetcher),
		Rules: ExtractionRules{
			TitleSelectors: []string{
				"h1",
				".css-1wxaavz",
				".article-title",
				"title",
			},
			ContentSelectors: []string{
				".article-body",
				`[data-testid="article-body"]`,
				".css-1avyp1d",
				"article",
				".content",
			},
			SummarySelectors: []string{
				".article-summary",
				".css-2fdibo",
				".excerpt",
				".lead",
			},
			AuthorSelectors: []string{
				".css-1u7tvj4",
				".byline",
				".author-name",
				`span[class*="author"]`,
			},
			DateSelectors: []string{
				"time[datetime]",
				".css-ism1gk",
				".date",
				".published",
			},
			CategorySelectors: []string{
				".category",
				".breadcrumb a",
				"nav a",
			},
		},
	}, fetcher)
}

// healthlineFeedDiscovery pulls article links out of the RSS feed in
// published order
func healthlineFeedDiscovery(fetcher *Fetcher) DiscoverFunc {
	parser := gofeed.NewParser()

	return func(ctx context.Context, maxArticles int) ([]string, error) {
		body, err := fetcher.FetchBytes(ctx, healthlineFeedURL)
		if err != nil {
			return nil, fmt.Errorf("fetch healthline feed: %w", err)
		}

		feed, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse healthline feed: %w", err)
		}

		seen := make(map[string]bool)
		var links []string
		for _, item := range feed.Items {
			if item.Link == "" || seen[item.Link] {
				continue
			}
			seen[item.Link] = true
			links = append(links, item.Link)
			if len(links) >= maxArticles {
				break
			}
		}

		if len(links) == 0 {
			return nil, fmt.Errorf("healthline feed contained no links")
		}
		return links, nil
	}
}
