package scraper

import (
	"regexp"

	"github.com/ternarybob/medwire/internal/models"
)

var medicalNewsTodayURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/articles/\d+`),
	regexp.MustCompile(`/news/\d+`),
	regexp.MustCompile(`/articles/[a-zA-Z0-9-]+`),
	regexp.MustCompile(`/news/[a-zA-Z0-9-]+`),
}

// NewMedicalNewsTodayScraper creates the Medical News Today adapter
func NewMedicalNewsTodayScraper(fetcher *Fetcher) *Adapter {
	return NewAdapter(AdapterConfig{
		Info: models.ScraperInfo{
			Name:        "medical_news_today",
			Source:      "Medical News Today",
			BaseURL:     "https://www.medicalnewstoday.com",
			Description: "Medical and health news articles from Medical News Today",
		},
		ListingPaths: []string{"/", "/news", "/articles"},
		URLPatterns:  medicalNewsTodayURLPatterns,
		Credibility:  8.5,
		Rules: ExtractionRules{
			TitleSelectors: []string{
				"h1",
				".css-1oez2o4",
				`[data-testid="article-title"]`,
				"title",
				".article-title",
				".entry-title",
			},
			ContentSelectors: []string{
				".css-16pgf7i",
				`[data-testid="article-body"]`,
				".article-content",
				".entry-content",
				".post-content",
				"article",
				".content",
			},
			SummarySelectors: []string{
				`[data-testid="article-summary"]`,
				".css-1k8dj5p",
				".article-summary",
				".summary",
				".excerpt",
				".lead",
				".intro",
			},
			AuthorSelectors: []string{
				`[data-testid="author-name"]`,
				".css-1c5j5g7",
				".author-name",
				".byline",
				".author",
				`span[class*="author"]`,
			},
			DateSelectors: []string{
				`[data-testid="publish-date"]`,
				"time[datetime]",
				".css-1e3j7ww",
				".publish-date",
				".date",
				".published",
			},
			CategorySelectors: []string{
				`[data-testid="category"]`,
				".css-1r5nwz4",
				".category",
				".tag",
				".section",
				"nav a",
				".breadcrumb a",
			},
		},
	}, fetcher)
}
