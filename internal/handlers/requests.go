package handlers

// ScrapeRequest starts an asynchronous scrape task. Delay and Timeout
// are seconds; zero values fall back to the configured defaults.
type ScrapeRequest struct {
	ScraperName string  `json:"scraper_name" validate:"required"`
	MaxArticles int     `json:"max_articles" validate:"omitempty,min=1,max=100"`
	Delay       float64 `json:"delay" validate:"omitempty,min=0.1,max=5"`
	Timeout     float64 `json:"timeout" validate:"omitempty,min=5,max=120"`
	MaxRetries  int     `json:"max_retries" validate:"omitempty,min=1,max=10"`
	Persist     bool    `json:"persist"`
}

// ScrapeAllRequest starts a scrape across every registered source
type ScrapeAllRequest struct {
	MaxArticles int `json:"max_articles" validate:"omitempty,min=1,max=100"`
}

// ScrapeSingleRequest scrapes one URL synchronously
type ScrapeSingleRequest struct {
	ScraperName string `json:"scraper_name" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
}

// SummarizeArticleRequest tunes an asynchronous summarization task for
// a stored article; the article id comes from the path and the whole
// body is optional
type SummarizeArticleRequest struct {
	Style     string `json:"style" validate:"omitempty,oneof=concise detailed bullet_points"`
	Focus     string `json:"focus"`
	MaxLength int    `json:"max_length" validate:"omitempty,min=10,max=500"`
	MinLength int    `json:"min_length" validate:"omitempty,min=10,max=500"`
}

// SummarizeBatchRequest starts summarization of several stored articles
type SummarizeBatchRequest struct {
	ArticleIDs []string `json:"article_ids" validate:"required,min=1,max=50,dive,required"`
	Style      string   `json:"style" validate:"omitempty,oneof=concise detailed bullet_points"`
	Focus      string   `json:"focus"`
}

// SummarizeTextRequest summarizes raw text synchronously
type SummarizeTextRequest struct {
	Content   string `json:"content" validate:"required"`
	Style     string `json:"style" validate:"omitempty,oneof=concise detailed bullet_points"`
	Focus     string `json:"focus"`
	MaxLength int    `json:"max_length" validate:"omitempty,min=10,max=500"`
	MinLength int    `json:"min_length" validate:"omitempty,min=10,max=500"`
}
