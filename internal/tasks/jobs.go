package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// Job names accepted by Submit
const (
	JobScrape           = "scrape"
	JobScrapeAndPersist = "scrape_and_persist"
	JobScrapeAll        = "scrape_all"
	JobSummarizeArticle = "summarize_article"
	JobSummarizeBatch   = "summarize_batch"
)

// Jobs wires the job handlers to their services
type Jobs struct {
	scrapers   interfaces.ScraperService
	articles   interfaces.ArticleStorage
	summarizer interfaces.SummarizerService
	logger     arbor.ILogger
}

// NewJobs creates the job set
func NewJobs(scrapers interfaces.ScraperService, articles interfaces.ArticleStorage, summarizer interfaces.SummarizerService) *Jobs {
	return &Jobs{
		scrapers:   scrapers,
		articles:   articles,
		summarizer: summarizer,
		logger:     common.GetLogger(),
	}
}

// RegisterAll registers every job handler on the manager
func (j *Jobs) RegisterAll(manager interfaces.TaskManager) error {
	handlers := map[string]interfaces.JobHandler{
		JobScrape:           j.Scrape,
		JobScrapeAndPersist: j.ScrapeAndPersist,
		JobScrapeAll:        j.ScrapeAll,
		JobSummarizeArticle: j.SummarizeArticle,
		JobSummarizeBatch:   j.SummarizeBatch,
	}
	for name, handler := range handlers {
		if err := manager.Register(name, handler); err != nil {
			return fmt.Errorf("register job %s: %w", name, err)
		}
	}
	return nil
}

// scrapeOptionsFromArgs reads per-request scraper overrides
func scrapeOptionsFromArgs(args map[string]interface{}) models.ScrapeOptions {
	opts := models.ScrapeOptions{
		MaxArticles: argInt(args, "max_articles", 0),
		MaxRetries:  argInt(args, "max_retries", 0),
	}
	if secs := argFloat(args, "delay", 0); secs > 0 {
		opts.Delay = time.Duration(secs * float64(time.Second))
	}
	if secs := argFloat(args, "timeout", 0); secs > 0 {
		opts.Timeout = time.Duration(secs * float64(time.Second))
	}
	return opts
}

// Scrape runs one source and returns the articles without persisting
func (j *Jobs) Scrape(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
	args := tc.Args()
	name := argString(args, "scraper_name", "")
	if name == "" {
		return nil, fmt.Errorf("scraper_name is required")
	}

	tc.ReportProgress(0, 0, fmt.Sprintf("Discovering articles from %s", name))

	articles, stats, err := j.scrapers.ScrapeArticles(ctx, name, scrapeOptionsFromArgs(args), tc.ReportProgress)
	if err != nil {
		return nil, err
	}

	return &models.ScrapeResult{
		ScraperName: name,
		Articles:    articles,
		Stats:       stats,
	}, nil
}

// ScrapeAndPersist runs one source and saves the survivors, tallying
// persistence outcomes separately from scrape failures
func (j *Jobs) ScrapeAndPersist(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
	args := tc.Args()
	name := argString(args, "scraper_name", "")
	if name == "" {
		return nil, fmt.Errorf("scraper_name is required")
	}

	articles, stats, err := j.scrapers.ScrapeArticles(ctx, name, scrapeOptionsFromArgs(args), tc.ReportProgress)
	if err != nil {
		return nil, err
	}

	report := &models.ScrapePersistResult{
		ScraperName: name,
		Stats:       stats,
	}
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, created, err := j.articles.SaveArticle(article)
		switch {
		case err != nil:
			report.Persist.Failed++
			report.Persist.Errors = append(report.Persist.Errors, fmt.Sprintf("%s: %v", article.URL, err))
		case created:
			report.Persist.Saved++
		default:
			report.Persist.Existing++
		}
	}

	tc.ReportProgress(stats.TotalAttempted, stats.TotalAttempted,
		fmt.Sprintf("Persisted %d new articles from %s", report.Persist.Saved, name))
	return report, nil
}

// ScrapeAll runs scrape-and-persist across every registered source
// sequentially. One source failing wholesale is recorded and the run
// moves to the next.
func (j *Jobs) ScrapeAll(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
	args := tc.Args()
	opts := scrapeOptionsFromArgs(args)
	infos := j.scrapers.ListScrapers()

	result := &models.ScrapeAllResult{Scrapers: len(infos)}

	for i, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tc.ReportProgress(i, len(infos), fmt.Sprintf("Scraping %s", info.Name))

		articles, stats, err := j.scrapers.ScrapeArticles(ctx, info.Name, opts, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", info.Name, err))
			continue
		}

		report := &models.ScrapePersistResult{ScraperName: info.Name, Stats: stats}
		for _, article := range articles {
			_, created, err := j.articles.SaveArticle(article)
			switch {
			case err != nil:
				report.Persist.Failed++
				report.Persist.Errors = append(report.Persist.Errors, fmt.Sprintf("%s: %v", article.URL, err))
			case created:
				report.Persist.Saved++
			default:
				report.Persist.Existing++
			}
		}
		result.Reports = append(result.Reports, report)
	}

	tc.ReportProgress(len(infos), len(infos), "All sources scraped")
	return result, nil
}

// SummarizeArticle generates and stores a summary for one article
func (j *Jobs) SummarizeArticle(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
	args := tc.Args()
	articleID := argString(args, "article_id", "")
	if articleID == "" {
		return nil, fmt.Errorf("article_id is required")
	}

	article, err := j.articles.GetArticle(articleID)
	if err != nil {
		return nil, err
	}

	tc.ReportProgress(0, 1, fmt.Sprintf("Summarizing %s", article.Title))

	summary, err := j.summarizer.Summarize(ctx, article.Content, summarizeOptionsFromArgs(args))
	if err != nil {
		return nil, err
	}

	article.Summary = summary
	if err := j.articles.UpdateArticle(article); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	tc.ReportProgress(1, 1, "Summary stored")
	return map[string]interface{}{
		"article_id": articleID,
		"summary":    summary,
	}, nil
}

// BatchSummaryResult tallies a summarize_batch run
type BatchSummaryResult struct {
	Summarized int               `json:"summarized"`
	Failed     int               `json:"failed"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// SummarizeBatch summarizes a set of articles with per-item isolation
func (j *Jobs) SummarizeBatch(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
	args := tc.Args()
	ids := argStringSlice(args, "article_ids")
	if len(ids) == 0 {
		return nil, fmt.Errorf("article_ids is required")
	}

	opts := summarizeOptionsFromArgs(args)
	result := &BatchSummaryResult{Errors: make(map[string]string)}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tc.ReportProgress(i, len(ids), fmt.Sprintf("Summarizing article %d/%d", i+1, len(ids)))

		if err := j.summarizeOne(ctx, id, opts); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Failed++
			result.Errors[id] = err.Error()
			j.logger.Warn().Str("article_id", id).Err(err).Msg("Batch summarization item failed")
			continue
		}
		result.Summarized++
	}

	tc.ReportProgress(len(ids), len(ids), "Batch summarization complete")
	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

func (j *Jobs) summarizeOne(ctx context.Context, id string, opts *interfaces.SummarizeOptions) error {
	article, err := j.articles.GetArticle(id)
	if err != nil {
		return err
	}
	summary, err := j.summarizer.Summarize(ctx, article.Content, opts)
	if err != nil {
		return err
	}
	article.Summary = summary
	return j.articles.UpdateArticle(article)
}

func summarizeOptionsFromArgs(args map[string]interface{}) *interfaces.SummarizeOptions {
	return &interfaces.SummarizeOptions{
		Style:     argString(args, "style", ""),
		Focus:     argString(args, "focus", ""),
		MaxLength: argInt(args, "max_length", 0),
		MinLength: argInt(args, "min_length", 0),
	}
}
