package scraper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// Factory builds a source adapter over the given fetcher. Adapters are
// cheap to construct, so requests with fetcher overrides get a fresh
// one instead of mutating the shared instance.
type Factory func(fetcher *Fetcher) interfaces.Scraper

// Service is the adapter registry. Each source keeps a
// default-configured instance; its courtesy limiter is shared by every
// run that doesn't override fetcher settings.
type Service struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]interfaces.Scraper
	defaults  FetcherOptions
	logger    arbor.ILogger
}

// NewService creates an empty registry with the given fetcher defaults
func NewService(defaults FetcherOptions) *Service {
	return &Service{
		factories: make(map[string]Factory),
		instances: make(map[string]interfaces.Scraper),
		defaults:  defaults,
		logger:    common.GetLogger(),
	}
}

// NewDefaultService creates a registry with the built-in sources
func NewDefaultService(cfg *common.Config) *Service {
	svc := NewService(FetcherOptions{
		UserAgent:  cfg.Scraper.UserAgent,
		Delay:      cfg.Scraper.DefaultDelay,
		Timeout:    cfg.Scraper.DefaultTimeout,
		MaxRetries: cfg.Scraper.DefaultMaxRetries,
	})
	svc.RegisterFactory("medical_news_today", func(f *Fetcher) interfaces.Scraper {
		return NewMedicalNewsTodayScraper(f)
	})
	svc.RegisterFactory("healthline", func(f *Fetcher) interfaces.Scraper {
		return NewHealthlineScraper(f)
	})
	return svc
}

// RegisterFactory adds a source under name, replacing any previous
// registration. A default-configured instance is built immediately.
func (s *Service) RegisterFactory(name string, factory Factory) {
	// Each source gets its own fetcher so courtesy delays never couple
	// unrelated sites
	instance := factory(NewFetcher(s.defaults))

	s.mu.Lock()
	s.factories[name] = factory
	s.instances[name] = instance
	s.mu.Unlock()

	s.logger.Info().Str("scraper", name).Msg("Registered scraper")
}

// Register adds a pre-built adapter under its info name. Runs with
// fetcher overrides reuse the same instance.
func (s *Service) Register(scraper interfaces.Scraper) {
	name := scraper.Info().Name

	s.mu.Lock()
	s.factories[name] = func(*Fetcher) interfaces.Scraper { return scraper }
	s.instances[name] = scraper
	s.mu.Unlock()

	s.logger.Info().Str("scraper", name).Msg("Registered scraper")
}

// GetScraper returns the default-configured adapter for name
func (s *Service) GetScraper(name string) (interfaces.Scraper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scraper, ok := s.instances[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScraperNotFound, name)
	}
	return scraper, nil
}

// resolve returns the adapter to use for one run, building a fresh one
// when the request overrides fetcher settings
func (s *Service) resolve(name string, opts models.ScrapeOptions) (interfaces.Scraper, error) {
	if !opts.HasFetcherOverrides() {
		return s.GetScraper(name)
	}

	s.mu.RLock()
	factory, ok := s.factories[name]
	defaults := s.defaults
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScraperNotFound, name)
	}

	merged := defaults
	if opts.Delay > 0 {
		merged.Delay = opts.Delay
	}
	if opts.Timeout > 0 {
		merged.Timeout = opts.Timeout
	}
	if opts.MaxRetries > 0 {
		merged.MaxRetries = opts.MaxRetries
	}
	return factory(NewFetcher(merged)), nil
}

// Unspecified article caps fall back to the original service default
const defaultMaxArticles = 10

func maxArticlesOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxArticles
	}
	return n
}

// ListScrapers returns info for every registered adapter, sorted by
// name for stable listings
func (s *Service) ListScrapers() []models.ScraperInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]models.ScraperInfo, 0, len(s.instances))
	for _, scraper := range s.instances {
		infos = append(infos, scraper.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ScrapeArticles runs a full scrape against one named source
func (s *Service) ScrapeArticles(ctx context.Context, name string, opts models.ScrapeOptions, progress interfaces.ScrapeProgressFunc) ([]*models.Article, *models.ScrapeStats, error) {
	scraper, err := s.resolve(name, opts)
	if err != nil {
		return nil, nil, err
	}
	return scraper.ScrapeArticles(ctx, maxArticlesOrDefault(opts.MaxArticles), progress)
}

// ScrapeSingleArticle scrapes one URL with the named adapter
func (s *Service) ScrapeSingleArticle(ctx context.Context, name, url string, opts models.ScrapeOptions) (*models.Article, error) {
	scraper, err := s.resolve(name, opts)
	if err != nil {
		return nil, err
	}
	return scraper.ScrapeArticle(ctx, url)
}

// GetArticleLinks runs discovery only for the named adapter
func (s *Service) GetArticleLinks(ctx context.Context, name string, opts models.ScrapeOptions) ([]string, error) {
	scraper, err := s.resolve(name, opts)
	if err != nil {
		return nil, err
	}
	return scraper.GetArticleLinks(ctx, maxArticlesOrDefault(opts.MaxArticles))
}
