package badger

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// ErrArticleNotFound is returned for lookups of unknown article ids or URLs
var ErrArticleNotFound = errors.New("article not found")

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates an ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// SaveArticle persists an article, treating URL as the identity key.
// When the URL is already stored the existing record comes back with
// created=false and nothing is written.
func (s *ArticleStorage) SaveArticle(article *models.Article) (*models.Article, bool, error) {
	if err := article.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid article: %w", err)
	}

	existing, err := s.GetArticleByURL(article.URL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrArticleNotFound) {
		return nil, false, err
	}

	if article.ID == "" {
		article.ID = common.NewArticleID()
	}
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Insert(article.ID, article); err != nil {
		return nil, false, fmt.Errorf("failed to save article: %w", err)
	}

	s.logger.Debug().Str("article_id", article.ID).Str("url", article.URL).Msg("Article saved")
	return article, true, nil
}

func (s *ArticleStorage) GetArticle(id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(id, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) GetArticleByURL(url string) (*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, badgerhold.Where("URL").Eq(url).Limit(1)); err != nil {
		return nil, fmt.Errorf("failed to find article by url: %w", err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, url)
	}
	return &articles[0], nil
}

func (s *ArticleStorage) ListArticles(filter *models.ArticleFilter) ([]*models.Article, error) {
	query := badgerhold.Where("ID").Ne("")

	if filter != nil {
		if filter.Source != "" {
			query = query.And("Source").Eq(filter.Source)
		}
		if filter.Category != "" {
			query = query.And("Category").Eq(filter.Category)
		}
		if filter.Author != "" {
			query = query.And("Author").Eq(filter.Author)
		}
		if filter.MinCredibility > 0 {
			query = query.And("CredibilityScore").Ge(filter.MinCredibility)
		}
		if filter.MissingSummary {
			query = query.And("Summary").Eq("")
		}
		if filter.Search != "" {
			regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(strings.TrimSpace(filter.Search)))
			if err != nil {
				return nil, fmt.Errorf("invalid search query: %w", err)
			}
			// A chained .Or would union a standalone query and bypass the
			// other filters, so the title-or-content test stays a single
			// criterion inside the AND chain
			query = query.And("ID").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
				article, ok := ra.Record().(*models.Article)
				if !ok {
					return false, nil
				}
				return regex.MatchString(article.Title) || regex.MatchString(article.Content), nil
			})
		}
		if filter.Offset > 0 {
			query = query.Skip(filter.Offset)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
	}

	var articles []models.Article
	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) UpdateArticle(article *models.Article) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}
	if err := article.Validate(); err != nil {
		return fmt.Errorf("invalid article: %w", err)
	}

	article.UpdatedAt = time.Now()
	if err := s.db.Store().Update(article.ID, article); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", ErrArticleNotFound, article.ID)
		}
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) DeleteArticle(id string) error {
	if err := s.db.Store().Delete(id, &models.Article{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", ErrArticleNotFound, id)
		}
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) CountArticles() (int, error) {
	count, err := s.db.Store().Count(&models.Article{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}
