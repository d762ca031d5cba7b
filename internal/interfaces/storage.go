package interfaces

import (
	"github.com/ternarybob/medwire/internal/models"
)

// ArticleStorage - interface for article persistence
type ArticleStorage interface {
	// SaveArticle persists an article. When an article with the same URL
	// already exists the stored record is returned with created=false.
	SaveArticle(article *models.Article) (stored *models.Article, created bool, err error)
	GetArticle(id string) (*models.Article, error)
	GetArticleByURL(url string) (*models.Article, error)
	ListArticles(filter *models.ArticleFilter) ([]*models.Article, error)
	UpdateArticle(article *models.Article) error
	DeleteArticle(id string) error
	CountArticles() (int, error)
}

// TaskStorage - interface for terminal task record persistence
type TaskStorage interface {
	SaveTask(task *models.Task) error
	GetTask(id string) (*models.Task, error)
	ListTasks(limit int) ([]*models.Task, error)
	DeleteTask(id string) error
}

// StorageManager aggregates the typed storage interfaces over a single
// database connection
type StorageManager interface {
	ArticleStorage() ArticleStorage
	TaskStorage() TaskStorage
	Close() error
}
