package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
	badgerstorage "github.com/ternarybob/medwire/internal/storage/badger"
)

// ArticleHandler exposes stored articles
type ArticleHandler struct {
	articles interfaces.ArticleStorage
	logger   arbor.ILogger
}

// NewArticleHandler creates an article handler
func NewArticleHandler(articles interfaces.ArticleStorage) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		logger:   common.GetLogger(),
	}
}

// ListHandler lists stored articles with query-string filters.
// GET /api/articles?source=&category=&search=&missing_summary=&limit=&offset=
func (h *ArticleHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	filter := &models.ArticleFilter{
		Source:   q.Get("source"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Search:   q.Get("search"),
		Limit:    50,
	}
	if raw := q.Get("min_credibility"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			filter.MinCredibility = v
		}
	}
	if q.Get("missing_summary") == "true" {
		filter.MissingSummary = true
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	list, err := h.articles.ListArticles(filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"articles": list,
		"count":    len(list),
	})
}

// ArticleRoutes dispatches /api/articles/{id}: GET and DELETE
func (h *ArticleHandler) ArticleRoutes(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r, "/api/articles")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "article id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		article, err := h.articles.GetArticle(id)
		if err != nil {
			h.writeArticleError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, article)

	case http.MethodDelete:
		if err := h.articles.DeleteArticle(id); err != nil {
			h.writeArticleError(w, err)
			return
		}
		h.logger.Info().Str("article_id", id).Msg("Article deleted")
		WriteSuccess(w, "article deleted")

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ArticleHandler) writeArticleError(w http.ResponseWriter, err error) {
	if errors.Is(err, badgerstorage.ErrArticleNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}
