package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
	"github.com/ternarybob/medwire/internal/scraper"
	"github.com/ternarybob/medwire/internal/tasks"
)

// ScraperHandler exposes the scraper registry and scrape task submission
type ScraperHandler struct {
	scrapers interfaces.ScraperService
	manager  interfaces.TaskManager
	logger   arbor.ILogger
}

// NewScraperHandler creates a scraper handler
func NewScraperHandler(scrapers interfaces.ScraperService, manager interfaces.TaskManager) *ScraperHandler {
	return &ScraperHandler{
		scrapers: scrapers,
		manager:  manager,
		logger:   common.GetLogger(),
	}
}

// ListHandler returns the registered scrapers.
// GET /api/scrapers
func (h *ScraperHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"scrapers": h.scrapers.ListScrapers(),
	})
}

// ScraperRoutes dispatches /api/scrapers/{name}/links.
// GET runs synchronous link discovery for one source.
func (h *ScraperHandler) ScraperRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(PathSuffix(r, "/api/scrapers"), "/")
	if len(parts) != 2 || parts[1] != "links" {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := models.ScrapeOptions{}
	if raw := r.URL.Query().Get("max_articles"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			opts.MaxArticles = n
		}
	}

	links, err := h.scrapers.GetArticleLinks(r.Context(), parts[0], opts)
	if err != nil {
		if errors.Is(err, scraper.ErrScraperNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"scraper": parts[0],
		"links":   links,
		"count":   len(links),
	})
}

// ScrapeHandler submits an asynchronous scrape task.
// POST /api/scrape
func (h *ScraperHandler) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScrapeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	// Reject unknown scrapers at submission time rather than inside the task
	if _, err := h.scrapers.GetScraper(req.ScraperName); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	job := tasks.JobScrape
	if req.Persist {
		job = tasks.JobScrapeAndPersist
	}

	task, err := h.manager.Submit(job, map[string]interface{}{
		"scraper_name": req.ScraperName,
		"max_articles": req.MaxArticles,
		"delay":        req.Delay,
		"timeout":      req.Timeout,
		"max_retries":  req.MaxRetries,
	})
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.logger.Info().Str("task_id", task.ID).Str("scraper", req.ScraperName).Msg("Scrape task submitted")
	WriteJSON(w, http.StatusAccepted, task)
}

// ScrapeAllHandler submits a scrape across all registered sources.
// POST /api/scrape/all
func (h *ScraperHandler) ScrapeAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScrapeAllRequest
	if !DecodeOptional(w, r, &req) {
		return
	}

	task, err := h.manager.Submit(tasks.JobScrapeAll, map[string]interface{}{
		"max_articles": req.MaxArticles,
	})
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, task)
}

// ScrapeSingleHandler scrapes one URL synchronously.
// POST /api/scrape/single
func (h *ScraperHandler) ScrapeSingleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScrapeSingleRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	article, err := h.scrapers.ScrapeSingleArticle(r.Context(), req.ScraperName, req.URL, models.ScrapeOptions{})
	if err != nil {
		status := http.StatusBadGateway
		var extErr *scraper.ExtractionError
		switch {
		case errors.Is(err, scraper.ErrScraperNotFound):
			status = http.StatusNotFound
		case errors.As(err, &extErr):
			status = http.StatusUnprocessableEntity
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, article)
}
