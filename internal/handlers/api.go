package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
)

// APIHandler serves version, health and status endpoints
type APIHandler struct {
	articles   interfaces.ArticleStorage
	scrapers   interfaces.ScraperService
	summarizer interfaces.SummarizerService
	scheduler  interfaces.SchedulerService
	startedAt  time.Time
	logger     arbor.ILogger
}

// NewAPIHandler creates an API handler
func NewAPIHandler(articles interfaces.ArticleStorage, scrapers interfaces.ScraperService, summarizer interfaces.SummarizerService, scheduler interfaces.SchedulerService) *APIHandler {
	return &APIHandler{
		articles:   articles,
		scrapers:   scrapers,
		summarizer: summarizer,
		scheduler:  scheduler,
		startedAt:  time.Now(),
		logger:     common.GetLogger(),
	}
}

// VersionHandler returns build information.
// GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// HealthHandler is a liveness probe.
// GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// StatusHandler reports component status.
// GET /api/status
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	count, err := h.articles.CountArticles()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count articles")
		count = -1
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":               common.GetVersion(),
		"uptime":                time.Since(h.startedAt).String(),
		"articles":              count,
		"scrapers":              h.scrapers.ListScrapers(),
		"summarizer_configured": h.summarizer.IsConfigured(),
		"scheduler_running":     h.scheduler.IsRunning(),
		"scheduled_jobs":        h.scheduler.GetJobStatuses(),
	})
}
