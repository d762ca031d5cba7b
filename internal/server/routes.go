package server

import (
	"net/http"
	"strings"
)

// registerRoutes maps API paths to handlers. Trailing-slash routes
// dispatch on path suffix and method inside the handler.
func (s *Server) registerRoutes() {
	// System
	s.router.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	s.router.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	s.router.HandleFunc("/api/status", s.app.APIHandler.StatusHandler)

	// Scrapers
	s.router.HandleFunc("/api/scrapers", s.app.ScraperHandler.ListHandler)
	s.router.HandleFunc("/api/scrapers/", s.app.ScraperHandler.ScraperRoutes)
	s.router.HandleFunc("/api/scrape", s.app.ScraperHandler.ScrapeHandler)
	s.router.HandleFunc("/api/scrape/all", s.app.ScraperHandler.ScrapeAllHandler)
	s.router.HandleFunc("/api/scrape/single", s.app.ScraperHandler.ScrapeSingleHandler)

	// Tasks
	s.router.HandleFunc("/api/tasks", s.app.TaskHandler.ListHandler)
	s.router.HandleFunc("/api/tasks/", s.app.TaskHandler.TaskRoutes)

	// Articles. {id}/summarize submits a summarization task; everything
	// else under the subtree is article CRUD.
	s.router.HandleFunc("/api/articles", s.app.ArticleHandler.ListHandler)
	s.router.HandleFunc("/api/articles/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/summarize") {
			s.app.SummarizeHandler.ArticleHandler(w, r)
			return
		}
		s.app.ArticleHandler.ArticleRoutes(w, r)
	})

	// Summarization
	s.router.HandleFunc("/api/summarize", s.app.SummarizeHandler.TextHandler)
	s.router.HandleFunc("/api/summarize/batch", s.app.SummarizeHandler.BatchHandler)
}
