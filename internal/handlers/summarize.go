package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/services/summarizer"
	"github.com/ternarybob/medwire/internal/tasks"
)

// SummarizeHandler submits summarization tasks and serves direct text
// summarization
type SummarizeHandler struct {
	summarizer interfaces.SummarizerService
	manager    interfaces.TaskManager
	logger     arbor.ILogger
}

// NewSummarizeHandler creates a summarize handler
func NewSummarizeHandler(svc interfaces.SummarizerService, manager interfaces.TaskManager) *SummarizeHandler {
	return &SummarizeHandler{
		summarizer: svc,
		manager:    manager,
		logger:     common.GetLogger(),
	}
}

// ArticleHandler submits an asynchronous summarization task for a
// stored article. The body tunes style/focus/length and may be empty.
// POST /api/articles/{id}/summarize
func (h *SummarizeHandler) ArticleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	articleID := strings.TrimSuffix(PathSuffix(r, "/api/articles"), "/summarize")
	if articleID == "" {
		WriteError(w, http.StatusBadRequest, "article id is required")
		return
	}

	var req SummarizeArticleRequest
	if !DecodeOptional(w, r, &req) {
		return
	}

	task, err := h.manager.Submit(tasks.JobSummarizeArticle, map[string]interface{}{
		"article_id": articleID,
		"style":      req.Style,
		"focus":      req.Focus,
		"max_length": req.MaxLength,
		"min_length": req.MinLength,
	})
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, task)
}

// BatchHandler submits an asynchronous batch summarization task.
// POST /api/summarize/batch
func (h *SummarizeHandler) BatchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req SummarizeBatchRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.manager.Submit(tasks.JobSummarizeBatch, map[string]interface{}{
		"article_ids": req.ArticleIDs,
		"style":       req.Style,
		"focus":       req.Focus,
	})
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, task)
}

// TextHandler summarizes raw text synchronously.
// POST /api/summarize
func (h *SummarizeHandler) TextHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req SummarizeTextRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.Content, &interfaces.SummarizeOptions{
		Style:     req.Style,
		Focus:     req.Focus,
		MaxLength: req.MaxLength,
		MinLength: req.MinLength,
	})
	if err != nil {
		if errors.Is(err, summarizer.ErrContentTooShort) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"summary": summary,
	})
}
