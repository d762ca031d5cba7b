package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/tasks"
)

// TaskHandler exposes task status, listing and revocation
type TaskHandler struct {
	manager interfaces.TaskManager
	logger  arbor.ILogger
}

// NewTaskHandler creates a task handler
func NewTaskHandler(manager interfaces.TaskManager) *TaskHandler {
	return &TaskHandler{
		manager: manager,
		logger:  common.GetLogger(),
	}
}

// ListHandler returns known tasks, newest first.
// GET /api/tasks?limit=N
func (h *TaskHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	list, err := h.manager.ListTasks(limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": list,
		"count": len(list),
	})
}

// TaskRoutes dispatches /api/tasks/{id}:
// GET returns status, DELETE requests revocation.
func (h *TaskHandler) TaskRoutes(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r, "/api/tasks")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "task id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		task, err := h.manager.GetTask(id)
		if err != nil {
			h.writeTaskError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, task)

	case http.MethodDelete:
		task, err := h.manager.Cancel(id)
		if err != nil {
			h.writeTaskError(w, err)
			return
		}
		h.logger.Info().Str("task_id", id).Str("status", string(task.Status)).Msg("Task revocation requested")
		WriteJSON(w, http.StatusOK, task)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *TaskHandler) writeTaskError(w http.ResponseWriter, err error) {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}
