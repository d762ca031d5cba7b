package interfaces

import (
	"context"

	"github.com/ternarybob/medwire/internal/models"
)

// TaskContext is handed to a running job handler. Progress updates and
// cancellation checks go through it rather than the manager directly.
type TaskContext interface {
	// TaskID returns the id of the running task
	TaskID() string

	// Args returns the submission arguments
	Args() map[string]interface{}

	// ReportProgress publishes current/total/message on the task record
	ReportProgress(current, total int, message string)

	// Cancelled reports whether revocation was requested. Handlers check
	// this at work-unit boundaries and return ctx.Err() to stop.
	Cancelled() bool
}

// JobHandler executes one named job. The returned value becomes the task
// result on success; a returned error finalizes the task as FAILURE,
// except context.Canceled which finalizes as REVOKED.
type JobHandler func(ctx context.Context, tc TaskContext) (interface{}, error)

// TaskManager - submission, tracking and cancellation of async tasks
type TaskManager interface {
	// Register binds a job name to its handler. Submitting an
	// unregistered name fails at submission time.
	Register(name string, handler JobHandler) error

	// Submit enqueues a task and returns it in PENDING state
	Submit(name string, args map[string]interface{}) (*models.Task, error)

	// GetTask returns a snapshot of the task, checking live state first
	// and falling back to persisted terminal records
	GetTask(id string) (*models.Task, error)

	// ListTasks returns snapshots of known tasks, newest first
	ListTasks(limit int) ([]*models.Task, error)

	// Cancel requests revocation. Terminal tasks are left untouched and
	// their current status is returned.
	Cancel(id string) (*models.Task, error)

	// Start launches the worker pool
	Start() error

	// Stop drains the pool and waits for in-flight tasks
	Stop(ctx context.Context) error
}
