package models

import (
	"time"
)

// TaskStatus represents the lifecycle state of an asynchronous task
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "PENDING"
	TaskStatusProgress TaskStatus = "PROGRESS"
	TaskStatusSuccess  TaskStatus = "SUCCESS"
	TaskStatusFailure  TaskStatus = "FAILURE"
	TaskStatusRevoked  TaskStatus = "REVOKED"
)

// TaskProgress tracks how far a running task has advanced
type TaskProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// Task tracks one unit of asynchronous work through its status lifecycle:
// PENDING -> PROGRESS* -> SUCCESS | FAILURE, with REVOKED reachable from
// any non-terminal state via cancellation.
// The task manager is the exclusive writer; everyone else reads snapshots.
type Task struct {
	ID         string                 `json:"task_id" badgerhold:"key"`
	Name       string                 `json:"name"`
	Args       map[string]interface{} `json:"args,omitempty"`
	Status     TaskStatus             `json:"status"`
	Progress   TaskProgress           `json:"progress"`
	Result     interface{}            `json:"result,omitempty"` // Present only on SUCCESS
	Error      string                 `json:"error,omitempty"`  // Present only on FAILURE
	CreatedAt  time.Time              `json:"created_at"`
	StartedAt  *time.Time             `json:"started_at,omitempty"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
}

// NewTask creates a task in the PENDING state
func NewTask(id, name string, args map[string]interface{}) *Task {
	if args == nil {
		args = make(map[string]interface{})
	}
	return &Task{
		ID:        id,
		Name:      name,
		Args:      args,
		Status:    TaskStatusPending,
		CreatedAt: time.Now(),
	}
}

// MarkStarted transitions the task to PROGRESS
func (t *Task) MarkStarted() {
	t.Status = TaskStatusProgress
	now := time.Now()
	t.StartedAt = &now
}

// MarkSuccess finalizes the task with a result payload
func (t *Task) MarkSuccess(result interface{}) {
	t.Status = TaskStatusSuccess
	t.Result = result
	now := time.Now()
	t.FinishedAt = &now
}

// MarkFailure finalizes the task with an error detail
func (t *Task) MarkFailure(errMsg string) {
	t.Status = TaskStatusFailure
	t.Error = errMsg
	now := time.Now()
	t.FinishedAt = &now
}

// MarkRevoked finalizes the task as cancelled
func (t *Task) MarkRevoked() {
	t.Status = TaskStatusRevoked
	now := time.Now()
	t.FinishedAt = &now
}

// IsTerminal returns true once the task has reached a final state
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusSuccess ||
		t.Status == TaskStatusFailure ||
		t.Status == TaskStatusRevoked
}

// Clone returns a copy safe to hand to readers while the manager keeps
// mutating its own instance
func (t *Task) Clone() *Task {
	clone := *t
	if t.Args != nil {
		args := make(map[string]interface{}, len(t.Args))
		for k, v := range t.Args {
			args[k] = v
		}
		clone.Args = args
	}
	return &clone
}
