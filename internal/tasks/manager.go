package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// ErrTaskNotFound is returned when a task id is neither live nor persisted
var ErrTaskNotFound = errors.New("task not found")

// ErrUnknownJob is returned when submitting a name with no registered handler
var ErrUnknownJob = errors.New("unknown job")

const submitQueueSize = 256

// entry pairs a live task with the cancel function for its run context
type entry struct {
	task   *models.Task
	cancel context.CancelFunc
}

// Manager runs submitted tasks on a fixed worker pool and is the single
// writer of task state. Terminal tasks are persisted so their status
// survives a restart, then dropped from the live map; reads fall back
// to storage.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string]interfaces.JobHandler
	entries  map[string]*entry

	queue   chan string
	workers int
	wg      sync.WaitGroup

	baseCtx context.Context
	stop    context.CancelFunc
	started bool

	storage interfaces.TaskStorage // Optional
	logger  arbor.ILogger
}

// NewManager creates a task manager with the given worker count.
// Storage may be nil; terminal tasks are then held in memory only.
func NewManager(workers int, storage interfaces.TaskStorage) *Manager {
	if workers < 1 {
		workers = 1
	}
	baseCtx, stop := context.WithCancel(context.Background())
	return &Manager{
		handlers: make(map[string]interfaces.JobHandler),
		entries:  make(map[string]*entry),
		queue:    make(chan string, submitQueueSize),
		workers:  workers,
		baseCtx:  baseCtx,
		stop:     stop,
		storage:  storage,
		logger:   common.GetLogger(),
	}
}

// Register binds a job name to its handler
func (m *Manager) Register(name string, handler interfaces.JobHandler) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if handler == nil {
		return fmt.Errorf("job handler is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handlers[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}
	m.handlers[name] = handler
	return nil
}

// Start launches the worker pool
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("task manager already started")
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	m.logger.Info().Int("workers", m.workers).Msg("Task manager started")
	return nil
}

// Stop cancels in-flight tasks and waits for workers, bounded by ctx
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	m.mu.Unlock()

	m.stop()
	close(m.queue)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Msg("Task manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task manager shutdown timed out: %w", ctx.Err())
	}
}

// Submit enqueues a task and returns a PENDING snapshot of it
func (m *Manager) Submit(name string, args map[string]interface{}) (*models.Task, error) {
	m.mu.Lock()
	if _, ok := m.handlers[name]; !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !m.started {
		m.mu.Unlock()
		return nil, fmt.Errorf("task manager is not running")
	}

	task := models.NewTask(common.NewTaskID(), name, args)
	_, cancel := context.WithCancel(m.baseCtx)
	m.entries[task.ID] = &entry{task: task, cancel: cancel}
	m.mu.Unlock()

	select {
	case m.queue <- task.ID:
	default:
		m.mu.Lock()
		delete(m.entries, task.ID)
		m.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("task queue is full")
	}

	m.logger.Info().Str("task_id", task.ID).Str("job", name).Msg("Task submitted")
	return task.Clone(), nil
}

// GetTask returns a snapshot, checking live state before persisted records
func (m *Manager) GetTask(id string) (*models.Task, error) {
	m.mu.RLock()
	if e, ok := m.entries[id]; ok {
		snapshot := e.task.Clone()
		m.mu.RUnlock()
		return snapshot, nil
	}
	m.mu.RUnlock()

	if m.storage != nil {
		task, err := m.storage.GetTask(id)
		if err == nil {
			return task, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// ListTasks returns snapshots of known tasks, newest first. Live tasks
// shadow their persisted counterparts.
func (m *Manager) ListTasks(limit int) ([]*models.Task, error) {
	m.mu.RLock()
	tasks := make([]*models.Task, 0, len(m.entries))
	seen := make(map[string]bool, len(m.entries))
	for id, e := range m.entries {
		tasks = append(tasks, e.task.Clone())
		seen[id] = true
	}
	m.mu.RUnlock()

	if m.storage != nil {
		stored, err := m.storage.ListTasks(0)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Failed to list persisted tasks")
		} else {
			for _, task := range stored {
				if !seen[task.ID] {
					tasks = append(tasks, task)
				}
			}
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// Cancel requests revocation. Pending tasks are finalized immediately;
// running ones get their context cancelled and are finalized by their
// worker at the next checkpoint. Terminal tasks are left untouched.
func (m *Manager) Cancel(id string) (*models.Task, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		if m.storage != nil {
			if task, err := m.storage.GetTask(id); err == nil {
				// Already terminal and persisted, nothing to revoke
				return task, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	if e.task.IsTerminal() {
		snapshot := e.task.Clone()
		m.mu.Unlock()
		return snapshot, nil
	}

	if e.task.Status == models.TaskStatusPending {
		e.task.MarkRevoked()
		snapshot := e.task.Clone()
		m.mu.Unlock()
		e.cancel()
		m.persist(snapshot)
		m.logger.Info().Str("task_id", id).Msg("Pending task revoked")
		return snapshot, nil
	}

	// Running: flag the context, the worker finalizes
	snapshot := e.task.Clone()
	m.mu.Unlock()
	e.cancel()
	m.logger.Info().Str("task_id", id).Msg("Revocation requested for running task")
	return snapshot, nil
}

func (m *Manager) worker(n int) {
	defer m.wg.Done()

	for id := range m.queue {
		m.runTask(n, id)
	}
}

func (m *Manager) runTask(worker int, id string) {
	runCtx, cancel := context.WithCancel(m.baseCtx)
	defer cancel()

	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.task.IsTerminal() {
		// Revoked while queued
		m.mu.Unlock()
		return
	}
	handler := m.handlers[e.task.Name]
	name := e.task.Name
	e.task.MarkStarted()
	// Swap in the run context's cancel so revocation reaches the handler
	old := e.cancel
	e.cancel = cancel
	m.mu.Unlock()
	if old != nil {
		old()
	}

	m.logger.Info().Str("task_id", id).Str("job", name).Int("worker", worker).Msg("Task started")

	tc := &taskContext{manager: m, id: id, ctx: runCtx}

	var result interface{}
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				m.logger.Error().Str("task_id", id).Str("job", name).Msgf("Task handler panicked: %v", r)
			}
		}()
		result, err = handler(runCtx, tc)
	}()

	switch {
	case err == nil:
		m.finalize(id, func(t *models.Task) { t.MarkSuccess(result) })
		m.logger.Info().Str("task_id", id).Str("job", name).Msg("Task succeeded")
	case errors.Is(err, context.Canceled):
		m.finalize(id, func(t *models.Task) { t.MarkRevoked() })
		m.logger.Info().Str("task_id", id).Str("job", name).Msg("Task revoked")
	default:
		errMsg := err.Error()
		m.finalize(id, func(t *models.Task) { t.MarkFailure(errMsg) })
		m.logger.Warn().Str("task_id", id).Str("job", name).Err(err).Msg("Task failed")
	}
}

// finalize applies a terminal transition exactly once and persists it
func (m *Manager) finalize(id string, transition func(*models.Task)) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.task.IsTerminal() {
		m.mu.Unlock()
		return
	}
	transition(e.task)
	snapshot := e.task.Clone()
	m.mu.Unlock()

	m.persist(snapshot)
}

func (m *Manager) persist(task *models.Task) {
	if m.storage == nil || !task.IsTerminal() {
		return
	}
	if err := m.storage.SaveTask(task); err != nil {
		// Keep the live entry so the record stays readable
		m.logger.Warn().Str("task_id", task.ID).Err(err).Msg("Failed to persist terminal task")
		return
	}

	// The persisted record serves reads from here on; drop the live
	// entry so task history doesn't accumulate in memory
	m.mu.Lock()
	delete(m.entries, task.ID)
	m.mu.Unlock()
}

// updateProgress publishes handler progress unless the task already
// reached a terminal state
func (m *Manager) updateProgress(id string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok && !e.task.IsTerminal() {
		e.task.Progress = models.TaskProgress{Current: current, Total: total, Message: message}
	}
}

// taskContext implements interfaces.TaskContext for one running task
type taskContext struct {
	manager *Manager
	id      string
	ctx     context.Context
}

func (tc *taskContext) TaskID() string {
	return tc.id
}

func (tc *taskContext) Args() map[string]interface{} {
	tc.manager.mu.RLock()
	defer tc.manager.mu.RUnlock()
	if e, ok := tc.manager.entries[tc.id]; ok {
		return e.task.Clone().Args
	}
	return nil
}

func (tc *taskContext) ReportProgress(current, total int, message string) {
	tc.manager.updateProgress(tc.id, current, total, message)
}

func (tc *taskContext) Cancelled() bool {
	return tc.ctx.Err() != nil
}
