package tasks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// memoryTaskStorage is an in-memory TaskStorage for manager tests
type memoryTaskStorage struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
}

func newMemoryTaskStorage() *memoryTaskStorage {
	return &memoryTaskStorage{tasks: make(map[string]*models.Task)}
}

func (s *memoryTaskStorage) SaveTask(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *memoryTaskStorage) GetTask(id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		return t.Clone(), nil
	}
	return nil, fmt.Errorf("task not found: %s", id)
}

func (s *memoryTaskStorage) ListTasks(limit int) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *memoryTaskStorage) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func startManager(t *testing.T, workers int, storage interfaces.TaskStorage) *Manager {
	t.Helper()
	m := NewManager(workers, storage)
	require.NoError(t, m.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Stop(ctx)
	})
	return m
}

func waitForStatus(t *testing.T, m *Manager, id string, status models.TaskStatus) *models.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := m.GetTask(id)
		require.NoError(t, err)
		if task.Status == status {
			return task
		}
		if task.IsTerminal() {
			t.Fatalf("task %s reached terminal status %s while waiting for %s", id, task.Status, status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached status %s", id, status)
	return nil
}

func TestManager_SubmitAndSucceed(t *testing.T) {
	storage := newMemoryTaskStorage()
	m := startManager(t, 2, storage)

	require.NoError(t, m.Register("echo", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return tc.Args()["value"], nil
	}))

	task, err := m.Submit("echo", map[string]interface{}{"value": "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	done := waitForStatus(t, m, task.ID, models.TaskStatusSuccess)
	assert.Equal(t, "hello", done.Result)
	assert.Empty(t, done.Error)
	require.NotNil(t, done.FinishedAt)

	// Terminal record was persisted
	stored, err := storage.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, stored.Status)
}

func TestManager_SubmitUnknownJob(t *testing.T) {
	m := startManager(t, 1, nil)

	_, err := m.Submit("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestManager_HandlerErrorBecomesFailure(t *testing.T) {
	m := startManager(t, 1, nil)

	require.NoError(t, m.Register("boom", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return nil, fmt.Errorf("scraper not found: unknown")
	}))

	task, err := m.Submit("boom", nil)
	require.NoError(t, err)

	done := waitForStatus(t, m, task.ID, models.TaskStatusFailure)
	assert.Equal(t, "scraper not found: unknown", done.Error)
	assert.Nil(t, done.Result)
}

func TestManager_PanicBecomesFailure(t *testing.T) {
	m := startManager(t, 1, nil)

	require.NoError(t, m.Register("panics", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		panic("unexpected nil")
	}))

	task, err := m.Submit("panics", nil)
	require.NoError(t, err)

	done := waitForStatus(t, m, task.ID, models.TaskStatusFailure)
	assert.Contains(t, done.Error, "panic")
}

func TestManager_CancelRunningTask(t *testing.T) {
	m := startManager(t, 1, nil)

	started := make(chan struct{})
	require.NoError(t, m.Register("slow", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		close(started)
		for i := 0; i < 100; i++ {
			if tc.Cancelled() {
				return nil, ctx.Err()
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
		}
		return "finished", nil
	}))

	task, err := m.Submit("slow", nil)
	require.NoError(t, err)
	<-started

	_, err = m.Cancel(task.ID)
	require.NoError(t, err)

	done := waitForStatus(t, m, task.ID, models.TaskStatusRevoked)
	assert.Nil(t, done.Result)
	require.NotNil(t, done.FinishedAt)
}

func TestManager_CancelPendingTask(t *testing.T) {
	m := startManager(t, 1, nil)

	block := make(chan struct{})
	require.NoError(t, m.Register("blocker", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		<-block
		return nil, nil
	}))
	require.NoError(t, m.Register("queued", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return "ran", nil
	}))

	// Occupy the single worker so the next submission stays PENDING
	blocker, err := m.Submit("blocker", nil)
	require.NoError(t, err)

	pending, err := m.Submit("queued", nil)
	require.NoError(t, err)

	revoked, err := m.Cancel(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRevoked, revoked.Status)

	close(block)
	waitForStatus(t, m, blocker.ID, models.TaskStatusSuccess)

	// The revoked task must never run
	got, err := m.GetTask(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRevoked, got.Status)
	assert.Nil(t, got.Result)
}

func TestManager_CancelTerminalTaskIsNoOp(t *testing.T) {
	m := startManager(t, 1, nil)

	require.NoError(t, m.Register("quick", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return 42, nil
	}))

	task, err := m.Submit("quick", nil)
	require.NoError(t, err)
	waitForStatus(t, m, task.ID, models.TaskStatusSuccess)

	got, err := m.Cancel(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, got.Status, "terminal status survives cancellation")
	assert.Equal(t, 42, got.Result)
}

func TestManager_ProgressVisibleWhileRunning(t *testing.T) {
	m := startManager(t, 1, nil)

	reported := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, m.Register("progresses", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		tc.ReportProgress(3, 10, "Scraped 3/10 articles")
		close(reported)
		<-release
		return nil, nil
	}))

	task, err := m.Submit("progresses", nil)
	require.NoError(t, err)
	<-reported

	got, err := m.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProgress, got.Status)
	assert.Equal(t, 3, got.Progress.Current)
	assert.Equal(t, 10, got.Progress.Total)
	assert.Equal(t, "Scraped 3/10 articles", got.Progress.Message)

	close(release)
	waitForStatus(t, m, task.ID, models.TaskStatusSuccess)
}

func TestManager_ListTasksNewestFirst(t *testing.T) {
	m := startManager(t, 2, nil)

	require.NoError(t, m.Register("quick", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return nil, nil
	}))

	var ids []string
	for i := 0; i < 3; i++ {
		task, err := m.Submit("quick", nil)
		require.NoError(t, err)
		ids = append(ids, task.ID)
		time.Sleep(2 * time.Millisecond)
	}
	for _, id := range ids {
		waitForStatus(t, m, id, models.TaskStatusSuccess)
	}

	tasks, err := m.ListTasks(2)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, ids[2], tasks[0].ID)
	assert.Equal(t, ids[1], tasks[1].ID)
}

func TestManager_GetTaskFallsBackToStorage(t *testing.T) {
	storage := newMemoryTaskStorage()
	persisted := models.NewTask("task_old", "scrape", nil)
	persisted.MarkStarted()
	persisted.MarkSuccess("done earlier")
	require.NoError(t, storage.SaveTask(persisted))

	m := startManager(t, 1, storage)

	got, err := m.GetTask("task_old")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, got.Status)

	_, err = m.GetTask("task_never")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func entryIsLive(m *Manager, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id]
	return ok
}

func waitForEviction(t *testing.T, m *Manager, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !entryIsLive(m, id) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never left the live entry map", id)
}

func TestManager_TerminalTaskEvictedButReadable(t *testing.T) {
	storage := newMemoryTaskStorage()
	m := startManager(t, 1, storage)

	require.NoError(t, m.Register("quick", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return 42, nil
	}))

	task, err := m.Submit("quick", nil)
	require.NoError(t, err)
	waitForStatus(t, m, task.ID, models.TaskStatusSuccess)

	// Once persisted, the live entry is dropped so task history doesn't
	// accumulate in memory across long runs
	waitForEviction(t, m, task.ID)

	// The record stays readable through the storage fallback
	got, err := m.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, got.Status)
	assert.Equal(t, 42, got.Result)

	tasks, err := m.ListTasks(10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestManager_RevokedPendingTaskEvicted(t *testing.T) {
	storage := newMemoryTaskStorage()
	m := startManager(t, 1, storage)

	block := make(chan struct{})
	defer close(block)
	require.NoError(t, m.Register("blocker", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		<-block
		return nil, nil
	}))
	require.NoError(t, m.Register("queued", func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) {
		return "ran", nil
	}))

	_, err := m.Submit("blocker", nil)
	require.NoError(t, err)
	pending, err := m.Submit("queued", nil)
	require.NoError(t, err)

	revoked, err := m.Cancel(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRevoked, revoked.Status)

	waitForEviction(t, m, pending.ID)

	got, err := m.GetTask(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRevoked, got.Status)
}

func TestManager_RegisterDuplicate(t *testing.T) {
	m := NewManager(1, nil)
	handler := func(ctx context.Context, tc interfaces.TaskContext) (interface{}, error) { return nil, nil }

	require.NoError(t, m.Register("dup", handler))
	assert.Error(t, m.Register("dup", handler))
}
