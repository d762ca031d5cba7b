package badger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

// ErrTaskNotFound is returned for lookups of unknown task ids
var ErrTaskNotFound = errors.New("task not found")

// taskRecord wraps a task as JSON for storage. Task results are
// arbitrary job payloads, so they go through JSON rather than the
// store's gob encoding, which would require registering every payload
// type.
type taskRecord struct {
	ID        string `badgerhold:"key"`
	CreatedAt time.Time
	Data      []byte
}

// TaskStorage implements the TaskStorage interface for Badger
type TaskStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTaskStorage creates a TaskStorage instance
func NewTaskStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TaskStorage {
	return &TaskStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TaskStorage) SaveTask(task *models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	record := &taskRecord{
		ID:        task.ID,
		CreatedAt: task.CreatedAt,
		Data:      data,
	}
	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (s *TaskStorage) GetTask(id string) (*models.Task, error) {
	var record taskRecord
	if err := s.db.Store().Get(id, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decodeTask(&record)
}

func (s *TaskStorage) ListTasks(limit int) ([]*models.Task, error) {
	var records []taskRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	tasks := make([]*models.Task, 0, len(records))
	for i := range records {
		task, err := decodeTask(&records[i])
		if err != nil {
			s.logger.Warn().Str("task_id", records[i].ID).Err(err).Msg("Skipping undecodable task record")
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *TaskStorage) DeleteTask(id string) error {
	if err := s.db.Store().Delete(id, &taskRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func decodeTask(record *taskRecord) (*models.Task, error) {
	var task models.Task
	if err := json.Unmarshal(record.Data, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}
