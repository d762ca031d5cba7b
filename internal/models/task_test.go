package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_StartsPending(t *testing.T) {
	task := NewTask("task_1", "scrape", map[string]interface{}{"scraper_name": "medical_news_today"})

	assert.Equal(t, TaskStatusPending, task.Status)
	assert.False(t, task.IsTerminal())
	assert.Nil(t, task.StartedAt)
	assert.Nil(t, task.FinishedAt)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestNewTask_NilArgs(t *testing.T) {
	task := NewTask("task_1", "scrape", nil)
	require.NotNil(t, task.Args)
	assert.Empty(t, task.Args)
}

func TestTask_Lifecycle(t *testing.T) {
	task := NewTask("task_1", "scrape", nil)

	task.MarkStarted()
	assert.Equal(t, TaskStatusProgress, task.Status)
	require.NotNil(t, task.StartedAt)
	assert.False(t, task.IsTerminal())

	task.MarkSuccess(map[string]interface{}{"articles": 3})
	assert.Equal(t, TaskStatusSuccess, task.Status)
	assert.True(t, task.IsTerminal())
	require.NotNil(t, task.FinishedAt)
	assert.NotNil(t, task.Result)
	assert.Empty(t, task.Error)
}

func TestTask_MarkFailure(t *testing.T) {
	task := NewTask("task_1", "scrape", nil)
	task.MarkStarted()
	task.MarkFailure("scraper not found: unknown")

	assert.Equal(t, TaskStatusFailure, task.Status)
	assert.True(t, task.IsTerminal())
	assert.Equal(t, "scraper not found: unknown", task.Error)
	assert.Nil(t, task.Result)
}

func TestTask_MarkRevoked(t *testing.T) {
	task := NewTask("task_1", "scrape", nil)
	task.MarkRevoked()

	assert.Equal(t, TaskStatusRevoked, task.Status)
	assert.True(t, task.IsTerminal())
	require.NotNil(t, task.FinishedAt)
}

func TestTask_Clone_IndependentArgs(t *testing.T) {
	task := NewTask("task_1", "scrape", map[string]interface{}{"max_articles": 10})
	clone := task.Clone()

	clone.Args["max_articles"] = 99
	clone.Status = TaskStatusFailure

	assert.Equal(t, 10, task.Args["max_articles"])
	assert.Equal(t, TaskStatusPending, task.Status)
}
