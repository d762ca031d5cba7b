package common

import (
	"github.com/google/uuid"
)

// NewArticleID generates a unique article ID with the "article_" prefix
func NewArticleID() string {
	return "article_" + uuid.New().String()
}

// NewTaskID generates a unique task ID with the "task_" prefix
func NewTaskID() string {
	return "task_" + uuid.New().String()
}
