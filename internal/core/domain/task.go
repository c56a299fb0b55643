package domain

import (
	"errors"
	"time"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusProgress  TaskStatus = "PROGRESS"
	StatusCompleted TaskStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMiddle TaskPriority = "MIDDLE"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMiddle, PriorityHigh:
		return true
	}
	return false
}

var ErrTaskNotFound = errors.New("task not found")

// Task is a unit of work created by an author and assigned to a performer.
type Task struct {
	ID          string       `json:"id"`
	Header      string       `json:"header"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AuthorID    string       `json:"author_id"`
	PerformerID string       `json:"performer_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
