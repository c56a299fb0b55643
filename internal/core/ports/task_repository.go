package ports

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// TaskFilter narrows a task listing. Empty fields are not applied.
type TaskFilter struct {
	AuthorID    string
	PerformerID string
	Page        int // 0-based
	Limit       int
}

// TaskRepository defines persistence for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// List returns a page of tasks matching filter and the total match count.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, int64, error)
}

// CommentRepository defines persistence for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
	DeleteByTask(ctx context.Context, taskID string) error
}
