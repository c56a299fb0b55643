package ports

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
)

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Header      string
	Description string
	Status      string
	Priority    string
	PerformerID string
}

// PageInput selects a page of results. Page is 0-based.
type PageInput struct {
	Page  int
	Limit int
}

// TaskPage is a page of tasks plus pagination metadata.
type TaskPage struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskService defines use-case operations for tasks. The caller principal is
// passed explicitly wherever the operation depends on who is calling.
type TaskService interface {
	Create(ctx context.Context, caller *auth.Principal, input TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, input TaskInput) (*domain.Task, error)
	UpdateStatus(ctx context.Context, caller *auth.Principal, id, status string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, page PageInput) (*TaskPage, error)
	ListByAuthor(ctx context.Context, authorID string, page PageInput) (*TaskPage, error)
	ListByPerformer(ctx context.Context, performerID string, page PageInput) (*TaskPage, error)
	ListAssigned(ctx context.Context, caller *auth.Principal, page PageInput) (*TaskPage, error)
}

// CommentService defines use-case operations for comments.
type CommentService interface {
	Create(ctx context.Context, caller *auth.Principal, taskID, text string) (*domain.Comment, error)
	Update(ctx context.Context, caller *auth.Principal, id, text string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
}
