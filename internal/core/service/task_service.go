package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type TaskService struct {
	tasks    ports.TaskRepository
	comments ports.CommentRepository
	users    ports.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTaskService(tasks ports.TaskRepository, comments ports.CommentRepository, users ports.UserRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		comments: comments,
		users:    users,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new task authored by caller. Status defaults to PENDING.
func (s *TaskService) Create(ctx context.Context, caller *auth.Principal, input ports.TaskInput) (*domain.Task, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	input.Header = strings.TrimSpace(input.Header)
	if input.Header == "" {
		return nil, fmt.Errorf("%w: header is required", domain.ErrValidation)
	}
	if input.Status == "" {
		input.Status = string(domain.StatusPending)
	}
	status, priority, err := parseTaskEnums(input.Status, input.Priority)
	if err != nil {
		return nil, err
	}
	if input.PerformerID == "" {
		return nil, fmt.Errorf("%w: performer_id is required", domain.ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, input.PerformerID); err != nil {
		return nil, fmt.Errorf("performer %s: %w", input.PerformerID, err)
	}

	now := s.now()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Header:      input.Header,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AuthorID:    caller.UserID,
		PerformerID: input.PerformerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("author_id", task.AuthorID).Msg("task created")
	return task, nil
}

// Update applies the non-empty fields of input to the task.
func (s *TaskService) Update(ctx context.Context, id string, input ports.TaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if h := strings.TrimSpace(input.Header); h != "" {
		task.Header = h
	}
	if input.Description != "" {
		task.Description = input.Description
	}
	if input.Status != "" {
		st := domain.TaskStatus(input.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
		}
		task.Status = st
	}
	if input.Priority != "" {
		pr := domain.TaskPriority(input.Priority)
		if !pr.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, input.Priority)
		}
		task.Priority = pr
	}
	if input.PerformerID != "" && input.PerformerID != task.PerformerID {
		if _, err := s.users.FindByID(ctx, input.PerformerID); err != nil {
			return nil, fmt.Errorf("performer %s: %w", input.PerformerID, err)
		}
		task.PerformerID = input.PerformerID
	}

	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus lets a task's performer move it through its lifecycle.
func (s *TaskService) UpdateStatus(ctx context.Context, caller *auth.Principal, id, status string) (*domain.Task, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	st := domain.TaskStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.PerformerID != caller.UserID {
		return nil, domain.ErrForbidden
	}

	task.Status = st
	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("status", string(st)).Msg("task status changed")
	return task, nil
}

// Delete removes a task together with its comments.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, err := s.tasks.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByTask(ctx, id); err != nil {
		return fmt.Errorf("delete comments of task %s: %w", id, err)
	}
	return s.tasks.Delete(ctx, id)
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, page ports.PageInput) (*ports.TaskPage, error) {
	return s.list(ctx, ports.TaskFilter{}, page)
}

func (s *TaskService) ListByAuthor(ctx context.Context, authorID string, page ports.PageInput) (*ports.TaskPage, error) {
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		return nil, err
	}
	return s.list(ctx, ports.TaskFilter{AuthorID: authorID}, page)
}

func (s *TaskService) ListByPerformer(ctx context.Context, performerID string, page ports.PageInput) (*ports.TaskPage, error) {
	if _, err := s.users.FindByID(ctx, performerID); err != nil {
		return nil, err
	}
	return s.list(ctx, ports.TaskFilter{PerformerID: performerID}, page)
}

// ListAssigned returns the tasks the caller is the performer of.
func (s *TaskService) ListAssigned(ctx context.Context, caller *auth.Principal, page ports.PageInput) (*ports.TaskPage, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.list(ctx, ports.TaskFilter{PerformerID: caller.UserID}, page)
}

func (s *TaskService) list(ctx context.Context, filter ports.TaskFilter, page ports.PageInput) (*ports.TaskPage, error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	filter.Page = page.Page
	filter.Limit = page.Limit

	items, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Task{}
	}

	return &ports.TaskPage{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: totalPages(total, page.Limit),
	}, nil
}

// normalizePage applies the default limit and rejects out-of-range values.
func normalizePage(p ports.PageInput) (ports.PageInput, error) {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 0 {
		return p, fmt.Errorf("%w: offset must not be negative", domain.ErrValidation)
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return p, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, MaxPageLimit)
	}
	return p, nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func parseTaskEnums(status, priority string) (domain.TaskStatus, domain.TaskPriority, error) {
	st := domain.TaskStatus(status)
	if !st.Valid() {
		return "", "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	pr := domain.TaskPriority(priority)
	if !pr.Valid() {
		return "", "", fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, priority)
	}
	return st, pr, nil
}
