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

type CommentService struct {
	comments ports.CommentRepository
	tasks    ports.TaskRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewCommentService(comments ports.CommentRepository, tasks ports.TaskRepository, logger zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		tasks:    tasks,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *CommentService) Create(ctx context.Context, caller *auth.Principal, taskID, text string) (*domain.Comment, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}

	now := s.now()
	comment, err := s.comments.Create(ctx, &domain.Comment{
		TaskID:    taskID,
		AuthorID:  caller.UserID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create comment")
		return nil, err
	}
	return comment, nil
}

// Update changes the text of a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, caller *auth.Principal, id, text string) (*domain.Comment, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != caller.UserID {
		return nil, domain.ErrForbidden
	}

	comment.Text = text
	comment.UpdatedAt = s.now()
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	if _, err := s.comments.FindByID(ctx, id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

func (s *CommentService) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}
