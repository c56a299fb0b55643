package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
)

func TestCommentService_Lifecycle(t *testing.T) {
	tasks := newStubTaskRepo()
	task, _ := tasks.Create(context.Background(), &domain.Task{Header: "h"})
	comments := newStubCommentRepo()
	svc := NewCommentService(comments, tasks, zerolog.Nop())
	ctx := context.Background()

	alice := &auth.Principal{UserID: "u1", Authorities: []string{"USER"}}
	bob := &auth.Principal{UserID: "u2", Authorities: []string{"USER"}}

	c, err := svc.Create(ctx, alice, task.ID, "  looks good ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.AuthorID != "u1" || c.Text != "looks good" || c.TaskID != task.ID {
		t.Fatalf("unexpected comment %+v", c)
	}

	if _, err := svc.Update(ctx, bob, c.ID, "hijack"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, alice, c.ID, "edited")
	if err != nil || updated.Text != "edited" {
		t.Fatalf("update: %+v, %v", updated, err)
	}

	list, err := svc.ListByTask(ctx, task.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %v", list, err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}

	list, err = svc.ListByTask(ctx, task.ID)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v, %v", list, err)
	}
}

func TestCommentService_Validation(t *testing.T) {
	svc := NewCommentService(newStubCommentRepo(), newStubTaskRepo(), zerolog.Nop())
	ctx := context.Background()
	caller := &auth.Principal{UserID: "u1"}

	if _, err := svc.Create(ctx, caller, "t1", " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, caller, "missing", "hi"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, nil, "t1", "hi"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.ListByTask(ctx, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
