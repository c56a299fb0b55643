package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

type taskFixture struct {
	svc       *TaskService
	tasks     *stubTaskRepo
	comments  *stubCommentRepo
	users     *stubUserRepo
	admin     *auth.Principal
	performer *auth.Principal
}

func newTaskFixture() *taskFixture {
	users := newStubUserRepo()
	a := users.add(&domain.User{Name: "Root", Email: "root@x.com", Role: domain.RoleAdmin})
	p := users.add(&domain.User{Name: "Pat", Email: "pat@x.com", Role: domain.RoleUser})
	tasks := newStubTaskRepo()
	comments := newStubCommentRepo()

	return &taskFixture{
		svc:       NewTaskService(tasks, comments, users, zerolog.Nop()),
		tasks:     tasks,
		comments:  comments,
		users:     users,
		admin:     &auth.Principal{UserID: a.ID, Subject: a.Email, Authorities: []string{"ADMIN"}},
		performer: &auth.Principal{UserID: p.ID, Subject: p.Email, Authorities: []string{"USER"}},
	}
}

func (f *taskFixture) create(t *testing.T) *domain.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), f.admin, ports.TaskInput{
		Header:      "Write report",
		Description: "Q3 numbers",
		Priority:    "HIGH",
		PerformerID: f.performer.UserID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture()
	task := f.create(t)

	if task.ID == "" {
		t.Fatalf("expected an id")
	}
	if task.AuthorID != f.admin.UserID {
		t.Fatalf("expected author %s, got %s", f.admin.UserID, task.AuthorID)
	}
	if task.Status != domain.StatusPending {
		t.Fatalf("expected default status PENDING, got %s", task.Status)
	}
	if task.Priority != domain.PriorityHigh {
		t.Fatalf("expected priority HIGH, got %s", task.Priority)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()

	cases := []struct {
		name    string
		input   ports.TaskInput
		wantErr error
	}{
		{"missing header", ports.TaskInput{Priority: "LOW", PerformerID: f.performer.UserID}, domain.ErrValidation},
		{"bad status", ports.TaskInput{Header: "h", Status: "DONE", Priority: "LOW", PerformerID: f.performer.UserID}, domain.ErrValidation},
		{"bad priority", ports.TaskInput{Header: "h", Priority: "URGENT", PerformerID: f.performer.UserID}, domain.ErrValidation},
		{"missing performer", ports.TaskInput{Header: "h", Priority: "LOW"}, domain.ErrValidation},
		{"unknown performer", ports.TaskInput{Header: "h", Priority: "LOW", PerformerID: "nobody"}, domain.ErrUserNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.admin, tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if len(f.tasks.byID) != 0 {
		t.Fatalf("invalid input must not create tasks")
	}
}

func TestTaskService_Update(t *testing.T) {
	f := newTaskFixture()
	task := f.create(t)

	updated, err := f.svc.Update(context.Background(), task.ID, ports.TaskInput{Header: "Renamed", Status: "PROGRESS"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Header != "Renamed" || updated.Status != domain.StatusProgress {
		t.Fatalf("unexpected task %+v", updated)
	}
	if updated.Priority != domain.PriorityHigh || updated.Description != "Q3 numbers" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := f.svc.Update(context.Background(), "missing", ports.TaskInput{Header: "x"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_UpdateStatus_OnlyPerformer(t *testing.T) {
	f := newTaskFixture()
	task := f.create(t)
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, f.admin, task.ID, "COMPLETED"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-performer, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.performer, task.ID, "FINISHED"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, f.performer, task.ID, "COMPLETED")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", updated.Status)
	}
}

func TestTaskService_Delete_RemovesComments(t *testing.T) {
	f := newTaskFixture()
	task := f.create(t)
	ctx := context.Background()
	_, _ = f.comments.Create(ctx, &domain.Comment{TaskID: task.ID, Text: "first"})
	_, _ = f.comments.Create(ctx, &domain.Comment{TaskID: "other", Text: "keep"})

	if err := f.svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if len(f.comments.byID) != 1 {
		t.Fatalf("expected only the unrelated comment to remain, got %d", len(f.comments.byID))
	}
	if err := f.svc.Delete(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestTaskService_List_Pagination(t *testing.T) {
	f := newTaskFixture()
	for i := 0; i < 5; i++ {
		f.create(t)
	}
	ctx := context.Background()

	page, err := f.svc.List(ctx, ports.PageInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 5 || page.TotalPages != 3 || page.Page != 1 || page.Limit != 2 {
		t.Fatalf("unexpected page %+v", page)
	}

	page, err = f.svc.List(ctx, ports.PageInput{Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("list beyond end: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %v", page.Items)
	}

	page, err = f.svc.List(ctx, ports.PageInput{})
	if err != nil {
		t.Fatalf("list default: %v", err)
	}
	if page.Limit != DefaultPageLimit || f.tasks.lastFilter.Limit != DefaultPageLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultPageLimit, page.Limit)
	}

	for _, p := range []ports.PageInput{{Page: -1, Limit: 10}, {Limit: -1}, {Limit: MaxPageLimit + 1}} {
		if _, err := f.svc.List(ctx, p); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("page %+v: expected ErrValidation, got %v", p, err)
		}
	}
}

func TestTaskService_ListFilters(t *testing.T) {
	f := newTaskFixture()
	f.create(t)
	ctx := context.Background()

	byAuthor, err := f.svc.ListByAuthor(ctx, f.admin.UserID, ports.PageInput{})
	if err != nil || byAuthor.Total != 1 {
		t.Fatalf("by author: %+v, %v", byAuthor, err)
	}
	byPerformer, err := f.svc.ListByPerformer(ctx, f.admin.UserID, ports.PageInput{})
	if err != nil || byPerformer.Total != 0 {
		t.Fatalf("by performer: %+v, %v", byPerformer, err)
	}
	assigned, err := f.svc.ListAssigned(ctx, f.performer, ports.PageInput{})
	if err != nil || assigned.Total != 1 {
		t.Fatalf("assigned: %+v, %v", assigned, err)
	}
	if f.tasks.lastFilter.PerformerID != f.performer.UserID {
		t.Fatalf("expected performer filter, got %+v", f.tasks.lastFilter)
	}

	if _, err := f.svc.ListByAuthor(ctx, "nobody", ports.PageInput{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
