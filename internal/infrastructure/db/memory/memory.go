// Package memory implements the repository ports in process memory. It backs
// STORAGE_DRIVER=memory and end-to-end tests; all state is lost on exit.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// Repositories bundles the in-memory stores.
type Repositories struct {
	Users      *UserRepository
	Tasks      *TaskRepository
	Comments   *CommentRepository
	AuthEvents *AuthEventRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:      NewUserRepository(),
		Tasks:      NewTaskRepository(),
		Comments:   NewCommentRepository(),
		AuthEvents: &AuthEventRepository{},
	}
}

// UserRepository enforces email uniqueness like the Mongo unique index.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return nil, domain.ErrUserExists
	}

	u := cloneUser(user)
	if u.ID == "" {
		u.ID = uuid.NewString()
	} else {
		prev, ok := r.byID[u.ID]
		if !ok {
			return nil, domain.ErrUserNotFound
		}
		delete(r.byEmail, prev.Email)
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return cloneUser(u), nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// TaskRepository keeps tasks in insertion order.
type TaskRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{byID: make(map[string]*domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := *task
	t.ID = uuid.NewString()
	r.byID[t.ID] = &t
	r.order = append(r.order, t.ID)
	out := t
	return &out, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	t := *task
	r.byID[t.ID] = &t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Task
	for _, id := range r.order {
		t := r.byID[id]
		if f.AuthorID != "" && t.AuthorID != f.AuthorID {
			continue
		}
		if f.PerformerID != "" && t.PerformerID != f.PerformerID {
			continue
		}
		out := *t
		matched = append(matched, &out)
	}

	total := int64(len(matched))
	start := f.Page * f.Limit
	if f.Limit <= 0 || start >= len(matched) {
		return []*domain.Task{}, total, nil
	}
	end := min(start+f.Limit, len(matched))
	return matched[start:end], total, nil
}

// CommentRepository keeps comments in insertion order.
type CommentRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{byID: make(map[string]*domain.Comment)}
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *comment
	c.ID = uuid.NewString()
	r.byID[c.ID] = &c
	r.order = append(r.order, c.ID)
	out := c
	return &out, nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *CommentRepository) Update(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[comment.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	c := *comment
	r.byID[c.ID] = &c
	return nil
}

func (r *CommentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrCommentNotFound
	}
	r.remove(id)
	return nil
}

func (r *CommentRepository) ListByTask(_ context.Context, taskID string) ([]*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Comment{}
	for _, id := range r.order {
		if c := r.byID[id]; c.TaskID == taskID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (r *CommentRepository) DeleteByTask(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range slices.Clone(r.order) {
		if r.byID[id].TaskID == taskID {
			r.remove(id)
		}
	}
	return nil
}

// remove must be called with mu held.
func (r *CommentRepository) remove(id string) {
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
}

// AuthEventRepository appends audit events to a slice.
type AuthEventRepository struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *AuthEventRepository) Insert(_ context.Context, event domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of the recorded events.
func (r *AuthEventRepository) Events() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}
