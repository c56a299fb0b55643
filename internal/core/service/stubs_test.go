package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[string]*domain.User
	nextID  int
	saves   int
	findErr error // if set, FindByEmail returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Save mirrors the unique email index of the real store.
func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	for id, u := range r.byID {
		if u.Email == user.Email && id != user.ID {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneUser(user)
	if clone.ID == "" {
		r.nextID++
		clone.ID = fmt.Sprintf("u%d", r.nextID)
	} else if _, ok := r.byID[clone.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.byID[clone.ID] = clone
	r.saves++
	return cloneUser(clone), nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	saved, err := r.Save(context.Background(), u)
	if err != nil {
		panic(err)
	}
	return saved
}

type stubTaskRepo struct {
	byID       map[string]*domain.Task
	nextID     int
	lastFilter ports.TaskFilter
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	clone := *task
	clone.ID = fmt.Sprintf("t%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if _, ok := r.byID[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	clone := *task
	r.byID[task.ID] = &clone
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, int64, error) {
	r.lastFilter = f

	var matched []*domain.Task
	for _, t := range r.byID {
		if f.AuthorID != "" && t.AuthorID != f.AuthorID {
			continue
		}
		if f.PerformerID != "" && t.PerformerID != f.PerformerID {
			continue
		}
		clone := *t
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := f.Page * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type stubCommentRepo struct {
	byID   map[string]*domain.Comment
	nextID int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{byID: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.nextID++
	clone := *c
	clone.ID = fmt.Sprintf("c%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCommentRepo) Update(_ context.Context, c *domain.Comment) error {
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubCommentRepo) ListByTask(_ context.Context, taskID string) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range r.byID {
		if c.TaskID == taskID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubCommentRepo) DeleteByTask(_ context.Context, taskID string) error {
	for id, c := range r.byID {
		if c.TaskID == taskID {
			delete(r.byID, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) kinds() []domain.AuthEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type stubEvictor struct {
	evicted []string
}

func (e *stubEvictor) Evict(_ context.Context, email string) {
	e.evicted = append(e.evicted, email)
}

type stubCache struct {
	entries map[string]*domain.User
	getErr  error
	gets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*domain.User)}
}

func (c *stubCache) Get(_ context.Context, email string) (*domain.User, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	u, ok := c.entries[email]
	return cloneUser(u), ok, nil
}

func (c *stubCache) Set(_ context.Context, u *domain.User) error {
	c.entries[u.Email] = cloneUser(u)
	return nil
}

func (c *stubCache) Delete(_ context.Context, email string) error {
	delete(c.entries, email)
	return nil
}
