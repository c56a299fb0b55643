package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

func TestIdentityCache_SetGetDelete(t *testing.T) {
	c := NewIdentityCache(time.Minute)
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "alice@x.com"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	u := &domain.User{ID: "u1", Email: "alice@x.com", PasswordHash: "secret", Role: domain.RoleUser}
	if err := c.Set(ctx, u); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "alice@x.com")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" || got.PasswordHash != "" {
		t.Fatalf("unexpected cached identity %+v", got)
	}

	got.Name = "mutated"
	again, _, _ := c.Get(ctx, "alice@x.com")
	if again.Name == "mutated" {
		t.Fatalf("cache must hand out copies")
	}

	if err := c.Delete(ctx, "alice@x.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "alice@x.com"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestIdentityCache_Expires(t *testing.T) {
	c := NewIdentityCache(10 * time.Millisecond)
	ctx := context.Background()
	_ = c.Set(ctx, &domain.User{Email: "bob@x.com"})

	time.Sleep(30 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "bob@x.com"); ok {
		t.Fatalf("expected entry to expire")
	}
}
