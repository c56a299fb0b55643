// Package cache holds in-process caches used when no Redis is configured.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// IdentityCache is an in-process ports.IdentityCache with per-entry expiry.
type IdentityCache struct {
	store *gocache.Cache
}

// NewIdentityCache creates a cache whose entries live for ttl.
func NewIdentityCache(ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &IdentityCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *IdentityCache) Get(_ context.Context, email string) (*domain.User, bool, error) {
	v, ok := c.store.Get(email)
	if !ok {
		return nil, false, nil
	}
	u := *v.(*domain.User)
	return &u, true, nil
}

// Set stores a copy of u without its password hash.
func (c *IdentityCache) Set(_ context.Context, u *domain.User) error {
	c.store.SetDefault(u.Email, u.WithoutSecret())
	return nil
}

func (c *IdentityCache) Delete(_ context.Context, email string) error {
	c.store.Delete(email)
	return nil
}

// Len returns the number of unexpired entries.
func (c *IdentityCache) Len() int {
	return c.store.ItemCount()
}
