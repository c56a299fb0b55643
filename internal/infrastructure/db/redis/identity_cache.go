package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

const defaultIdentityTTL = time.Minute

// IdentityCache keeps resolved identities in Redis for a short TTL.
// Key format: identity:<email>
type IdentityCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdentityCache creates an IdentityCache wrapping the given Redis client.
func NewIdentityCache(client redis.Cmdable, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

// cachedIdentity is the stored form. It has no password hash field.
type cachedIdentity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *IdentityCache) Get(ctx context.Context, email string) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("identity cache get: %w", err)
	}

	var ci cachedIdentity
	if err := json.Unmarshal(raw, &ci); err != nil {
		return nil, false, fmt.Errorf("identity cache decode: %w", err)
	}
	return &domain.User{
		ID:        ci.ID,
		Name:      ci.Name,
		Email:     ci.Email,
		Role:      domain.Role(ci.Role),
		CreatedAt: ci.CreatedAt,
		UpdatedAt: ci.UpdatedAt,
	}, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(cachedIdentity{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(u.Email), raw, c.ttl).Err()
}

func (c *IdentityCache) Delete(ctx context.Context, email string) error {
	return c.client.Del(ctx, c.key(email)).Err()
}

func (c *IdentityCache) key(email string) string {
	return "identity:" + email
}
