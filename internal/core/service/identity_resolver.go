package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// IdentityResolver looks up the identity behind a token subject, reading
// through an optional cache. Cache failures degrade to a repository lookup.
type IdentityResolver struct {
	users  ports.UserRepository
	cache  ports.IdentityCache
	logger zerolog.Logger
}

func NewIdentityResolver(users ports.UserRepository, cache ports.IdentityCache, logger zerolog.Logger) *IdentityResolver {
	if cache == nil {
		cache = NopIdentityCache{}
	}
	return &IdentityResolver{users: users, cache: cache, logger: logger}
}

// Resolve returns domain.ErrUserNotFound when no identity has subject as its
// email. The returned user never carries a password hash.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*domain.User, error) {
	if subject == "" {
		return nil, domain.ErrUserNotFound
	}

	cached, ok, err := r.cache.Get(ctx, subject)
	if err != nil {
		r.logger.Warn().Err(err).Msg("identity cache read failed")
	}
	if ok {
		return cached, nil
	}

	user, err := r.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	public := user.WithoutSecret()
	if err := r.cache.Set(ctx, public); err != nil {
		r.logger.Warn().Err(err).Msg("identity cache write failed")
	}
	return public, nil
}

// Evict drops a cached identity after it changes.
func (r *IdentityResolver) Evict(ctx context.Context, email string) {
	if err := r.cache.Delete(ctx, email); err != nil {
		r.logger.Warn().Err(err).Msg("identity cache evict failed")
	}
}

// NopIdentityCache never stores anything.
type NopIdentityCache struct{}

func (NopIdentityCache) Get(context.Context, string) (*domain.User, bool, error) {
	return nil, false, nil
}

func (NopIdentityCache) Set(context.Context, *domain.User) error { return nil }

func (NopIdentityCache) Delete(context.Context, string) error { return nil }
