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

// IdentityEvictor drops cached identities after they change.
type IdentityEvictor interface {
	Evict(ctx context.Context, email string)
}

// UserService lets the caller read and manage their own identity.
type UserService struct {
	users   ports.UserRepository
	hasher  PasswordHasher
	evictor IdentityEvictor
	logger  zerolog.Logger
	now     func() time.Time
}

func NewUserService(users ports.UserRepository, hasher PasswordHasher, evictor IdentityEvictor, logger zerolog.Logger) *UserService {
	return &UserService{
		users:   users,
		hasher:  hasher,
		evictor: evictor,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Me(ctx context.Context, caller *auth.Principal) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return u.WithoutSecret(), nil
}

// UpdateMe changes the caller's name and/or password. The email, and so the
// token subject, cannot change here.
func (s *UserService) UpdateMe(ctx context.Context, caller *auth.Principal, input ports.UpdateProfileInput) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" && input.Password == "" {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if name != "" {
		u.Name = name
	}
	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.now()

	saved, err := s.users.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, saved.Email)
	return saved.WithoutSecret(), nil
}

// DeleteMe removes the caller's identity. Outstanding tokens stop resolving.
func (s *UserService) DeleteMe(ctx context.Context, caller *auth.Principal) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, u.ID); err != nil {
		return err
	}
	s.evict(ctx, u.Email)
	s.logger.Info().Str("user_id", u.ID).Msg("user deleted")
	return nil
}

func (s *UserService) evict(ctx context.Context, email string) {
	if s.evictor != nil {
		s.evictor.Evict(ctx, email)
	}
}
