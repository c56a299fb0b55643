package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// AdminService holds identity administration. Role changes reach a user's
// tokens only on their next login.
type AdminService struct {
	users   ports.UserRepository
	evictor IdentityEvictor
	logger  zerolog.Logger
	now     func() time.Time
}

func NewAdminService(users ports.UserRepository, evictor IdentityEvictor, logger zerolog.Logger) *AdminService {
	return &AdminService{
		users:   users,
		evictor: evictor,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u.WithoutSecret(), nil
	}

	previous := u.Role
	u.Role = role
	u.UpdatedAt = s.now()
	saved, err := s.users.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.evictor != nil {
		s.evictor.Evict(ctx, saved.Email)
	}

	s.logger.Info().Str("user_id", saved.ID).Str("from", string(previous)).Str("to", string(role)).Msg("role changed")
	return saved.WithoutSecret(), nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.WithoutSecret())
	}
	return out, nil
}
