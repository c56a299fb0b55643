package ports

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
)

// UpdateProfileInput carries optional profile changes; empty fields are kept.
type UpdateProfileInput struct {
	Name     string
	Password string
}

// UserService lets the caller manage their own identity.
type UserService interface {
	Me(ctx context.Context, caller *auth.Principal) (*domain.User, error)
	UpdateMe(ctx context.Context, caller *auth.Principal, input UpdateProfileInput) (*domain.User, error)
	DeleteMe(ctx context.Context, caller *auth.Principal) error
}

// AdminService holds administrative operations over identities.
type AdminService interface {
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
