package ports

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// UserRepository defines persistence for identities. Find methods return
// domain.ErrUserNotFound on a miss; Save returns domain.ErrUserExists when the
// email is already taken by another user.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Save inserts the user when ID is empty and replaces it otherwise.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
}

// IdentityCache is a short-lived lookaside store for resolved identities.
// Cached users never carry a password hash.
type IdentityCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, email string) error
}

// IdentityResolver maps a verified token subject to the identity behind it.
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (*domain.User, error)
}
