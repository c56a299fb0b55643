package ports

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// RegisterInput carries the fields needed to create an identity.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by the only two operations that issue tokens.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
}

// AuthEventRecorder receives audit events. Implementations must not block the
// caller on the backing store.
type AuthEventRecorder interface {
	Record(event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	Insert(ctx context.Context, event domain.AuthEvent) error
}
