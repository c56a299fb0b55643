package auth

import (
	"context"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// Predicate decides whether an authenticated principal may proceed.
type Predicate func(*Principal) bool

// HasRole matches principals whose token carries role.
func HasRole(role domain.Role) Predicate {
	return func(p *Principal) bool {
		return p.HasAuthority(string(role))
	}
}

// HasAnyRole matches principals carrying at least one of roles.
func HasAnyRole(roles ...domain.Role) Predicate {
	return func(p *Principal) bool {
		for _, r := range roles {
			if p.HasAuthority(string(r)) {
				return true
			}
		}
		return false
	}
}

// Authenticated matches any principal.
func Authenticated() Predicate {
	return func(p *Principal) bool {
		return p != nil
	}
}

// Require returns the principal in ctx if it satisfies pred.
// No principal yields domain.ErrUnauthenticated, a failed predicate
// domain.ErrForbidden.
func Require(ctx context.Context, pred Predicate) (*Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if pred != nil && !pred(p) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
