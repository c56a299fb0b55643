package auth

import (
	"context"
	"slices"

	"github.com/ansysan/task-management-system/internal/core/domain"
)

// Principal is the authenticated caller of a request. Authorities are the
// ones signed into the token and are what guards check; the stored role is
// not carried, so a role change applies after the next login.
type Principal struct {
	UserID      string
	Subject     string
	Name        string
	Authorities []string
}

// NewPrincipal builds a principal from a resolved user and its verified
// token claims. Authorities come from the token.
func NewPrincipal(u *domain.User, claims *TokenClaims) *Principal {
	return &Principal{
		UserID:      u.ID,
		Subject:     claims.Subject,
		Name:        u.Name,
		Authorities: slices.Clone(claims.Authorities),
	}
}

// HasAuthority reports whether the principal carries authority.
func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Authorities, authority)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
