package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
)

func newGuardContext(p *auth.Principal) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole_Allows(t *testing.T) {
	c := newGuardContext(&auth.Principal{Subject: "root@x.com", Authorities: []string{"ADMIN"}})

	called := false
	handler := RequireAdmin()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	c := newGuardContext(&auth.Principal{Subject: "alice@x.com", Authorities: []string{"USER"}})

	handler := RequireAdmin()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	for name, mw := range map[string]echo.MiddlewareFunc{
		"authenticated": RequireAuthenticated(),
		"user":          RequireUser(),
		"admin":         RequireAdmin(),
	} {
		t.Run(name, func(t *testing.T) {
			handler := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})
			if err := handler(newGuardContext(nil)); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestRequireRole_AnyRole(t *testing.T) {
	c := newGuardContext(&auth.Principal{Subject: "alice@x.com", Authorities: []string{"USER"}})
	handler := RequireRole(auth.HasAnyRole(domain.RoleAdmin, domain.RoleUser))(func(c echo.Context) error {
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("expected access, got %v", err)
	}
}
