package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/api/metrics"
	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
)

// RequireRole lets the request through only when the principal satisfies
// pred. Denials are returned as domain errors for the central error handler.
func RequireRole(pred auth.Predicate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := auth.Require(c.Request().Context(), pred); err != nil {
				result := "forbidden"
				if errors.Is(err, domain.ErrUnauthenticated) {
					result = "unauthenticated"
				}
				metrics.AccessDeniedTotal.WithLabelValues(result).Inc()
				return err
			}
			return next(c)
		}
	}
}

// RequireAuthenticated admits any established principal.
func RequireAuthenticated() echo.MiddlewareFunc {
	return RequireRole(auth.Authenticated())
}

// RequireAdmin admits principals carrying the ADMIN authority.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(auth.HasRole(domain.RoleAdmin))
}

// RequireUser admits principals carrying the USER authority.
func RequireUser() echo.MiddlewareFunc {
	return RequireRole(auth.HasRole(domain.RoleUser))
}
