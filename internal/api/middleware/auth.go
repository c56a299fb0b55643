package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/api/metrics"
	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
	"github.com/ansysan/task-management-system/pkg/logger"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the part of the token codec the authenticator needs.
type TokenVerifier interface {
	ExtractSubject(token string) string
	Decode(token string) (*auth.TokenClaims, error)
}

// attemptedKey marks a request the authenticator has already processed,
// whether or not a principal came out of it.
type attemptedKey struct{}

// Authenticate establishes the request principal from a bearer token. It
// never rejects a request: when no principal can be established the request
// continues anonymously and route guards decide. Each request is processed
// at most once, however often the middleware is chained.
func Authenticate(tokens TokenVerifier, resolver ports.IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Context().Value(attemptedKey{}) != nil {
				return next(c)
			}
			req = req.WithContext(context.WithValue(req.Context(), attemptedKey{}, true))
			c.SetRequest(req)

			header := req.Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}
			token := header[len(bearerPrefix):]

			subject := tokens.ExtractSubject(token)
			if subject == "" {
				reject(log, c, "", "malformed")
				return next(c)
			}

			ctx := req.Context()
			if _, ok := auth.PrincipalFrom(ctx); ok {
				return next(c)
			}

			user, err := resolver.Resolve(ctx, subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					reject(log, c, subject, "unknown_subject")
				} else {
					log.Error().Err(err).Msg("identity resolution failed")
					metrics.TokenRejectionsTotal.WithLabelValues("resolver_error").Inc()
				}
				return next(c)
			}

			claims, err := tokens.Decode(token)
			if err != nil {
				reject(log, c, subject, auth.FailureReason(err))
				return next(c)
			}

			p := auth.NewPrincipal(user, claims)
			c.SetRequest(req.WithContext(auth.WithPrincipal(ctx, p)))
			metrics.PrincipalsEstablishedTotal.Inc()
			return next(c)
		}
	}
}

func reject(log zerolog.Logger, c echo.Context, subject, reason string) {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	ev := log.Debug().Str("reason", reason)
	if subject != "" {
		ev = ev.Str("subject", logger.MaskEmail(subject))
	}
	ev.
		Str("path", c.Path()).
		Msg("bearer token rejected")
}
