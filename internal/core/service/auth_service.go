package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
	"github.com/ansysan/task-management-system/pkg/logger"
)

// PasswordHasher hashes and checks secrets.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs tokens for identities.
type TokenIssuer interface {
	IssueFor(identity auth.Authenticatable, now time.Time) (string, error)
}

// AuthService implements registration and login. They are the only two
// operations that issue tokens.
type AuthService struct {
	users    ports.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	recorder ports.AuthEventRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, hasher PasswordHasher, tokens TokenIssuer, recorder ports.AuthEventRecorder, logger zerolog.Logger) *AuthService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err := s.users.Save(ctx, &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index catches registrations racing past the pre-check.
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		s.logger.Error().Err(err).Msg("failed to persist user")
		return nil, err
	}

	token, err := s.tokens.IssueFor(user, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.recorder.Record(domain.AuthEvent{Kind: domain.AuthEventRegistered, Subject: user.Email, Timestamp: now})
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")

	return &ports.AuthResult{Token: token, User: user.WithoutSecret()}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	now := s.now()
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(email, "unknown_identity", now)
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(email, "bad_password", now)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueFor(user, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.recorder.Record(domain.AuthEvent{Kind: domain.AuthEventLoginSucceeded, Subject: user.Email, Timestamp: now})

	return &ports.AuthResult{Token: token, User: user.WithoutSecret()}, nil
}

func (s *AuthService) recordFailure(subject, reason string, at time.Time) {
	s.logger.Debug().
		Str("subject", logger.MaskEmail(subject)).
		Str("reason", reason).
		Msg("login failed")
	s.recorder.Record(domain.AuthEvent{
		Kind:      domain.AuthEventLoginFailed,
		Subject:   subject,
		Reason:    reason,
		Timestamp: at,
	})
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}
