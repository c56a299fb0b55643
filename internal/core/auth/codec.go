// Package auth holds the authentication core: the signed token codec, the
// credential verifier, the per-request principal and the role guard.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest signing secret accepted, in bytes.
const MinSecretLength = 32

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenUnsupported      = errors.New("token unsupported")

	ErrWeakSecret  = errors.New("signing secret too short")
	ErrNegativeTTL = errors.New("token ttl must not be negative")

	errUnexpectedMethod  = errors.New("unexpected signing method")
	errAlgorithmMismatch = errors.New("signing algorithm does not match key")
)

// Authenticatable is anything a token can be issued for.
type Authenticatable interface {
	SubjectID() string
	Authorities() []string
}

// TokenClaims is the decoded, verified content of a token.
type TokenClaims struct {
	Subject     string
	Authorities []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// claims is the JWT payload. Timestamps have second precision.
type claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 tokens signed with a shared secret.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces the time source used by Decode.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec builds a Codec. ttlSeconds may be zero, in which case tokens are
// only valid during the second they were issued in.
func NewCodec(secret string, ttlSeconds int, opts ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	if ttlSeconds < 0 {
		return nil, ErrNegativeTTL
	}
	c := &Codec{
		key: []byte(secret),
		ttl: time.Duration(ttlSeconds) * time.Second,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject with expiry now+ttl.
func (c *Codec) Issue(subject string, authorities []string, now time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: %w: empty subject", ErrTokenMalformed)
	}
	if authorities == nil {
		authorities = []string{}
	}

	issued := now.Truncate(time.Second)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
		},
	})

	signed, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// IssueFor signs a token for the given identity.
func (c *Codec) IssueFor(identity Authenticatable, now time.Time) (string, error) {
	return c.Issue(identity.SubjectID(), identity.Authorities(), now)
}

// Decode verifies token against the codec's clock.
func (c *Codec) Decode(token string) (*TokenClaims, error) {
	return c.DecodeAt(token, c.now())
}

// DecodeAt verifies signature and expiry as of now. A token is valid on the
// closed interval [iat, exp].
func (c *Codec) DecodeAt(token string, now time.Time) (*TokenClaims, error) {
	var cl claims
	// exp == now is still valid; the one-second leeway only widens jwt's
	// strict check, the inclusive bound is enforced below.
	parser := jwt.NewParser(
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	_, err := parser.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
		switch t.Method {
		case jwt.SigningMethodHS256:
			return c.key, nil
		case jwt.SigningMethodNone:
			return nil, fmt.Errorf("%w %q", errUnexpectedMethod, t.Header["alg"])
		default:
			// A real algorithm that cannot have been signed with the shared key.
			return nil, fmt.Errorf("%w: %q", errAlgorithmMismatch, t.Header["alg"])
		}
	})
	if err != nil {
		return nil, classify(err)
	}

	if cl.Subject == "" || cl.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing sub or iat", ErrTokenMalformed)
	}
	if now.After(cl.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return &TokenClaims{
		Subject:     cl.Subject,
		Authorities: cl.Authorities,
		IssuedAt:    cl.IssuedAt.Time,
		ExpiresAt:   cl.ExpiresAt.Time,
	}, nil
}

// ExtractSubject returns the subject without verifying the token, or "" when
// the token cannot be parsed. Callers must still Decode before trusting it.
func (c *Codec) ExtractSubject(token string) string {
	var cl claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &cl); err != nil {
		return ""
	}
	return cl.Subject
}

// classify maps jwt parser errors onto the codec's failure kinds. Unsigned
// tokens are unsupported, other registered algorithms fail the signature
// check, and a missing or unknown alg header is malformed.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, errAlgorithmMismatch):
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	case errors.Is(err, errUnexpectedMethod):
		return fmt.Errorf("%w: %v", ErrTokenUnsupported, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

// FailureReason returns a short label for a Decode error, for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrTokenUnsupported):
		return "unsupported"
	default:
		return "malformed"
	}
}
