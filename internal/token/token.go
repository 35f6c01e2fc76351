// Package token mints and verifies the signed credentials used across the
// access layer: the session credential carried by the browser and the
// short-lived service token delegated to downstream systems.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tidilihatim/avolship-sub011/internal/identity"
)

const (
	defaultIssuer     = "avolship"
	defaultSessionTTL = 7 * 24 * time.Hour

	// Service tokens have a fixed lifetime, not a configurable one.
	ServiceTokenTTL = 24 * time.Hour
)

var (
	// ErrInvalidToken indicates the credential failed verification.
	// Absence of a valid credential never surfaces as anything stronger.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret indicates the signing secret is not configured.
	// This is a hard configuration failure, never a silently-unsigned token.
	ErrMissingSecret = errors.New("signing secret is not configured")
)

// Claims is the credential payload. Subject carries the user id.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies credentials with HS256. It holds no mutable
// state; every call mints or checks independently.
type Service struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures Service behavior.
type Option func(*Service) error

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) Option {
	return func(s *Service) error {
		issuer = strings.TrimSpace(issuer)
		if issuer == "" {
			return errors.New("token: issuer must not be empty")
		}
		s.issuer = issuer
		return nil
	}
}

// WithSessionTTL configures the session credential lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl <= 0 {
			return errors.New("token: session ttl must be positive")
		}
		s.sessionTTL = ttl
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs a Service. An empty secret is accepted here and
// surfaces as ErrMissingSecret at signing/verification time, so a
// misconfigured deployment fails loudly on first use rather than at boot.
func NewService(secret string, opts ...Option) (*Service, error) {
	svc := &Service{
		issuer:     defaultIssuer,
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
	if secret = strings.TrimSpace(secret); secret != "" {
		svc.secret = []byte(secret)
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// IssueSession signs a session credential bound to the identity.
func (s *Service) IssueSession(id identity.Identity) (string, time.Time, error) {
	return s.sign(id, s.sessionTTL, true)
}

// IssueServiceToken signs a short-lived token for delegating identity to a
// downstream trusted service. Tokens are unique per call (fresh jti and
// issued-at) even for the same identity.
func (s *Service) IssueServiceToken(id identity.Identity) (string, time.Time, error) {
	return s.sign(id, ServiceTokenTTL, false)
}

func (s *Service) sign(id identity.Identity, ttl time.Duration, withStatus bool) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if strings.TrimSpace(id.ID) == "" {
		return "", time.Time{}, errors.New("token: identity id is required")
	}

	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Email: id.Email,
		Name:  id.Name,
		Role:  string(identity.NormalizeRole(string(id.Role))),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if withStatus {
		claims.Status = string(identity.NormalizeStatus(string(id.Status)))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature and claims and maps the credential to an
// Identity. It fails closed: any defect yields ErrInvalidToken, except a
// missing signing secret which is a configuration failure.
func (s *Service) Verify(raw string) (identity.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return identity.Identity{}, ErrInvalidToken
	}
	if len(s.secret) == 0 {
		return identity.Identity{}, ErrMissingSecret
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return identity.Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return identity.Identity{}, ErrInvalidToken
	}
	if err := s.validateClaims(claims); err != nil {
		return identity.Identity{}, ErrInvalidToken
	}

	return identity.Identity{
		ID:     claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   identity.NormalizeRole(claims.Role),
		Status: identity.NormalizeStatus(claims.Status),
	}, nil
}

func (s *Service) validateClaims(claims *Claims) error {
	if claims.Issuer != s.issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := s.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
