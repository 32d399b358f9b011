package service

import (
	"context"
	"log/slog"
	"time"

	"rhymcaffer/internal/auth/metrics"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/storage"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// TokenIssuer signs and validates access and refresh tokens.
type TokenIssuer interface {
	GenerateAccessToken(ctx context.Context, userID int64, username string, roles []string) (jwttoken.IssuedToken, error)
	GenerateRefreshToken(ctx context.Context, userID int64) (jwttoken.IssuedToken, error)
	ValidateAccessToken(token string) (*jwttoken.Claims, error)
	ValidateRefreshToken(token string) (*jwttoken.Claims, error)
}

// RefreshRegistry tracks refresh tokens that may still be exchanged.
// Consume returns sentinel.ErrNotFound for unknown or spent tokens.
type RefreshRegistry interface {
	Register(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (int64, error)
	Revoke(ctx context.Context, jti string) error
}

// RevocationList is the invalidation set of logged-out access tokens.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// PasswordHasher produces and verifies salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Service implements registration, login, token refresh, logout and
// access-token authorization.
type Service struct {
	uow         storage.UnitOfWork
	tokens      TokenIssuer
	refresh     RefreshRegistry
	revocations RevocationList
	hasher      PasswordHasher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(
	uow storage.UnitOfWork,
	tokens TokenIssuer,
	refresh RefreshRegistry,
	revocations RevocationList,
	hasher PasswordHasher,
	opts ...Option,
) *Service {
	svc := &Service{
		uow:         uow,
		tokens:      tokens,
		refresh:     refresh,
		revocations: revocations,
		hasher:      hasher,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}
