package service

import (
	"log/slog"

	"rhymcaffer/internal/platform/metrics"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
)

// PasswordHasher hashes passwords set through admin create and user update.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service implements user CRUD and the user follow graph.
type Service struct {
	uow     storage.UnitOfWork
	hasher  PasswordHasher
	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *metrics.Domain
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithMetrics(m *metrics.Domain) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(uow storage.UnitOfWork, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{uow: uow, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	return s
}
