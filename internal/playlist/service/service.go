package service

import (
	"log/slog"

	"rhymcaffer/internal/platform/metrics"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
)

// Service implements playlist operations. Every operation takes the caller's
// id and whether the caller is an administrator; administrators bypass the
// read, modify and ownership checks.
type Service struct {
	uow     storage.UnitOfWork
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

func New(uow storage.UnitOfWork, opts ...Option) *Service {
	s := &Service{uow: uow}
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
