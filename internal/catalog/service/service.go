package service

import (
	"context"
	"log/slog"

	"rhymcaffer/internal/platform/metrics"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
)

// Default popularity thresholds for the popular artist and track lists.
const (
	DefaultPopularTracksThreshold  = 70
	DefaultPopularArtistsThreshold = 0
)

// Service implements artist, album and track operations, their link
// management and the per-user follow and save sets.
type Service struct {
	uow            storage.UnitOfWork
	logger         *slog.Logger
	tracer         tracer.Tracer
	metrics        *metrics.Domain
	popularTracks  int
	popularArtists int
}

// linkFunc adds or removes the links between one owner and a set of ids.
type linkFunc func(ctx context.Context, ownerID int64, ids []int64) error

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

// WithPopularityThresholds overrides the default minimum popularity used when
// a popular list request does not name one.
func WithPopularityThresholds(tracks, artists int) Option {
	return func(s *Service) {
		s.popularTracks = tracks
		s.popularArtists = artists
	}
}

func New(uow storage.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		uow:            uow,
		popularTracks:  DefaultPopularTracksThreshold,
		popularArtists: DefaultPopularArtistsThreshold,
	}
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
