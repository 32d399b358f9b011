package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	authhandler "rhymcaffer/internal/auth/handler"
	authmetrics "rhymcaffer/internal/auth/metrics"
	authservice "rhymcaffer/internal/auth/service"
	"rhymcaffer/internal/auth/store/refreshtoken"
	"rhymcaffer/internal/auth/store/revocation"
	cataloghandler "rhymcaffer/internal/catalog/handler"
	catalogservice "rhymcaffer/internal/catalog/service"
	identityhandler "rhymcaffer/internal/identity/handler"
	identityservice "rhymcaffer/internal/identity/service"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/platform/config"
	"rhymcaffer/internal/platform/database"
	"rhymcaffer/internal/platform/health"
	"rhymcaffer/internal/platform/logger"
	"rhymcaffer/internal/platform/metrics"
	"rhymcaffer/internal/platform/redis"
	"rhymcaffer/internal/platform/tracer"
	playlisthandler "rhymcaffer/internal/playlist/handler"
	playlistservice "rhymcaffer/internal/playlist/service"
	"rhymcaffer/internal/storage"
	httptransport "rhymcaffer/internal/transport/http"
	"rhymcaffer/migrations"
	request "rhymcaffer/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load(os.Getenv("RHYM_CONFIG_FILE"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type infra struct {
	uow         storage.UnitOfWork
	refresh     authservice.RefreshRegistry
	revocations authservice.RevocationList
	redis       *redis.Client
	closers     []func()
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing rhymcaffer",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
	)
	if cfg.JWT.Secret == config.DevJWTSecret {
		log.Warn("using the development JWT secret; set RHYM_JWT_SECRET outside local development")
	}

	reg := metrics.NewRegistry()
	checks := health.New(cfg.Server.Environment)

	deps, err := buildInfra(ctx, cfg, log, reg, checks)
	if err != nil {
		return err
	}
	defer deps.close()

	domainMetrics := metrics.NewDomain(reg)
	tr := tracer.NewOTel("rhymcaffer")

	tokens := jwttoken.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL(), cfg.JWT.ClockSkew)
	hasher := authservice.NewBcryptHasher(cfg.Auth.BcryptCost)

	sessions := authservice.New(deps.uow, tokens, deps.refresh, deps.revocations, hasher,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New(reg)),
	)
	if cfg.Auth.AdminUsername != "" {
		if _, err := sessions.EnsureAdmin(ctx, authservice.AdminAccount{
			Username: cfg.Auth.AdminUsername,
			Email:    cfg.Auth.AdminEmail,
			Password: cfg.Auth.AdminPassword,
		}); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	users := identityservice.New(deps.uow, hasher,
		identityservice.WithLogger(log),
		identityservice.WithTracer(tr),
		identityservice.WithMetrics(domainMetrics),
	)
	catalog := catalogservice.New(deps.uow,
		catalogservice.WithLogger(log),
		catalogservice.WithTracer(tr),
		catalogservice.WithMetrics(domainMetrics),
		catalogservice.WithPopularityThresholds(cfg.Catalog.PopularTracksThreshold, cfg.Catalog.PopularArtistsThreshold),
	)
	playlists := playlistservice.New(deps.uow,
		playlistservice.WithLogger(log),
		playlistservice.WithTracer(tr),
		playlistservice.WithMetrics(domainMetrics),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:      authhandler.New(sessions, log, cfg.JWT.RefreshTTL(), cfg.Server.Environment != "development"),
		Users:     identityhandler.New(users, log),
		Catalog:   cataloghandler.New(catalog, log),
		Playlists: playlisthandler.New(playlists, log),
		Health:    checks,
	}, jwttoken.NewJWTServiceAdapter(tokens), deps.revocations, httptransport.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		BodyLimitBytes: cfg.Server.BodyLimitBytes,
		TrustedProxies: cfg.Server.TrustedProxies,
		Metrics:        request.NewMetrics(reg),
	}, log)

	apiServer := newServer(cfg.Server.Addr, router, cfg.Server.RequestTimeout)
	servers := []*http.Server{apiServer}
	if cfg.Server.MetricsAddr != "" {
		servers = append(servers, newServer(cfg.Server.MetricsAddr, metrics.Handler(reg), cfg.Server.RequestTimeout))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error { return serve(log, srv) })
	}
	if deps.redis != nil {
		g.Go(func() error {
			recordPoolStats(gctx, deps.redis)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// buildInfra picks Postgres or memory for domain state and Redis or memory
// for the token stores, registering readiness checks for whatever is remote.
func buildInfra(ctx context.Context, cfg *config.Config, log *slog.Logger, reg *prometheus.Registry, checks *health.Handler) (*infra, error) {
	deps := &infra{}

	if cfg.Database.URL != "" {
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		deps.closers = append(deps.closers, func() { _ = pool.Close() })
		if cfg.Database.Migrate {
			if err := database.Migrate(pool.DB(), migrations.FS); err != nil {
				deps.close()
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		if err := metrics.RegisterDB(reg, pool.DB(), "rhymcaffer"); err != nil {
			deps.close()
			return nil, fmt.Errorf("register db metrics: %w", err)
		}
		checks.RegisterCheck("database", pool.Health)
		deps.uow = storage.NewPostgres(pool.DB(), cfg.Server.RequestTimeout)
		log.Info("using postgres storage")
	} else {
		deps.uow = storage.NewMemory()
		log.Info("using in-memory storage")
	}

	client, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		deps.redis = client
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		checks.RegisterCheck("redis", client.Health)
		deps.refresh = refreshtoken.NewRedis(client.Client)
		deps.revocations = revocation.NewRedis(client.Client)
		log.Info("using redis token stores")
	} else {
		revoked := revocation.NewInMemory()
		refresh := refreshtoken.NewInMemory()
		deps.closers = append(deps.closers, revoked.Close, refresh.Close)
		deps.refresh = refresh
		deps.revocations = revoked
		log.Info("using in-memory token stores")
	}

	return deps, nil
}

func newServer(addr string, h http.Handler, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func serve(log *slog.Logger, srv *http.Server) error {
	log.Info("starting http server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	}
	return nil
}

func recordPoolStats(ctx context.Context, client *redis.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.RecordPoolStats()
		}
	}
}
