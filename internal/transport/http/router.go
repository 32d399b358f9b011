// Package httptransport assembles the public HTTP surface: the middleware
// stack, the authenticated /api tree and the admin tree.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authhandler "rhymcaffer/internal/auth/handler"
	cataloghandler "rhymcaffer/internal/catalog/handler"
	identityhandler "rhymcaffer/internal/identity/handler"
	identity "rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/platform/health"
	playlisthandler "rhymcaffer/internal/playlist/handler"
	"rhymcaffer/pkg/platform/httputil"
	"rhymcaffer/pkg/platform/middleware/auth"
	"rhymcaffer/pkg/platform/middleware/metadata"
	request "rhymcaffer/pkg/platform/middleware/request"
	"rhymcaffer/pkg/platform/middleware/requesttime"
)

// Handlers groups the domain handlers mounted by NewRouter.
type Handlers struct {
	Auth      *authhandler.Handler
	Users     *identityhandler.Handler
	Catalog   *cataloghandler.Handler
	Playlists *playlisthandler.Handler
	Health    *health.Handler
}

// Options tunes the middleware stack.
type Options struct {
	RequestTimeout time.Duration
	BodyLimitBytes int64
	TrustedProxies []string
	Metrics        *request.Metrics
}

// NewRouter wires every endpoint with middleware. Everything under /api
// except /api/auth requires a bearer access token that validates and has not
// been logged out; /api/admin additionally requires ROLE_ADMIN.
func NewRouter(h Handlers, tokens auth.JWTValidator, revocations auth.TokenRevocationChecker, opts Options, logger *slog.Logger) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.BodyLimitBytes == 0 {
		opts.BodyLimitBytes = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(opts.TrustedProxies).Handler)
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)
	r.Use(request.LatencyMiddleware(opts.Metrics))
	r.Use(request.Timeout(opts.RequestTimeout))
	r.Use(request.BodyLimit(opts.BodyLimitBytes))
	r.Use(request.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteFailure(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if h.Health != nil {
		h.Health.Register(r)
	}

	requireAdmin := auth.RequireRole(identity.RoleAdmin, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", h.Auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, revocations, logger))

			r.Route("/users", func(r chi.Router) { h.Users.Register(r, requireAdmin) })
			r.Route("/artists", h.Catalog.RegisterArtists)
			r.Route("/albums", h.Catalog.RegisterAlbums)
			r.Route("/tracks", h.Catalog.RegisterTracks)
			r.Route("/playlists", h.Playlists.Register)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Route("/users", h.Users.RegisterAdmin)
				r.Route("/playlists", h.Playlists.RegisterAdmin)
				h.Catalog.RegisterAdmin(r)
			})
		})
	})

	return r
}
