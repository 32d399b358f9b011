package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rhymcaffer/internal/auth/models"
	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the session operations behind /api/auth.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// RefreshCookieName carries the refresh token between browser and server.
const RefreshCookieName = "refreshToken"

// Handler serves register, login, refresh and logout.
type Handler struct {
	auth          Service
	logger        *slog.Logger
	refreshMaxAge time.Duration
	secureCookie  bool
}

// New creates an auth Handler. refreshMaxAge sets the Max-Age of the refresh
// cookie and should equal the refresh token lifetime.
func New(auth Service, logger *slog.Logger, refreshMaxAge time.Duration, secureCookie bool) *Handler {
	return &Handler{
		auth:          auth,
		logger:        logger,
		refreshMaxAge: refreshMaxAge,
		secureCookie:  secureCookie,
	}
}

// Register mounts the routes on a router scoped to /api/auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/logout", h.HandleLogout)
}

// HandleRegister implements POST /api/auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.auth.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken.Token)
	httputil.WriteSuccess(w, "User registered successfully", models.NewAuthResponse(session))
}

// HandleLogin implements POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken.Token)
	httputil.WriteSuccess(w, "Login successful", models.NewAuthResponse(session))
}

// HandleRefresh implements POST /api/auth/refresh. The refresh token is read
// from the cookie and rotated on success.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		httputil.WriteFailure(w, http.StatusBadRequest, "Refresh token not found")
		return
	}

	session, err := h.auth.Refresh(ctx, cookie.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken.Token)
	httputil.WriteSuccess(w, "Token refreshed successfully", models.NewAuthResponse(session))
}

// HandleLogout implements POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		httputil.WriteFailure(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	var refreshToken string
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.auth.Logout(ctx, token, refreshToken); err != nil {
		h.logger.WarnContext(ctx, "logout failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	httputil.WriteSuccess(w, "Logout successful", nil)
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshMaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie emits Max-Age=0.
func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
