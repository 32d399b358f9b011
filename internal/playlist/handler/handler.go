package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/playlist/models"
	"rhymcaffer/pkg/platform/httputil"
	"rhymcaffer/pkg/platform/middleware/auth"
	request "rhymcaffer/pkg/platform/middleware/request"
)

// Service defines the playlist operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, callerID int64, req *models.CreatePlaylistRequest) (*models.PlaylistResponse, error)
	Get(ctx context.Context, callerID int64, isAdmin bool, id int64) (*models.PlaylistResponse, error)
	List(ctx context.Context, callerID int64, isAdmin bool) ([]*models.PlaylistResponse, error)
	Search(ctx context.Context, callerID int64, isAdmin bool, name string) ([]*models.PlaylistResponse, error)
	ByOwner(ctx context.Context, callerID int64) ([]*models.PlaylistResponse, error)
	FollowedBy(ctx context.Context, callerID int64) ([]*models.PlaylistResponse, error)
	Public(ctx context.Context) ([]*models.PlaylistResponse, error)
	Update(ctx context.Context, callerID int64, isAdmin bool, id int64, req *models.UpdatePlaylistRequest) (*models.PlaylistResponse, error)
	Delete(ctx context.Context, callerID int64, isAdmin bool, id int64) error
	AddTracks(ctx context.Context, callerID int64, isAdmin bool, id int64, trackIDs []int64) (*models.PlaylistResponse, error)
	RemoveTracks(ctx context.Context, callerID int64, isAdmin bool, id int64, trackIDs []int64) (*models.PlaylistResponse, error)
	Follow(ctx context.Context, callerID int64, isAdmin bool, id int64) error
	Unfollow(ctx context.Context, callerID int64, isAdmin bool, id int64) error
}

type Handler struct {
	playlists Service
	logger    *slog.Logger
}

func New(playlists Service, logger *slog.Logger) *Handler {
	return &Handler{playlists: playlists, logger: logger}
}

// Register mounts /api/playlists. Every route needs an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/search", h.HandleSearch)
	r.Get("/owner", h.HandleByOwner)
	r.Get("/followed", h.HandleFollowed)
	r.Get("/public", h.HandlePublic)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/tracks", h.HandleAddTracks)
	r.Delete("/{id}/tracks", h.HandleRemoveTracks)
	r.Post("/{id}/follow", h.HandleFollow)
	r.Post("/{id}/unfollow", h.HandleUnfollow)
}

// RegisterAdmin mounts /api/admin/playlists. The parent router enforces
// ROLE_ADMIN so ownership checks are bypassed.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// caller resolves the authenticated caller, writing 401 when absent.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*auth.Caller, bool) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger, request.GetRequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return caller, true
}

// target resolves the caller and the {id} path parameter.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (*auth.Caller, int64, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return nil, 0, false
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return nil, 0, false
	}
	return caller, id, true
}

func isAdmin(c *auth.Caller) bool {
	return c.HasRole(identity.RoleAdmin)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreatePlaylistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	playlist, err := h.playlists.Create(ctx, caller.UserID, req)
	if err != nil {
		h.fail(ctx, w, requestID, "create playlist failed", err)
		return
	}
	httputil.WriteSuccess(w, "Playlist created successfully", playlist)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}
	playlist, err := h.playlists.Get(ctx, caller.UserID, isAdmin(caller), id)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "get playlist failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", playlist)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, c *auth.Caller) ([]*models.PlaylistResponse, error) {
		return h.playlists.List(ctx, c.UserID, isAdmin(c))
	})
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	h.list(w, r, func(ctx context.Context, c *auth.Caller) ([]*models.PlaylistResponse, error) {
		return h.playlists.Search(ctx, c.UserID, isAdmin(c), name)
	})
}

func (h *Handler) HandleByOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, c *auth.Caller) ([]*models.PlaylistResponse, error) {
		return h.playlists.ByOwner(ctx, c.UserID)
	})
}

func (h *Handler) HandleFollowed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, c *auth.Caller) ([]*models.PlaylistResponse, error) {
		return h.playlists.FollowedBy(ctx, c.UserID)
	})
}

func (h *Handler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, _ *auth.Caller) ([]*models.PlaylistResponse, error) {
		return h.playlists.Public(ctx)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, load func(context.Context, *auth.Caller) ([]*models.PlaylistResponse, error)) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	playlists, err := load(ctx, caller)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "list playlists failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", playlists)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdatePlaylistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	playlist, err := h.playlists.Update(ctx, caller.UserID, isAdmin(caller), id, req)
	if err != nil {
		h.fail(ctx, w, requestID, "update playlist failed", err)
		return
	}
	httputil.WriteSuccess(w, "Playlist updated successfully", playlist)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "Playlist deleted successfully", h.playlists.Delete)
}

func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "Playlist followed successfully", h.playlists.Follow)
}

func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "Playlist unfollowed successfully", h.playlists.Unfollow)
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request, message string, op func(context.Context, int64, bool, int64) error) {
	ctx := r.Context()
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := op(ctx, caller.UserID, isAdmin(caller), id); err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "playlist action failed", err)
		return
	}
	httputil.WriteSuccess(w, message, nil)
}

func (h *Handler) HandleAddTracks(w http.ResponseWriter, r *http.Request) {
	h.tracks(w, r, "Tracks added to playlist successfully", h.playlists.AddTracks)
}

func (h *Handler) HandleRemoveTracks(w http.ResponseWriter, r *http.Request) {
	h.tracks(w, r, "Tracks removed from playlist successfully", h.playlists.RemoveTracks)
}

func (h *Handler) tracks(w http.ResponseWriter, r *http.Request, message string, op func(context.Context, int64, bool, int64, []int64) (*models.PlaylistResponse, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}
	ids, ok := httputil.DecodeIDs(w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	playlist, err := op(ctx, caller.UserID, isAdmin(caller), id, ids)
	if err != nil {
		h.fail(ctx, w, requestID, "update playlist tracks failed", err)
		return
	}
	httputil.WriteSuccess(w, message, playlist)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, requestID, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestID,
	)
	httputil.WriteError(w, err)
}
