package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

// Service defines the user operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error)
	Get(ctx context.Context, id int64) (*models.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*models.UserResponse, error)
	List(ctx context.Context) ([]*models.UserSummary, error)
	Search(ctx context.Context, query string) ([]*models.UserSummary, error)
	Update(ctx context.Context, callerID int64, isAdmin bool, id int64, req *models.UpdateUserRequest) (*models.UserResponse, error)
	Delete(ctx context.Context, id int64) error
	Follow(ctx context.Context, callerID, targetID int64) error
	Unfollow(ctx context.Context, callerID, targetID int64) error
	Followers(ctx context.Context, id int64) ([]*models.UserSummary, error)
	Following(ctx context.Context, id int64) ([]*models.UserSummary, error)
}

type Handler struct {
	users  Service
	logger *slog.Logger
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Register mounts /api/users. Create and delete go through requireAdmin.
func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", h.HandleList)
	r.With(requireAdmin).Post("/", h.HandleCreate)
	r.Get("/search", h.HandleSearch)
	r.Get("/username/{username}", h.HandleGetByUsername)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.With(requireAdmin).Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/follow", h.HandleFollow)
	r.Post("/{id}/unfollow", h.HandleUnfollow)
	r.Get("/{id}/followers", h.HandleFollowers)
	r.Get("/{id}/following", h.HandleFollowing)
}

// RegisterAdmin mounts /api/admin/users. The parent router enforces ROLE_ADMIN.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.users.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, requestID, "create user failed", err)
		return
	}
	httputil.WriteSuccess(w, "User created successfully", user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.users.List(ctx)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "list users failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", users)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.users.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "search users failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", users)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.users.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "get user failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", user)
}

func (h *Handler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.GetByUsername(ctx, chi.URLParam(r, "username"))
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "get user by username failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", user)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.users.Update(ctx, caller.UserID, caller.HasRole(models.RoleAdmin), id, req)
	if err != nil {
		h.fail(ctx, w, requestID, "update user failed", err)
		return
	}
	httputil.WriteSuccess(w, "User updated successfully", user)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.users.Delete(ctx, id); err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "delete user failed", err)
		return
	}
	httputil.WriteSuccess(w, "User deleted successfully", nil)
}

func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, h.users.Follow, "User followed successfully")
}

func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, h.users.Unfollow, "User unfollowed successfully")
}

func (h *Handler) followAction(w http.ResponseWriter, r *http.Request, action func(context.Context, int64, int64) error, message string) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := action(ctx, caller.UserID, id); err != nil {
		h.fail(ctx, w, requestID, "follow action failed", err)
		return
	}
	httputil.WriteSuccess(w, message, nil)
}

func (h *Handler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.users.Followers)
}

func (h *Handler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.users.Following)
}

func (h *Handler) listRelated(w http.ResponseWriter, r *http.Request, load func(context.Context, int64) ([]*models.UserSummary, error)) {
	ctx := r.Context()
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	users, err := load(ctx, id)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "load follow graph failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", users)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, requestID, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestID,
	)
	httputil.WriteError(w, err)
}
