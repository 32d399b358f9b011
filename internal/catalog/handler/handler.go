package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

// Service defines the catalog operations exposed over HTTP.
type Service interface {
	CreateArtist(ctx context.Context, req *models.CreateArtistRequest) (*models.ArtistResponse, error)
	CreateArtists(ctx context.Context, reqs []*models.CreateArtistRequest) ([]*models.ArtistResponse, error)
	GetArtist(ctx context.Context, id int64, expandAlbums, expandTracks bool) (*models.ArtistDetailResponse, error)
	ListArtists(ctx context.Context) ([]*models.ArtistResponse, error)
	SearchArtists(ctx context.Context, name string) ([]*models.ArtistResponse, error)
	PopularArtists(ctx context.Context, minPopularity *int) ([]*models.ArtistResponse, error)
	UpdateArtist(ctx context.Context, id int64, req *models.UpdateArtistRequest) (*models.ArtistResponse, error)
	DeleteArtist(ctx context.Context, id int64) error
	FollowArtist(ctx context.Context, userID, id int64) error
	UnfollowArtist(ctx context.Context, userID, id int64) error
	ArtistTracks(ctx context.Context, id int64) ([]*models.TrackResponse, error)
	LinkArtistTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error)
	UnlinkArtistTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error)
	ArtistAlbums(ctx context.Context, id int64) ([]*models.AlbumResponse, error)
	LinkArtistAlbums(ctx context.Context, id int64, albumIDs []int64) ([]*models.AlbumResponse, error)
	UnlinkArtistAlbums(ctx context.Context, id int64, albumIDs []int64) ([]*models.AlbumResponse, error)

	CreateAlbum(ctx context.Context, req *models.CreateAlbumRequest) (*models.AlbumResponse, error)
	CreateAlbums(ctx context.Context, reqs []*models.CreateAlbumRequest) ([]*models.AlbumResponse, error)
	GetAlbum(ctx context.Context, id int64) (*models.AlbumDetailResponse, error)
	ListAlbums(ctx context.Context) ([]*models.AlbumResponse, error)
	SearchAlbums(ctx context.Context, name string) ([]*models.AlbumResponse, error)
	AlbumsByArtist(ctx context.Context, artistID int64) ([]*models.AlbumResponse, error)
	NewReleases(ctx context.Context, date string) ([]*models.AlbumResponse, error)
	UpdateAlbum(ctx context.Context, id int64, req *models.UpdateAlbumRequest) (*models.AlbumResponse, error)
	DeleteAlbum(ctx context.Context, id int64) error
	SaveAlbum(ctx context.Context, userID, id int64) error
	UnsaveAlbum(ctx context.Context, userID, id int64) error
	AlbumTracks(ctx context.Context, id int64) ([]*models.TrackResponse, error)
	AddAlbumTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error)
	RemoveAlbumTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error)

	CreateTrack(ctx context.Context, req *models.CreateTrackRequest) (*models.TrackResponse, error)
	CreateTracks(ctx context.Context, reqs []*models.CreateTrackRequest) ([]*models.TrackResponse, error)
	GetTrack(ctx context.Context, id int64) (*models.TrackResponse, error)
	ListTracks(ctx context.Context) ([]*models.TrackResponse, error)
	SearchTracks(ctx context.Context, name string) ([]*models.TrackResponse, error)
	TracksByArtist(ctx context.Context, artistID int64) ([]*models.TrackResponse, error)
	TracksByAlbum(ctx context.Context, albumID int64) ([]*models.TrackResponse, error)
	SavedTracks(ctx context.Context, userID int64) ([]*models.TrackResponse, error)
	PopularTracks(ctx context.Context, minPopularity *int) ([]*models.TrackResponse, error)
	UpdateTrack(ctx context.Context, id int64, req *models.UpdateTrackRequest) (*models.TrackResponse, error)
	DeleteTrack(ctx context.Context, id int64) error
	SaveTrack(ctx context.Context, userID, id int64) error
	UnsaveTrack(ctx context.Context, userID, id int64) error
}

type Handler struct {
	catalog Service
	logger  *slog.Logger
}

func New(catalog Service, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// RegisterArtists mounts /api/artists. Every route needs an authenticated
// caller; the parent router enforces that.
func (h *Handler) RegisterArtists(r chi.Router) {
	r.Get("/", h.HandleListArtists)
	r.Post("/", h.HandleCreateArtist)
	r.Get("/search", h.HandleSearchArtists)
	r.Get("/popular", h.HandlePopularArtists)
	r.Get("/{id}", h.HandleGetArtist)
	r.Put("/{id}", h.HandleUpdateArtist)
	r.Delete("/{id}", h.HandleDeleteArtist)
	r.Post("/{id}/follow", h.HandleFollowArtist)
	r.Post("/{id}/unfollow", h.HandleUnfollowArtist)
	r.Get("/{id}/tracks", h.HandleArtistTracks)
	r.Post("/{id}/tracks", h.HandleLinkArtistTracks)
	r.Delete("/{id}/tracks", h.HandleUnlinkArtistTracks)
	r.Get("/{id}/albums", h.HandleArtistAlbums)
	r.Post("/{id}/albums", h.HandleLinkArtistAlbums)
	r.Delete("/{id}/albums", h.HandleUnlinkArtistAlbums)
}

// RegisterAlbums mounts /api/albums.
func (h *Handler) RegisterAlbums(r chi.Router) {
	r.Get("/", h.HandleListAlbums)
	r.Post("/", h.HandleCreateAlbum)
	r.Get("/search", h.HandleSearchAlbums)
	r.Get("/new-releases", h.HandleNewReleases)
	r.Get("/artist/{artistId}", h.HandleAlbumsByArtist)
	r.Get("/{id}", h.HandleGetAlbum)
	r.Put("/{id}", h.HandleUpdateAlbum)
	r.Delete("/{id}", h.HandleDeleteAlbum)
	r.Post("/{id}/save", h.HandleSaveAlbum)
	r.Post("/{id}/unsave", h.HandleUnsaveAlbum)
	r.Get("/{id}/tracks", h.HandleAlbumTracks)
	r.Post("/{id}/tracks", h.HandleAddAlbumTracks)
	r.Delete("/{id}/tracks", h.HandleRemoveAlbumTracks)
}

// RegisterTracks mounts /api/tracks.
func (h *Handler) RegisterTracks(r chi.Router) {
	r.Get("/", h.HandleListTracks)
	r.Post("/", h.HandleCreateTrack)
	r.Get("/search", h.HandleSearchTracks)
	r.Get("/saved", h.HandleSavedTracks)
	r.Get("/popular", h.HandlePopularTracks)
	r.Get("/artist/{artistId}", h.HandleTracksByArtist)
	r.Get("/album/{albumId}", h.HandleTracksByAlbum)
	r.Get("/{id}", h.HandleGetTrack)
	r.Put("/{id}", h.HandleUpdateTrack)
	r.Delete("/{id}", h.HandleDeleteTrack)
	r.Post("/{id}/save", h.HandleSaveTrack)
	r.Post("/{id}/unsave", h.HandleUnsaveTrack)
}

// RegisterAdmin mounts the catalog part of /api/admin. The parent router
// enforces ROLE_ADMIN.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/artists", func(r chi.Router) {
		r.Get("/", h.HandleListArtists)
		r.Post("/", h.HandleCreateArtist)
		r.Put("/{id}", h.HandleUpdateArtist)
		r.Delete("/{id}", h.HandleDeleteArtist)
	})
	r.Route("/albums", func(r chi.Router) {
		r.Get("/", h.HandleListAlbums)
		r.Post("/", h.HandleCreateAlbum)
		r.Put("/{id}", h.HandleUpdateAlbum)
		r.Delete("/{id}", h.HandleDeleteAlbum)
	})
	r.Route("/tracks", func(r chi.Router) {
		r.Get("/", h.HandleListTracks)
		r.Post("/", h.HandleCreateTrack)
		r.Put("/{id}", h.HandleUpdateTrack)
		r.Delete("/{id}", h.HandleDeleteTrack)
	})
	r.Post("/bulk/artists", h.HandleBulkArtists)
	r.Post("/bulk/albums", h.HandleBulkAlbums)
	r.Post("/bulk/tracks", h.HandleBulkTracks)
}

// create decodes and prepares one request body and passes it to op.
func create[Req, Resp any](h *Handler, w http.ResponseWriter, r *http.Request, message string, op func(context.Context, *Req) (Resp, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[Req](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := op(ctx, req)
	if err != nil {
		h.fail(ctx, w, requestID, "create failed", err)
		return
	}
	httputil.WriteSuccess(w, message, out)
}

// bulk decodes a JSON array of create requests; the service creates all or none.
func bulk[Req, Resp any](h *Handler, w http.ResponseWriter, r *http.Request, message string, op func(context.Context, []*Req) (Resp, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	reqs, ok := httputil.DecodeAndPrepareAll[Req](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := op(ctx, reqs)
	if err != nil {
		h.fail(ctx, w, requestID, "bulk create failed", err)
		return
	}
	httputil.WriteSuccess(w, message, out)
}

func update[Req, Resp any](h *Handler, w http.ResponseWriter, r *http.Request, message string, op func(context.Context, int64, *Req) (Resp, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[Req](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := op(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, requestID, "update failed", err)
		return
	}
	httputil.WriteSuccess(w, message, out)
}

// search writes the matches for the name query parameter.
func search[T any](h *Handler, w http.ResponseWriter, r *http.Request, find func(context.Context, string) (T, error)) {
	ctx := r.Context()
	out, err := find(ctx, r.URL.Query().Get("name"))
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "search failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", out)
}

// list writes the result of a parameterless read.
func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, msg string, load func(context.Context) (T, error)) {
	ctx := r.Context()
	out, err := load(ctx)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), msg, err)
		return
	}
	httputil.WriteSuccess(w, "Success", out)
}

// byID writes the result of a read keyed by the named path parameter.
func byID[T any](h *Handler, w http.ResponseWriter, r *http.Request, param, msg string, load func(context.Context, int64) (T, error)) {
	ctx := r.Context()
	id, err := httputil.PathID(r, param)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := load(ctx, id)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), msg, err)
		return
	}
	httputil.WriteSuccess(w, "Success", out)
}

// popular writes a popularity list with an optional minPopularity override.
func popular[T any](h *Handler, w http.ResponseWriter, r *http.Request, load func(context.Context, *int) (T, error)) {
	ctx := r.Context()
	minPopularity, err := httputil.QueryIntPtr(r, "minPopularity")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := load(ctx, minPopularity)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "popular list failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", out)
}

// relink applies an id list to the entity named by {id} and writes the
// entity's updated relation list.
func relink[T any](h *Handler, w http.ResponseWriter, r *http.Request, message string, op func(context.Context, int64, []int64) (T, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ids, ok := httputil.DecodeIDs(w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := op(ctx, id, ids)
	if err != nil {
		h.fail(ctx, w, requestID, "relink failed", err)
		return
	}
	httputil.WriteSuccess(w, message, out)
}

// callerAction runs a per-user set mutation such as save or follow.
func (h *Handler) callerAction(w http.ResponseWriter, r *http.Request, message string, action func(context.Context, int64, int64) error) {
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
		h.fail(ctx, w, requestID, "caller action failed", err)
		return
	}
	httputil.WriteSuccess(w, message, nil)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, message string, del func(context.Context, int64) error) {
	ctx := r.Context()
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := del(ctx, id); err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "delete failed", err)
		return
	}
	httputil.WriteSuccess(w, message, nil)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, requestID, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestID,
	)
	httputil.WriteError(w, err)
}
