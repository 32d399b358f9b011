package handler

import (
	"net/http"

	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

func (h *Handler) HandleCreateArtist(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "Artist created successfully", h.catalog.CreateArtist)
}

func (h *Handler) HandleBulkArtists(w http.ResponseWriter, r *http.Request) {
	bulk(h, w, r, "Artists created successfully", h.catalog.CreateArtists)
}

func (h *Handler) HandleListArtists(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "list artists failed", h.catalog.ListArtists)
}

func (h *Handler) HandleSearchArtists(w http.ResponseWriter, r *http.Request) {
	search(h, w, r, h.catalog.SearchArtists)
}

func (h *Handler) HandlePopularArtists(w http.ResponseWriter, r *http.Request) {
	popular(h, w, r, h.catalog.PopularArtists)
}

// HandleGetArtist honours the expandAlbums and expandTracks query flags.
func (h *Handler) HandleGetArtist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expandAlbums, err := httputil.QueryBool(r, "expandAlbums", false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expandTracks, err := httputil.QueryBool(r, "expandTracks", false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	artist, err := h.catalog.GetArtist(ctx, id, expandAlbums, expandTracks)
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "get artist failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", artist)
}

func (h *Handler) HandleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Artist updated successfully", h.catalog.UpdateArtist)
}

func (h *Handler) HandleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Artist deleted successfully", h.catalog.DeleteArtist)
}

func (h *Handler) HandleFollowArtist(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Artist followed successfully", h.catalog.FollowArtist)
}

func (h *Handler) HandleUnfollowArtist(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Artist unfollowed successfully", h.catalog.UnfollowArtist)
}

func (h *Handler) HandleArtistTracks(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "id", "list artist tracks failed", h.catalog.ArtistTracks)
}

func (h *Handler) HandleLinkArtistTracks(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Tracks added to artist successfully", h.catalog.LinkArtistTracks)
}

func (h *Handler) HandleUnlinkArtistTracks(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Tracks removed from artist successfully", h.catalog.UnlinkArtistTracks)
}

func (h *Handler) HandleArtistAlbums(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "id", "list artist albums failed", h.catalog.ArtistAlbums)
}

func (h *Handler) HandleLinkArtistAlbums(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Albums added to artist successfully", h.catalog.LinkArtistAlbums)
}

func (h *Handler) HandleUnlinkArtistAlbums(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Albums removed from artist successfully", h.catalog.UnlinkArtistAlbums)
}
