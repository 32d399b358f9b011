package handler

import (
	"net/http"

	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

func (h *Handler) HandleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "Album created successfully", h.catalog.CreateAlbum)
}

func (h *Handler) HandleBulkAlbums(w http.ResponseWriter, r *http.Request) {
	bulk(h, w, r, "Albums created successfully", h.catalog.CreateAlbums)
}

func (h *Handler) HandleListAlbums(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "list albums failed", h.catalog.ListAlbums)
}

func (h *Handler) HandleSearchAlbums(w http.ResponseWriter, r *http.Request) {
	search(h, w, r, h.catalog.SearchAlbums)
}

func (h *Handler) HandleGetAlbum(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "id", "get album failed", h.catalog.GetAlbum)
}

func (h *Handler) HandleAlbumsByArtist(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "artistId", "list albums by artist failed", h.catalog.AlbumsByArtist)
}

func (h *Handler) HandleNewReleases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albums, err := h.catalog.NewReleases(ctx, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(ctx, w, request.GetRequestID(ctx), "new releases failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", albums)
}

func (h *Handler) HandleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Album updated successfully", h.catalog.UpdateAlbum)
}

func (h *Handler) HandleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Album deleted successfully", h.catalog.DeleteAlbum)
}

func (h *Handler) HandleSaveAlbum(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Album saved successfully", h.catalog.SaveAlbum)
}

func (h *Handler) HandleUnsaveAlbum(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Album unsaved successfully", h.catalog.UnsaveAlbum)
}

func (h *Handler) HandleAlbumTracks(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "id", "list album tracks failed", h.catalog.AlbumTracks)
}

func (h *Handler) HandleAddAlbumTracks(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Tracks added to album successfully", h.catalog.AddAlbumTracks)
}

func (h *Handler) HandleRemoveAlbumTracks(w http.ResponseWriter, r *http.Request) {
	relink(h, w, r, "Tracks removed from album successfully", h.catalog.RemoveAlbumTracks)
}
