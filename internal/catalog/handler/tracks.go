package handler

import (
	"net/http"

	"rhymcaffer/pkg/platform/httputil"
	request "rhymcaffer/pkg/platform/middleware/request"
)

func (h *Handler) HandleCreateTrack(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, "Track created successfully", h.catalog.CreateTrack)
}

func (h *Handler) HandleBulkTracks(w http.ResponseWriter, r *http.Request) {
	bulk(h, w, r, "Tracks created successfully", h.catalog.CreateTracks)
}

func (h *Handler) HandleListTracks(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "list tracks failed", h.catalog.ListTracks)
}

func (h *Handler) HandleSearchTracks(w http.ResponseWriter, r *http.Request) {
	search(h, w, r, h.catalog.SearchTracks)
}

func (h *Handler) HandlePopularTracks(w http.ResponseWriter, r *http.Request) {
	popular(h, w, r, h.catalog.PopularTracks)
}

func (h *Handler) HandleGetTrack(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "id", "get track failed", h.catalog.GetTrack)
}

func (h *Handler) HandleTracksByArtist(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "artistId", "list tracks by artist failed", h.catalog.TracksByArtist)
}

func (h *Handler) HandleTracksByAlbum(w http.ResponseWriter, r *http.Request) {
	byID(h, w, r, "albumId", "list tracks by album failed", h.catalog.TracksByAlbum)
}

// HandleSavedTracks lists the caller's saved tracks.
func (h *Handler) HandleSavedTracks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tracks, err := h.catalog.SavedTracks(ctx, caller.UserID)
	if err != nil {
		h.fail(ctx, w, requestID, "list saved tracks failed", err)
		return
	}
	httputil.WriteSuccess(w, "Success", tracks)
}

func (h *Handler) HandleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Track updated successfully", h.catalog.UpdateTrack)
}

func (h *Handler) HandleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Track deleted successfully", h.catalog.DeleteTrack)
}

func (h *Handler) HandleSaveTrack(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Track saved successfully", h.catalog.SaveTrack)
}

func (h *Handler) HandleUnsaveTrack(w http.ResponseWriter, r *http.Request) {
	h.callerAction(w, r, "Track unsaved successfully", h.catalog.UnsaveTrack)
}
