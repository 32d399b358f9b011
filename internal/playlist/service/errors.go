package service

import (
	"context"
	"errors"
	"fmt"

	"rhymcaffer/internal/playlist/models"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/sentinel"
)

const (
	msgPlaylistNotFound = "Playlist not found"
	msgNoReadAccess     = "You do not have access to this playlist"
	msgNoModifyAccess   = "You are not allowed to modify this playlist"
	msgOwnerOnly        = "Only the owner can delete this playlist"
)

// translate maps store errors onto the domain taxonomy. Domain errors pass through.
func translate(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msgPlaylistNotFound)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// access is a predicate over a loaded playlist and the caller.
type access func(p *models.Playlist, callerID int64) bool

func canRead(p *models.Playlist, callerID int64) bool   { return p.CanRead(callerID) }
func canModify(p *models.Playlist, callerID int64) bool { return p.CanModify(callerID) }
func isOwner(p *models.Playlist, callerID int64) bool   { return p.OwnerID == callerID }

// load finds the playlist and applies allowed unless the caller is an admin.
func load(ctx context.Context, st storage.Stores, id, callerID int64, isAdmin bool, allowed access, denied string) (*models.Playlist, error) {
	p, err := st.Playlists.Find(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load playlist")
	}
	if !isAdmin && !allowed(p, callerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, denied)
	}
	return p, nil
}

func requireTracks(ctx context.Context, st storage.Stores, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := st.Catalog.MissingTracks(ctx, ids)
	if err != nil {
		return translate(err, "failed to resolve tracks")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Track not found: %v", missing))
	}
	return nil
}
