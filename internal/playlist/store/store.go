package store

import (
	"context"

	"rhymcaffer/internal/playlist/models"
)

// Store persists playlists with their track and follower sets.
//
// Error contract: Find, Update and Delete return sentinel.ErrNotFound for
// unknown ids. Track and follower mutations are idempotent and assume the
// service has verified the referenced ids.
type Store interface {
	// Create persists the playlist together with its initial TrackIDs.
	Create(ctx context.Context, playlist *models.Playlist) error
	// Update replaces the scalar fields; sets and owner are left untouched.
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*models.Playlist, error)
	List(ctx context.Context) ([]*models.Playlist, error)
	ByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error)
	FollowedBy(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Public(ctx context.Context) ([]*models.Playlist, error)
	Search(ctx context.Context, name string) ([]*models.Playlist, error)
	IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)

	AddTracks(ctx context.Context, id int64, trackIDs []int64) error
	RemoveTracks(ctx context.Context, id int64, trackIDs []int64) error
	Follow(ctx context.Context, id, userID int64) error
	Unfollow(ctx context.Context, id, userID int64) error

	// DeleteByOwner removes every playlist the user owns.
	DeleteByOwner(ctx context.Context, ownerID int64) error
	// ForgetUser drops the user from every follower set.
	ForgetUser(ctx context.Context, userID int64) error
	// RemoveTrack drops the track from every playlist.
	RemoveTrack(ctx context.Context, trackID int64) error
}
