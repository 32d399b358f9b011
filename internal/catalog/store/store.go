package store

import (
	"context"

	"rhymcaffer/internal/catalog/models"
)

// Store persists artists, albums, tracks, the links between them and the
// per-user follow and save sets on each.
//
// Error contract: single-entity lookups, updates and deletes return
// sentinel.ErrNotFound for unknown ids. Link operations assume the service has
// already verified every id; they are idempotent.
type Store interface {
	CreateArtist(ctx context.Context, artist *models.Artist) error
	UpdateArtist(ctx context.Context, artist *models.Artist) error
	// DeleteArtist removes the artist from every album, track and follower set.
	DeleteArtist(ctx context.Context, id int64) error
	FindArtist(ctx context.Context, id int64) (*models.Artist, error)
	FindArtists(ctx context.Context, ids []int64) ([]*models.Artist, error)
	ListArtists(ctx context.Context) ([]*models.Artist, error)
	SearchArtists(ctx context.Context, name string) ([]*models.Artist, error)
	// PopularArtists returns artists with popularity >= min, most popular first, ties by id.
	PopularArtists(ctx context.Context, min int) ([]*models.Artist, error)
	ArtistGraph(ctx context.Context, id int64, withAlbums, withTracks bool) (*models.ArtistGraph, error)

	// CreateAlbum persists the album and its ArtistIDs links.
	CreateAlbum(ctx context.Context, album *models.Album) error
	// UpdateAlbum replaces scalar fields and the ArtistIDs link set.
	UpdateAlbum(ctx context.Context, album *models.Album) error
	// DeleteAlbum detaches the album's tracks and removes it from every set.
	DeleteAlbum(ctx context.Context, id int64) error
	FindAlbum(ctx context.Context, id int64) (*models.Album, error)
	FindAlbums(ctx context.Context, ids []int64) ([]*models.Album, error)
	ListAlbums(ctx context.Context) ([]*models.Album, error)
	SearchAlbums(ctx context.Context, name string) ([]*models.Album, error)
	AlbumsByArtist(ctx context.Context, artistID int64) ([]*models.Album, error)
	// AlbumsReleasedAfter returns albums with release_date > date, newest first, ties by id descending.
	AlbumsReleasedAfter(ctx context.Context, date string) ([]*models.Album, error)
	AlbumGraph(ctx context.Context, id int64) (*models.AlbumGraph, error)

	CreateTrack(ctx context.Context, track *models.Track) error
	UpdateTrack(ctx context.Context, track *models.Track) error
	// DeleteTrack removes the track from every artist and saved set.
	DeleteTrack(ctx context.Context, id int64) error
	FindTrack(ctx context.Context, id int64) (*models.Track, error)
	FindTracks(ctx context.Context, ids []int64) ([]*models.Track, error)
	ListTracks(ctx context.Context) ([]*models.Track, error)
	SearchTracks(ctx context.Context, name string) ([]*models.Track, error)
	TracksByArtist(ctx context.Context, artistID int64) ([]*models.Track, error)
	TracksByAlbum(ctx context.Context, albumID int64) ([]*models.Track, error)
	// PopularTracks returns tracks with popularity >= min, most popular first, ties by id.
	PopularTracks(ctx context.Context, min int) ([]*models.Track, error)

	// MissingArtists, MissingAlbums and MissingTracks return the ids that do not resolve.
	MissingArtists(ctx context.Context, ids []int64) ([]int64, error)
	MissingAlbums(ctx context.Context, ids []int64) ([]int64, error)
	MissingTracks(ctx context.Context, ids []int64) ([]int64, error)

	LinkArtistTracks(ctx context.Context, artistID int64, trackIDs []int64) error
	UnlinkArtistTracks(ctx context.Context, artistID int64, trackIDs []int64) error
	LinkArtistAlbums(ctx context.Context, artistID int64, albumIDs []int64) error
	UnlinkArtistAlbums(ctx context.Context, artistID int64, albumIDs []int64) error
	// AttachTracks moves the tracks into the album.
	AttachTracks(ctx context.Context, albumID int64, trackIDs []int64) error
	// DetachTracks clears the album of those tracks that currently belong to it.
	DetachTracks(ctx context.Context, albumID int64, trackIDs []int64) error

	FollowArtist(ctx context.Context, userID, artistID int64) error
	UnfollowArtist(ctx context.Context, userID, artistID int64) error
	FollowedArtistIDs(ctx context.Context, userID int64) ([]int64, error)
	SaveAlbum(ctx context.Context, userID, albumID int64) error
	UnsaveAlbum(ctx context.Context, userID, albumID int64) error
	SavedAlbumIDs(ctx context.Context, userID int64) ([]int64, error)
	SaveTrack(ctx context.Context, userID, trackID int64) error
	UnsaveTrack(ctx context.Context, userID, trackID int64) error
	SavedTrackIDs(ctx context.Context, userID int64) ([]int64, error)
	SavedTracks(ctx context.Context, userID int64) ([]*models.Track, error)

	// ForgetUser drops the user from every follow and save set.
	ForgetUser(ctx context.Context, userID int64) error
}
