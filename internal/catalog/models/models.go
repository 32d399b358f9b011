package models

import (
	"slices"
	"time"
)

// Album types accepted on create and update.
const (
	AlbumTypeAlbum       = "album"
	AlbumTypeSingle      = "single"
	AlbumTypeCompilation = "compilation"
)

type Artist struct {
	ID          int64
	Name        string
	ImageURL    string
	Description string
	Popularity  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Artist) Clone() *Artist {
	c := *a
	return &c
}

// Album carries its artist links; its tracks are found through Track.AlbumID.
type Album struct {
	ID          int64
	Name        string
	ImageURL    string
	Description string
	Popularity  int
	// ReleaseDate is YYYY-MM-DD or empty. The format orders correctly as a string.
	ReleaseDate string
	AlbumType   string
	ArtistIDs   []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Album) Clone() *Album {
	c := *a
	c.ArtistIDs = slices.Clone(a.ArtistIDs)
	return &c
}

type Track struct {
	ID          int64
	Name        string
	ImageURL    string
	DurationMs  int
	Popularity  int
	TrackURL    string
	TrackNumber string
	Explicit    bool
	ISRC        string
	AlbumID     *int64
	ArtistIDs   []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Track) Clone() *Track {
	c := *t
	c.ArtistIDs = slices.Clone(t.ArtistIDs)
	if t.AlbumID != nil {
		id := *t.AlbumID
		c.AlbumID = &id
	}
	return &c
}

// ArtistGraph is an artist with its immediate relations loaded for a detail read.
type ArtistGraph struct {
	Artist      *Artist
	Albums      []*Album
	Tracks      []*Track
	FollowerIDs []int64
}

// AlbumGraph is an album with its immediate relations loaded for a detail read.
type AlbumGraph struct {
	Album       *Album
	Artists     []*Artist
	Tracks      []*Track
	FollowerIDs []int64
}
