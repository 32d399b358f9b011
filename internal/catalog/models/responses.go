package models

import "time"

// ArtistResponse is the scalar form of an artist.
type ArtistResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"description"`
	Popularity  int       `json:"popularity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewArtistResponse(a *Artist) *ArtistResponse {
	return &ArtistResponse{
		ID:          a.ID,
		Name:        a.Name,
		ImageURL:    a.ImageURL,
		Description: a.Description,
		Popularity:  a.Popularity,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewArtistResponses(artists []*Artist) []*ArtistResponse {
	return mapAll(artists, NewArtistResponse)
}

// ArtistDetailResponse embeds albums and tracks only when they were expanded.
type ArtistDetailResponse struct {
	ArtistResponse
	FollowerIDs []int64           `json:"followerIds"`
	Albums      *[]*AlbumResponse `json:"albums,omitempty"`
	Tracks      *[]*TrackResponse `json:"tracks,omitempty"`
}

func NewArtistDetailResponse(g *ArtistGraph) *ArtistDetailResponse {
	resp := &ArtistDetailResponse{
		ArtistResponse: *NewArtistResponse(g.Artist),
		FollowerIDs:    nonNil(g.FollowerIDs),
	}
	if g.Albums != nil {
		albums := NewAlbumResponses(g.Albums)
		resp.Albums = &albums
	}
	if g.Tracks != nil {
		tracks := NewTrackResponses(g.Tracks)
		resp.Tracks = &tracks
	}
	return resp
}

// AlbumResponse is the list form of an album.
type AlbumResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"description"`
	Popularity  int       `json:"popularity"`
	ReleaseDate string    `json:"releaseDate"`
	AlbumType   string    `json:"albumType"`
	ArtistIDs   []int64   `json:"artistIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewAlbumResponse(a *Album) *AlbumResponse {
	return &AlbumResponse{
		ID:          a.ID,
		Name:        a.Name,
		ImageURL:    a.ImageURL,
		Description: a.Description,
		Popularity:  a.Popularity,
		ReleaseDate: a.ReleaseDate,
		AlbumType:   a.AlbumType,
		ArtistIDs:   nonNil(a.ArtistIDs),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewAlbumResponses(albums []*Album) []*AlbumResponse {
	return mapAll(albums, NewAlbumResponse)
}

// ArtistRef is the shallow artist embedded in an album detail.
type ArtistRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// FollowerRef is the shallow user embedded in an album detail.
type FollowerRef struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl"`
}

type AlbumDetailResponse struct {
	AlbumResponse
	Artists   []*ArtistRef     `json:"artists"`
	Tracks    []*TrackResponse `json:"tracks"`
	Followers []*FollowerRef   `json:"followers"`
}

// NewAlbumDetailResponse projects g; followers are supplied by the caller since
// users live outside the catalog.
func NewAlbumDetailResponse(g *AlbumGraph, followers []*FollowerRef) *AlbumDetailResponse {
	artists := make([]*ArtistRef, 0, len(g.Artists))
	for _, a := range g.Artists {
		artists = append(artists, &ArtistRef{ID: a.ID, Name: a.Name, ImageURL: a.ImageURL})
	}
	if followers == nil {
		followers = []*FollowerRef{}
	}
	return &AlbumDetailResponse{
		AlbumResponse: *NewAlbumResponse(g.Album),
		Artists:       artists,
		Tracks:        NewTrackResponses(g.Tracks),
		Followers:     followers,
	}
}

type TrackResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl"`
	DurationMs  int       `json:"durationMs"`
	Popularity  int       `json:"popularity"`
	TrackURL    string    `json:"trackUrl"`
	TrackNumber string    `json:"trackNumber"`
	Explicit    bool      `json:"explicit"`
	ISRC        string    `json:"isrc"`
	AlbumID     *int64    `json:"albumId"`
	ArtistIDs   []int64   `json:"artistIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewTrackResponse(t *Track) *TrackResponse {
	return &TrackResponse{
		ID:          t.ID,
		Name:        t.Name,
		ImageURL:    t.ImageURL,
		DurationMs:  t.DurationMs,
		Popularity:  t.Popularity,
		TrackURL:    t.TrackURL,
		TrackNumber: t.TrackNumber,
		Explicit:    t.Explicit,
		ISRC:        t.ISRC,
		AlbumID:     t.AlbumID,
		ArtistIDs:   nonNil(t.ArtistIDs),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTrackResponses(tracks []*Track) []*TrackResponse {
	return mapAll(tracks, NewTrackResponse)
}

func mapAll[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
