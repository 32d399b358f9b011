package models

import (
	s "rhymcaffer/pkg/string"
	"rhymcaffer/pkg/validation"
)

type CreateArtistRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	ImageURL    string `json:"imageUrl" validate:"max=1024"`
	Description string `json:"description" validate:"max=4000"`
	Popularity  int    `json:"popularity" validate:"min=0,max=100"`
}

func (r *CreateArtistRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.ImageURL)
}

func (r *CreateArtistRequest) Validate() error {
	return validation.Validate(r)
}

func (r *CreateArtistRequest) Artist() *Artist {
	return &Artist{
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Popularity:  r.Popularity,
	}
}

// UpdateArtistRequest applies only the fields that are present.
type UpdateArtistRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=1024"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Popularity  *int    `json:"popularity" validate:"omitempty,min=0,max=100"`
}

func (r *UpdateArtistRequest) Sanitize() {
	r.Name = s.TrimSpacePtr(r.Name)
	r.ImageURL = s.TrimSpacePtr(r.ImageURL)
}

func (r *UpdateArtistRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdateArtistRequest) Apply(a *Artist) {
	set(&a.Name, r.Name)
	set(&a.ImageURL, r.ImageURL)
	set(&a.Description, r.Description)
	set(&a.Popularity, r.Popularity)
}

type CreateAlbumRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	ImageURL    string  `json:"imageUrl" validate:"max=1024"`
	Description string  `json:"description" validate:"max=4000"`
	Popularity  int     `json:"popularity" validate:"min=0,max=100"`
	ReleaseDate string  `json:"releaseDate" validate:"omitempty,isodate"`
	AlbumType   string  `json:"albumType" validate:"omitempty,oneof=album single compilation"`
	ArtistIDs   []int64 `json:"artistIds" validate:"dive,gt=0"`
}

func (r *CreateAlbumRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.ImageURL, &r.ReleaseDate, &r.AlbumType)
}

// Normalize defaults the album type to "album".
func (r *CreateAlbumRequest) Normalize() {
	if r.AlbumType == "" {
		r.AlbumType = AlbumTypeAlbum
	}
	r.ArtistIDs = s.Dedupe(r.ArtistIDs)
}

func (r *CreateAlbumRequest) Validate() error {
	return validation.Validate(r)
}

func (r *CreateAlbumRequest) Album() *Album {
	return &Album{
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Popularity:  r.Popularity,
		ReleaseDate: r.ReleaseDate,
		AlbumType:   r.AlbumType,
		ArtistIDs:   r.ArtistIDs,
	}
}

type UpdateAlbumRequest struct {
	Name        *string  `json:"name" validate:"omitempty,notblank,max=255"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,max=1024"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Popularity  *int     `json:"popularity" validate:"omitempty,min=0,max=100"`
	ReleaseDate *string  `json:"releaseDate" validate:"omitempty,isodate"`
	AlbumType   *string  `json:"albumType" validate:"omitempty,oneof=album single compilation"`
	ArtistIDs   *[]int64 `json:"artistIds" validate:"omitempty,dive,gt=0"`
}

func (r *UpdateAlbumRequest) Sanitize() {
	r.Name = s.TrimSpacePtr(r.Name)
	r.ImageURL = s.TrimSpacePtr(r.ImageURL)
	r.ReleaseDate = s.TrimSpacePtr(r.ReleaseDate)
	r.AlbumType = s.TrimSpacePtr(r.AlbumType)
}

func (r *UpdateAlbumRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdateAlbumRequest) Apply(a *Album) {
	set(&a.Name, r.Name)
	set(&a.ImageURL, r.ImageURL)
	set(&a.Description, r.Description)
	set(&a.Popularity, r.Popularity)
	set(&a.ReleaseDate, r.ReleaseDate)
	set(&a.AlbumType, r.AlbumType)
	if r.ArtistIDs != nil {
		a.ArtistIDs = s.Dedupe(*r.ArtistIDs)
	}
}

type CreateTrackRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	ImageURL    string  `json:"imageUrl" validate:"max=1024"`
	DurationMs  int     `json:"durationMs" validate:"min=0"`
	Popularity  int     `json:"popularity" validate:"min=0,max=100"`
	TrackURL    string  `json:"trackUrl" validate:"max=1024"`
	TrackNumber string  `json:"trackNumber" validate:"max=16"`
	Explicit    bool    `json:"explicit"`
	ISRC        string  `json:"isrc" validate:"max=32"`
	AlbumID     *int64  `json:"albumId" validate:"omitempty,gt=0"`
	ArtistIDs   []int64 `json:"artistIds" validate:"dive,gt=0"`
}

func (r *CreateTrackRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.ImageURL, &r.TrackURL, &r.TrackNumber, &r.ISRC)
}

func (r *CreateTrackRequest) Normalize() {
	r.ArtistIDs = s.Dedupe(r.ArtistIDs)
}

func (r *CreateTrackRequest) Validate() error {
	return validation.Validate(r)
}

func (r *CreateTrackRequest) Track() *Track {
	return &Track{
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		DurationMs:  r.DurationMs,
		Popularity:  r.Popularity,
		TrackURL:    r.TrackURL,
		TrackNumber: r.TrackNumber,
		Explicit:    r.Explicit,
		ISRC:        r.ISRC,
		AlbumID:     r.AlbumID,
		ArtistIDs:   r.ArtistIDs,
	}
}

type UpdateTrackRequest struct {
	Name        *string  `json:"name" validate:"omitempty,notblank,max=255"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,max=1024"`
	DurationMs  *int     `json:"durationMs" validate:"omitempty,min=0"`
	Popularity  *int     `json:"popularity" validate:"omitempty,min=0,max=100"`
	TrackURL    *string  `json:"trackUrl" validate:"omitempty,max=1024"`
	TrackNumber *string  `json:"trackNumber" validate:"omitempty,max=16"`
	Explicit    *bool    `json:"explicit"`
	ISRC        *string  `json:"isrc" validate:"omitempty,max=32"`
	// AlbumID 0 detaches the track from its album; null leaves it unchanged.
	AlbumID     *int64   `json:"albumId" validate:"omitempty,min=0"`
	ArtistIDs   *[]int64 `json:"artistIds" validate:"omitempty,dive,gt=0"`
}

func (r *UpdateTrackRequest) Sanitize() {
	r.Name = s.TrimSpacePtr(r.Name)
	r.ImageURL = s.TrimSpacePtr(r.ImageURL)
	r.TrackURL = s.TrimSpacePtr(r.TrackURL)
	r.TrackNumber = s.TrimSpacePtr(r.TrackNumber)
	r.ISRC = s.TrimSpacePtr(r.ISRC)
}

func (r *UpdateTrackRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdateTrackRequest) Apply(t *Track) {
	set(&t.Name, r.Name)
	set(&t.ImageURL, r.ImageURL)
	set(&t.DurationMs, r.DurationMs)
	set(&t.Popularity, r.Popularity)
	set(&t.TrackURL, r.TrackURL)
	set(&t.TrackNumber, r.TrackNumber)
	set(&t.Explicit, r.Explicit)
	set(&t.ISRC, r.ISRC)
	if r.AlbumID != nil {
		t.AlbumID = nil
		if id := *r.AlbumID; id != 0 {
			t.AlbumID = &id
		}
	}
	if r.ArtistIDs != nil {
		t.ArtistIDs = s.Dedupe(*r.ArtistIDs)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
