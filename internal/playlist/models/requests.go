package models

import (
	s "rhymcaffer/pkg/string"
	"rhymcaffer/pkg/validation"
)

// CreatePlaylistRequest describes a new playlist. Any ownerId in the body is
// ignored; the caller becomes the owner.
type CreatePlaylistRequest struct {
	Name          string  `json:"name" validate:"required,notblank,max=255"`
	Description   string  `json:"description" validate:"max=4000"`
	ImageURL      string  `json:"imageUrl" validate:"max=1024"`
	IsPublic      *bool   `json:"isPublic"`
	Collaborative *bool   `json:"collaborative"`
	TrackIDs      []int64 `json:"trackIds" validate:"dive,gt=0"`
}

func (r *CreatePlaylistRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.ImageURL)
}

func (r *CreatePlaylistRequest) Normalize() {
	r.TrackIDs = s.Dedupe(r.TrackIDs)
}

func (r *CreatePlaylistRequest) Validate() error {
	return validation.Validate(r)
}

// Playlist builds the entity owned by ownerID. Absent flags default to false.
func (r *CreatePlaylistRequest) Playlist(ownerID int64) *Playlist {
	return &Playlist{
		Name:          r.Name,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		IsPublic:      r.IsPublic != nil && *r.IsPublic,
		Collaborative: r.Collaborative != nil && *r.Collaborative,
		OwnerID:       ownerID,
		TrackIDs:      r.TrackIDs,
	}
}

// UpdatePlaylistRequest applies only the fields that are present.
type UpdatePlaylistRequest struct {
	Name          *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=4000"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,max=1024"`
	IsPublic      *bool   `json:"isPublic"`
	Collaborative *bool   `json:"collaborative"`
}

func (r *UpdatePlaylistRequest) Sanitize() {
	r.Name = s.TrimSpacePtr(r.Name)
	r.ImageURL = s.TrimSpacePtr(r.ImageURL)
}

func (r *UpdatePlaylistRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdatePlaylistRequest) Apply(p *Playlist) {
	set(&p.Name, r.Name)
	set(&p.Description, r.Description)
	set(&p.ImageURL, r.ImageURL)
	set(&p.IsPublic, r.IsPublic)
	set(&p.Collaborative, r.Collaborative)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
