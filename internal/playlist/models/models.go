package models

import (
	"slices"
	"time"
)

// Playlist is owned by exactly one user. TrackIDs and FollowerIDs are
// membership sets projected in ascending id order.
type Playlist struct {
	ID            int64
	Name          string
	Description   string
	ImageURL      string
	IsPublic      bool
	Collaborative bool
	OwnerID       int64
	TrackIDs      []int64
	FollowerIDs   []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Playlist) Clone() *Playlist {
	c := *p
	c.TrackIDs = slices.Clone(p.TrackIDs)
	c.FollowerIDs = slices.Clone(p.FollowerIDs)
	return &c
}

// CanRead reports whether userID may view the playlist.
func (p *Playlist) CanRead(userID int64) bool {
	return p.IsPublic || p.OwnerID == userID || slices.Contains(p.FollowerIDs, userID)
}

// CanModify reports whether userID may change tracks or metadata.
func (p *Playlist) CanModify(userID int64) bool {
	return p.OwnerID == userID || p.Collaborative
}
