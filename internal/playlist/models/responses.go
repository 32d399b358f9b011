package models

import "time"

type PlaylistResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	IsPublic      bool      `json:"isPublic"`
	Collaborative bool      `json:"collaborative"`
	OwnerID       int64     `json:"ownerId"`
	TrackIDs      []int64   `json:"trackIds"`
	FollowerIDs   []int64   `json:"followerIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewPlaylistResponse(p *Playlist) *PlaylistResponse {
	return &PlaylistResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		IsPublic:      p.IsPublic,
		Collaborative: p.Collaborative,
		OwnerID:       p.OwnerID,
		TrackIDs:      nonNil(p.TrackIDs),
		FollowerIDs:   nonNil(p.FollowerIDs),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewPlaylistResponses(playlists []*Playlist) []*PlaylistResponse {
	out := make([]*PlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, NewPlaylistResponse(p))
	}
	return out
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
