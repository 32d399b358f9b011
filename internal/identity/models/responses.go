package models

import "time"

// UserSummary is the list form of a user: scalar fields only.
type UserSummary struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Country     string    `json:"country"`
	ImageURL    string    `json:"imageUrl"`
	Bio         string    `json:"bio"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewUserSummary(u *User) *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Country:     u.Country,
		ImageURL:    u.ImageURL,
		Bio:         u.Bio,
		Roles:       u.Roles,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewUserSummaries(users []*User) []*UserSummary {
	out := make([]*UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserSummary(u))
	}
	return out
}

// UserRelations are the id sets attached to a user detail read.
type UserRelations struct {
	PlaylistIDs       []int64 `json:"playlistIds"`
	SavedTrackIDs     []int64 `json:"savedTrackIds"`
	SavedAlbumIDs     []int64 `json:"savedAlbumIds"`
	FollowedArtistIDs []int64 `json:"followedArtistIds"`
	FollowerIDs       []int64 `json:"followerIds"`
	FollowingIDs      []int64 `json:"followingIds"`
}

// UserResponse is the detail form of a user.
type UserResponse struct {
	UserSummary
	UserRelations
}
