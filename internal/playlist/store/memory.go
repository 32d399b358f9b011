package store

import (
	"context"
	"maps"
	"slices"

	"rhymcaffer/internal/playlist/models"
	"rhymcaffer/pkg/platform/linkset"
	"rhymcaffer/pkg/platform/middleware/requesttime"
	"rhymcaffer/pkg/platform/sentinel"
	str "rhymcaffer/pkg/string"
)

// InMemory is a map-backed Store. It is not synchronized; storage.Memory
// serializes access.
type InMemory struct {
	nextID    int64
	playlists map[int64]*models.Playlist
	tracks    *linkset.Links // playlist -> track
	followers *linkset.Links // playlist -> user
}

func NewInMemory() *InMemory {
	return &InMemory{
		playlists: make(map[int64]*models.Playlist),
		tracks:    linkset.New(),
		followers: linkset.New(),
	}
}

// Clone returns a deep copy used as the working set of a transaction.
func (s *InMemory) Clone() *InMemory {
	playlists := make(map[int64]*models.Playlist, len(s.playlists))
	for id, p := range s.playlists {
		playlists[id] = p.Clone()
	}
	return &InMemory{
		nextID:    s.nextID,
		playlists: playlists,
		tracks:    s.tracks.Clone(),
		followers: s.followers.Clone(),
	}
}

func (s *InMemory) Create(ctx context.Context, playlist *models.Playlist) error {
	s.nextID++
	now := requesttime.Now(ctx)
	playlist.ID = s.nextID
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	s.tracks.Replace(playlist.ID, playlist.TrackIDs)
	s.playlists[playlist.ID] = scalars(playlist)
	playlist.TrackIDs = s.tracks.Right(playlist.ID)
	playlist.FollowerIDs = []int64{}
	return nil
}

func (s *InMemory) Update(ctx context.Context, playlist *models.Playlist) error {
	existing, ok := s.playlists[playlist.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	playlist.OwnerID = existing.OwnerID
	playlist.CreatedAt = existing.CreatedAt
	playlist.UpdatedAt = requesttime.Now(ctx)
	s.playlists[playlist.ID] = scalars(playlist)
	playlist.TrackIDs = s.tracks.Right(playlist.ID)
	playlist.FollowerIDs = s.followers.Right(playlist.ID)
	return nil
}

// scalars copies p without its sets; the linksets own membership.
func scalars(p *models.Playlist) *models.Playlist {
	c := *p
	c.TrackIDs, c.FollowerIDs = nil, nil
	return &c
}

func (s *InMemory) Delete(_ context.Context, id int64) error {
	if _, ok := s.playlists[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.drop(id)
	return nil
}

func (s *InMemory) drop(id int64) {
	delete(s.playlists, id)
	s.tracks.DropLeft(id)
	s.followers.DropLeft(id)
}

func (s *InMemory) Find(_ context.Context, id int64) (*models.Playlist, error) {
	if _, ok := s.playlists[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.project(id), nil
}

func (s *InMemory) project(id int64) *models.Playlist {
	p := *s.playlists[id]
	p.TrackIDs = s.tracks.Right(id)
	p.FollowerIDs = s.followers.Right(id)
	return &p
}

func (s *InMemory) List(_ context.Context) ([]*models.Playlist, error) {
	return s.filter(func(*models.Playlist) bool { return true }), nil
}

func (s *InMemory) ByOwner(_ context.Context, ownerID int64) ([]*models.Playlist, error) {
	return s.filter(func(p *models.Playlist) bool { return p.OwnerID == ownerID }), nil
}

func (s *InMemory) FollowedBy(_ context.Context, userID int64) ([]*models.Playlist, error) {
	return s.filter(func(p *models.Playlist) bool { return s.followers.Has(p.ID, userID) }), nil
}

func (s *InMemory) Public(_ context.Context) ([]*models.Playlist, error) {
	return s.filter(func(p *models.Playlist) bool { return p.IsPublic }), nil
}

func (s *InMemory) Search(_ context.Context, name string) ([]*models.Playlist, error) {
	return s.filter(func(p *models.Playlist) bool { return str.ContainsFold(p.Name, name) }), nil
}

func (s *InMemory) IDsByOwner(_ context.Context, ownerID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, p := range s.filter(func(p *models.Playlist) bool { return p.OwnerID == ownerID }) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *InMemory) filter(keep func(*models.Playlist) bool) []*models.Playlist {
	out := make([]*models.Playlist, 0)
	for _, id := range slices.Sorted(maps.Keys(s.playlists)) {
		if keep(s.playlists[id]) {
			out = append(out, s.project(id))
		}
	}
	return out
}

func (s *InMemory) AddTracks(_ context.Context, id int64, trackIDs []int64) error {
	if _, ok := s.playlists[id]; !ok {
		return sentinel.ErrNotFound
	}
	for _, t := range trackIDs {
		s.tracks.Add(id, t)
	}
	return nil
}

func (s *InMemory) RemoveTracks(_ context.Context, id int64, trackIDs []int64) error {
	if _, ok := s.playlists[id]; !ok {
		return sentinel.ErrNotFound
	}
	for _, t := range trackIDs {
		s.tracks.Remove(id, t)
	}
	return nil
}

func (s *InMemory) Follow(_ context.Context, id, userID int64) error {
	if _, ok := s.playlists[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.followers.Add(id, userID)
	return nil
}

func (s *InMemory) Unfollow(_ context.Context, id, userID int64) error {
	if _, ok := s.playlists[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.followers.Remove(id, userID)
	return nil
}

func (s *InMemory) DeleteByOwner(_ context.Context, ownerID int64) error {
	for id, p := range s.playlists {
		if p.OwnerID == ownerID {
			s.drop(id)
		}
	}
	return nil
}

func (s *InMemory) ForgetUser(_ context.Context, userID int64) error {
	s.followers.DropRight(userID)
	return nil
}

func (s *InMemory) RemoveTrack(_ context.Context, trackID int64) error {
	s.tracks.DropRight(trackID)
	return nil
}

var _ Store = (*InMemory)(nil)
