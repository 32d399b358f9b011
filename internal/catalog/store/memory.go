package store

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/pkg/platform/linkset"
	"rhymcaffer/pkg/platform/middleware/requesttime"
	"rhymcaffer/pkg/platform/sentinel"
	str "rhymcaffer/pkg/string"
)

// InMemory is a map-backed Store. Link sets live in linkset indexes and are
// projected onto Album.ArtistIDs and Track.ArtistIDs on read. It is not
// synchronized; storage.Memory serializes access.
type InMemory struct {
	nextArtistID int64
	nextAlbumID  int64
	nextTrackID  int64

	artists map[int64]*models.Artist
	albums  map[int64]*models.Album
	tracks  map[int64]*models.Track

	albumArtists    *linkset.Links // album -> artist
	trackArtists    *linkset.Links // track -> artist
	artistFollowers *linkset.Links // artist -> user
	albumFollowers  *linkset.Links // album -> user
	savedTracks     *linkset.Links // user -> track
}

func NewInMemory() *InMemory {
	return &InMemory{
		artists:         make(map[int64]*models.Artist),
		albums:          make(map[int64]*models.Album),
		tracks:          make(map[int64]*models.Track),
		albumArtists:    linkset.New(),
		trackArtists:    linkset.New(),
		artistFollowers: linkset.New(),
		albumFollowers:  linkset.New(),
		savedTracks:     linkset.New(),
	}
}

// Clone returns a deep copy used as the working set of a transaction.
func (s *InMemory) Clone() *InMemory {
	c := &InMemory{
		nextArtistID:    s.nextArtistID,
		nextAlbumID:     s.nextAlbumID,
		nextTrackID:     s.nextTrackID,
		artists:         make(map[int64]*models.Artist, len(s.artists)),
		albums:          make(map[int64]*models.Album, len(s.albums)),
		tracks:          make(map[int64]*models.Track, len(s.tracks)),
		albumArtists:    s.albumArtists.Clone(),
		trackArtists:    s.trackArtists.Clone(),
		artistFollowers: s.artistFollowers.Clone(),
		albumFollowers:  s.albumFollowers.Clone(),
		savedTracks:     s.savedTracks.Clone(),
	}
	for id, a := range s.artists {
		c.artists[id] = a.Clone()
	}
	for id, a := range s.albums {
		c.albums[id] = a.Clone()
	}
	for id, t := range s.tracks {
		c.tracks[id] = t.Clone()
	}
	return c
}

// --- artists ---

func (s *InMemory) CreateArtist(ctx context.Context, artist *models.Artist) error {
	s.nextArtistID++
	now := requesttime.Now(ctx)
	artist.ID = s.nextArtistID
	artist.CreatedAt, artist.UpdatedAt = now, now
	s.artists[artist.ID] = artist.Clone()
	return nil
}

func (s *InMemory) UpdateArtist(ctx context.Context, artist *models.Artist) error {
	existing, ok := s.artists[artist.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	artist.CreatedAt = existing.CreatedAt
	artist.UpdatedAt = requesttime.Now(ctx)
	s.artists[artist.ID] = artist.Clone()
	return nil
}

func (s *InMemory) DeleteArtist(_ context.Context, id int64) error {
	if _, ok := s.artists[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.artists, id)
	s.albumArtists.DropRight(id)
	s.trackArtists.DropRight(id)
	s.artistFollowers.DropLeft(id)
	return nil
}

func (s *InMemory) FindArtist(_ context.Context, id int64) (*models.Artist, error) {
	a, ok := s.artists[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemory) FindArtists(_ context.Context, ids []int64) ([]*models.Artist, error) {
	return collect(s.artists, sortedUnique(ids), (*models.Artist).Clone), nil
}

func (s *InMemory) ListArtists(_ context.Context) ([]*models.Artist, error) {
	return filter(s.artists, func(*models.Artist) bool { return true }, (*models.Artist).Clone), nil
}

func (s *InMemory) SearchArtists(_ context.Context, name string) ([]*models.Artist, error) {
	return filter(s.artists, func(a *models.Artist) bool { return str.ContainsFold(a.Name, name) }, (*models.Artist).Clone), nil
}

func (s *InMemory) PopularArtists(_ context.Context, min int) ([]*models.Artist, error) {
	out := filter(s.artists, func(a *models.Artist) bool { return a.Popularity >= min }, (*models.Artist).Clone)
	slices.SortStableFunc(out, func(a, b *models.Artist) int {
		return cmp.Or(cmp.Compare(b.Popularity, a.Popularity), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *InMemory) ArtistGraph(ctx context.Context, id int64, withAlbums, withTracks bool) (*models.ArtistGraph, error) {
	artist, err := s.FindArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	g := &models.ArtistGraph{Artist: artist, FollowerIDs: s.artistFollowers.Right(id)}
	if withAlbums {
		g.Albums, _ = s.AlbumsByArtist(ctx, id)
	}
	if withTracks {
		g.Tracks, _ = s.TracksByArtist(ctx, id)
	}
	return g, nil
}

// --- albums ---

func (s *InMemory) CreateAlbum(ctx context.Context, album *models.Album) error {
	s.nextAlbumID++
	now := requesttime.Now(ctx)
	album.ID = s.nextAlbumID
	album.CreatedAt, album.UpdatedAt = now, now
	album.ArtistIDs = sortedUnique(album.ArtistIDs)
	s.albums[album.ID] = album.Clone()
	s.albumArtists.Replace(album.ID, album.ArtistIDs)
	return nil
}

func (s *InMemory) UpdateAlbum(ctx context.Context, album *models.Album) error {
	existing, ok := s.albums[album.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	album.CreatedAt = existing.CreatedAt
	album.UpdatedAt = requesttime.Now(ctx)
	album.ArtistIDs = sortedUnique(album.ArtistIDs)
	s.albums[album.ID] = album.Clone()
	s.albumArtists.Replace(album.ID, album.ArtistIDs)
	return nil
}

func (s *InMemory) DeleteAlbum(_ context.Context, id int64) error {
	if _, ok := s.albums[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.albums, id)
	s.albumArtists.DropLeft(id)
	s.albumFollowers.DropLeft(id)
	for _, t := range s.tracks {
		if t.AlbumID != nil && *t.AlbumID == id {
			t.AlbumID = nil
		}
	}
	return nil
}

func (s *InMemory) FindAlbum(_ context.Context, id int64) (*models.Album, error) {
	if _, ok := s.albums[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.album(id), nil
}

// album returns a projected copy with the current artist links.
func (s *InMemory) album(id int64) *models.Album {
	a := s.albums[id].Clone()
	a.ArtistIDs = s.albumArtists.Right(id)
	return a
}

func (s *InMemory) FindAlbums(_ context.Context, ids []int64) ([]*models.Album, error) {
	return collect(s.albums, sortedUnique(ids), func(a *models.Album) *models.Album { return s.album(a.ID) }), nil
}

func (s *InMemory) ListAlbums(_ context.Context) ([]*models.Album, error) {
	return s.filterAlbums(func(*models.Album) bool { return true }), nil
}

func (s *InMemory) SearchAlbums(_ context.Context, name string) ([]*models.Album, error) {
	return s.filterAlbums(func(a *models.Album) bool { return str.ContainsFold(a.Name, name) }), nil
}

func (s *InMemory) AlbumsByArtist(_ context.Context, artistID int64) ([]*models.Album, error) {
	return s.filterAlbums(func(a *models.Album) bool { return s.albumArtists.Has(a.ID, artistID) }), nil
}

func (s *InMemory) AlbumsReleasedAfter(_ context.Context, date string) ([]*models.Album, error) {
	out := s.filterAlbums(func(a *models.Album) bool { return a.ReleaseDate > date })
	slices.SortStableFunc(out, func(a, b *models.Album) int {
		return cmp.Or(cmp.Compare(b.ReleaseDate, a.ReleaseDate), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

func (s *InMemory) filterAlbums(keep func(*models.Album) bool) []*models.Album {
	return filter(s.albums, keep, func(a *models.Album) *models.Album { return s.album(a.ID) })
}

func (s *InMemory) AlbumGraph(ctx context.Context, id int64) (*models.AlbumGraph, error) {
	album, err := s.FindAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	artists, _ := s.FindArtists(ctx, album.ArtistIDs)
	tracks, _ := s.TracksByAlbum(ctx, id)
	return &models.AlbumGraph{
		Album:       album,
		Artists:     artists,
		Tracks:      tracks,
		FollowerIDs: s.albumFollowers.Right(id),
	}, nil
}

// --- tracks ---

func (s *InMemory) CreateTrack(ctx context.Context, track *models.Track) error {
	s.nextTrackID++
	now := requesttime.Now(ctx)
	track.ID = s.nextTrackID
	track.CreatedAt, track.UpdatedAt = now, now
	track.ArtistIDs = sortedUnique(track.ArtistIDs)
	s.tracks[track.ID] = track.Clone()
	s.trackArtists.Replace(track.ID, track.ArtistIDs)
	return nil
}

func (s *InMemory) UpdateTrack(ctx context.Context, track *models.Track) error {
	existing, ok := s.tracks[track.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	track.CreatedAt = existing.CreatedAt
	track.UpdatedAt = requesttime.Now(ctx)
	track.ArtistIDs = sortedUnique(track.ArtistIDs)
	s.tracks[track.ID] = track.Clone()
	s.trackArtists.Replace(track.ID, track.ArtistIDs)
	return nil
}

func (s *InMemory) DeleteTrack(_ context.Context, id int64) error {
	if _, ok := s.tracks[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tracks, id)
	s.trackArtists.DropLeft(id)
	s.savedTracks.DropRight(id)
	return nil
}

func (s *InMemory) FindTrack(_ context.Context, id int64) (*models.Track, error) {
	if _, ok := s.tracks[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.track(id), nil
}

func (s *InMemory) track(id int64) *models.Track {
	t := s.tracks[id].Clone()
	t.ArtistIDs = s.trackArtists.Right(id)
	return t
}

func (s *InMemory) FindTracks(_ context.Context, ids []int64) ([]*models.Track, error) {
	return collect(s.tracks, sortedUnique(ids), func(t *models.Track) *models.Track { return s.track(t.ID) }), nil
}

func (s *InMemory) ListTracks(_ context.Context) ([]*models.Track, error) {
	return s.filterTracks(func(*models.Track) bool { return true }), nil
}

func (s *InMemory) SearchTracks(_ context.Context, name string) ([]*models.Track, error) {
	return s.filterTracks(func(t *models.Track) bool { return str.ContainsFold(t.Name, name) }), nil
}

func (s *InMemory) TracksByArtist(_ context.Context, artistID int64) ([]*models.Track, error) {
	return s.filterTracks(func(t *models.Track) bool { return s.trackArtists.Has(t.ID, artistID) }), nil
}

func (s *InMemory) TracksByAlbum(_ context.Context, albumID int64) ([]*models.Track, error) {
	return s.filterTracks(func(t *models.Track) bool { return t.AlbumID != nil && *t.AlbumID == albumID }), nil
}

func (s *InMemory) PopularTracks(_ context.Context, min int) ([]*models.Track, error) {
	out := s.filterTracks(func(t *models.Track) bool { return t.Popularity >= min })
	slices.SortStableFunc(out, func(a, b *models.Track) int {
		return cmp.Or(cmp.Compare(b.Popularity, a.Popularity), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *InMemory) filterTracks(keep func(*models.Track) bool) []*models.Track {
	return filter(s.tracks, keep, func(t *models.Track) *models.Track { return s.track(t.ID) })
}

// --- existence ---

func (s *InMemory) MissingArtists(_ context.Context, ids []int64) ([]int64, error) {
	return missing(s.artists, ids), nil
}

func (s *InMemory) MissingAlbums(_ context.Context, ids []int64) ([]int64, error) {
	return missing(s.albums, ids), nil
}

func (s *InMemory) MissingTracks(_ context.Context, ids []int64) ([]int64, error) {
	return missing(s.tracks, ids), nil
}

// --- links ---

func (s *InMemory) LinkArtistTracks(_ context.Context, artistID int64, trackIDs []int64) error {
	for _, id := range trackIDs {
		s.trackArtists.Add(id, artistID)
	}
	return nil
}

func (s *InMemory) UnlinkArtistTracks(_ context.Context, artistID int64, trackIDs []int64) error {
	for _, id := range trackIDs {
		s.trackArtists.Remove(id, artistID)
	}
	return nil
}

func (s *InMemory) LinkArtistAlbums(_ context.Context, artistID int64, albumIDs []int64) error {
	for _, id := range albumIDs {
		s.albumArtists.Add(id, artistID)
	}
	return nil
}

func (s *InMemory) UnlinkArtistAlbums(_ context.Context, artistID int64, albumIDs []int64) error {
	for _, id := range albumIDs {
		s.albumArtists.Remove(id, artistID)
	}
	return nil
}

func (s *InMemory) AttachTracks(_ context.Context, albumID int64, trackIDs []int64) error {
	for _, id := range trackIDs {
		if t, ok := s.tracks[id]; ok {
			a := albumID
			t.AlbumID = &a
		}
	}
	return nil
}

func (s *InMemory) DetachTracks(_ context.Context, albumID int64, trackIDs []int64) error {
	for _, id := range trackIDs {
		if t, ok := s.tracks[id]; ok && t.AlbumID != nil && *t.AlbumID == albumID {
			t.AlbumID = nil
		}
	}
	return nil
}

// --- follow and save sets ---

func (s *InMemory) FollowArtist(_ context.Context, userID, artistID int64) error {
	s.artistFollowers.Add(artistID, userID)
	return nil
}

func (s *InMemory) UnfollowArtist(_ context.Context, userID, artistID int64) error {
	s.artistFollowers.Remove(artistID, userID)
	return nil
}

func (s *InMemory) FollowedArtistIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.artistFollowers.Left(userID), nil
}

func (s *InMemory) SaveAlbum(_ context.Context, userID, albumID int64) error {
	s.albumFollowers.Add(albumID, userID)
	return nil
}

func (s *InMemory) UnsaveAlbum(_ context.Context, userID, albumID int64) error {
	s.albumFollowers.Remove(albumID, userID)
	return nil
}

func (s *InMemory) SavedAlbumIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.albumFollowers.Left(userID), nil
}

func (s *InMemory) SaveTrack(_ context.Context, userID, trackID int64) error {
	s.savedTracks.Add(userID, trackID)
	return nil
}

func (s *InMemory) UnsaveTrack(_ context.Context, userID, trackID int64) error {
	s.savedTracks.Remove(userID, trackID)
	return nil
}

func (s *InMemory) SavedTrackIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.savedTracks.Right(userID), nil
}

func (s *InMemory) SavedTracks(ctx context.Context, userID int64) ([]*models.Track, error) {
	return s.FindTracks(ctx, s.savedTracks.Right(userID))
}

func (s *InMemory) ForgetUser(_ context.Context, userID int64) error {
	s.artistFollowers.DropRight(userID)
	s.albumFollowers.DropRight(userID)
	s.savedTracks.DropLeft(userID)
	return nil
}

// --- helpers ---

func filter[T any](m map[int64]*T, keep func(*T) bool, project func(*T) *T) []*T {
	out := make([]*T, 0)
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if v := m[id]; keep(v) {
			out = append(out, project(v))
		}
	}
	return out
}

func collect[T any](m map[int64]*T, ids []int64, project func(*T) *T) []*T {
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, project(v))
		}
	}
	return out
}

func missing[T any](m map[int64]*T, ids []int64) []int64 {
	out := make([]int64, 0)
	for _, id := range sortedUnique(ids) {
		if _, ok := m[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func sortedUnique(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []int64{}
	}
	return out
}

var _ Store = (*InMemory)(nil)
