package service

import (
	"context"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/validation"
)

func (s *Service) CreateAlbum(ctx context.Context, req *models.CreateAlbumRequest) (*models.AlbumResponse, error) {
	out, err := s.CreateAlbums(ctx, []*models.CreateAlbumRequest{req})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateAlbums creates every album or none. Each artist id must resolve.
func (s *Service) CreateAlbums(ctx context.Context, reqs []*models.CreateAlbumRequest) (out []*models.AlbumResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateAlbums", tracer.Int(tracer.AttrBatchSize, len(reqs)))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		out = make([]*models.AlbumResponse, 0, len(reqs))
		for _, req := range reqs {
			if req.AlbumType == "" {
				req.AlbumType = models.AlbumTypeAlbum
			}
			if err := requireAll(ctx, st.Catalog.MissingArtists, req.ArtistIDs, entityArtist); err != nil {
				return err
			}
			album := req.Album()
			if err := st.Catalog.CreateAlbum(ctx, album); err != nil {
				return translate(err, entityAlbum, "failed to create album")
			}
			out = append(out, models.NewAlbumResponse(album))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range out {
		s.metrics.IncMutation("album", "create")
	}
	return out, nil
}

// GetAlbum reads an album with its artists, tracks and followers.
func (s *Service) GetAlbum(ctx context.Context, id int64) (resp *models.AlbumDetailResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetAlbum", tracer.Int64(tracer.AttrAlbumID, id))
	defer func() { span.End(err) }()

	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		g, err := st.Catalog.AlbumGraph(ctx, id)
		if err != nil {
			return translate(err, entityAlbum, "failed to load album")
		}
		users, err := st.Users.FindByIDs(ctx, g.FollowerIDs)
		if err != nil {
			return translate(err, "User", "failed to load album followers")
		}
		followers := make([]*models.FollowerRef, 0, len(users))
		for _, u := range users {
			followers = append(followers, &models.FollowerRef{ID: u.ID, DisplayName: u.DisplayName, ImageURL: u.ImageURL})
		}
		resp = models.NewAlbumDetailResponse(g, followers)
		return nil
	})
	return resp, err
}

func (s *Service) ListAlbums(ctx context.Context) ([]*models.AlbumResponse, error) {
	return s.albums(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Album, error) {
		return st.Catalog.ListAlbums(ctx)
	})
}

func (s *Service) SearchAlbums(ctx context.Context, name string) ([]*models.AlbumResponse, error) {
	return s.albums(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Album, error) {
		return st.Catalog.SearchAlbums(ctx, name)
	})
}

func (s *Service) AlbumsByArtist(ctx context.Context, artistID int64) ([]*models.AlbumResponse, error) {
	return s.albums(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Album, error) {
		return artistAlbums(ctx, st, artistID)
	})
}

// NewReleases lists albums released strictly after date, newest first.
// date must be a calendar date in YYYY-MM-DD form.
func (s *Service) NewReleases(ctx context.Context, date string) ([]*models.AlbumResponse, error) {
	if !validation.IsISODate(date) {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "date must be a date in YYYY-MM-DD format")
	}
	return s.albums(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Album, error) {
		return st.Catalog.AlbumsReleasedAfter(ctx, date)
	})
}

func (s *Service) albums(ctx context.Context, load func(context.Context, storage.Stores) ([]*models.Album, error)) ([]*models.AlbumResponse, error) {
	var albums []*models.Album
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		albums, err = load(ctx, st)
		return translate(err, entityAlbum, "failed to list albums")
	})
	if err != nil {
		return nil, err
	}
	return models.NewAlbumResponses(albums), nil
}

func (s *Service) UpdateAlbum(ctx context.Context, id int64, req *models.UpdateAlbumRequest) (resp *models.AlbumResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.UpdateAlbum", tracer.Int64(tracer.AttrAlbumID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		album, err := st.Catalog.FindAlbum(ctx, id)
		if err != nil {
			return translate(err, entityAlbum, "failed to load album")
		}
		if req.ArtistIDs != nil {
			if err := requireAll(ctx, st.Catalog.MissingArtists, *req.ArtistIDs, entityArtist); err != nil {
				return err
			}
		}
		req.Apply(album)
		if err := st.Catalog.UpdateAlbum(ctx, album); err != nil {
			return translate(err, entityAlbum, "failed to update album")
		}
		resp = models.NewAlbumResponse(album)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("album", "update")
	return resp, nil
}

// DeleteAlbum removes the album. Its tracks are kept and left without an album.
func (s *Service) DeleteAlbum(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteAlbum", tracer.Int64(tracer.AttrAlbumID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		return translate(st.Catalog.DeleteAlbum(ctx, id), entityAlbum, "failed to delete album")
	})
	if err == nil {
		s.metrics.IncMutation("album", "delete")
	}
	return err
}

func (s *Service) SaveAlbum(ctx context.Context, userID, id int64) error {
	return s.mutateAlbum(ctx, id, "save", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.SaveAlbum(ctx, userID, id)
	})
}

func (s *Service) UnsaveAlbum(ctx context.Context, userID, id int64) error {
	return s.mutateAlbum(ctx, id, "unsave", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.UnsaveAlbum(ctx, userID, id)
	})
}

func (s *Service) AlbumTracks(ctx context.Context, id int64) ([]*models.TrackResponse, error) {
	var tracks []*models.Track
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		tracks, err = albumTracks(ctx, st, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.NewTrackResponses(tracks), nil
}

// AddAlbumTracks moves the tracks into the album. Any unknown track id fails
// the whole call and no track changes album.
func (s *Service) AddAlbumTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error) {
	return s.relinkAlbumTracks(ctx, id, trackIDs, "add_tracks", func(st storage.Stores) linkFunc { return st.Catalog.AttachTracks })
}

// RemoveAlbumTracks detaches the tracks that belong to the album.
func (s *Service) RemoveAlbumTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error) {
	return s.relinkAlbumTracks(ctx, id, trackIDs, "remove_tracks", func(st storage.Stores) linkFunc { return st.Catalog.DetachTracks })
}

func (s *Service) relinkAlbumTracks(ctx context.Context, id int64, trackIDs []int64, op string, link func(storage.Stores) linkFunc) (out []*models.TrackResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.AlbumTracks."+op,
		tracer.Int64(tracer.AttrAlbumID, id),
		tracer.Int(tracer.AttrBatchSize, len(trackIDs)),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindAlbum(ctx, id); err != nil {
			return translate(err, entityAlbum, "failed to load album")
		}
		if err := requireAll(ctx, st.Catalog.MissingTracks, trackIDs, entityTrack); err != nil {
			return err
		}
		if err := link(st)(ctx, id, trackIDs); err != nil {
			return translate(err, entityTrack, "failed to update album tracks")
		}
		tracks, err := albumTracks(ctx, st, id)
		out = models.NewTrackResponses(tracks)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("album", op)
	return out, nil
}

func (s *Service) mutateAlbum(ctx context.Context, id int64, op string, fn func(context.Context, storage.Stores) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Album."+op, tracer.Int64(tracer.AttrAlbumID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindAlbum(ctx, id); err != nil {
			return translate(err, entityAlbum, "failed to load album")
		}
		return translate(fn(ctx, st), entityAlbum, "failed to "+op+" album")
	})
	if err == nil {
		s.metrics.IncMutation("album", op)
	}
	return err
}

func albumTracks(ctx context.Context, st storage.Stores, id int64) ([]*models.Track, error) {
	if _, err := st.Catalog.FindAlbum(ctx, id); err != nil {
		return nil, translate(err, entityAlbum, "failed to load album")
	}
	tracks, err := st.Catalog.TracksByAlbum(ctx, id)
	return tracks, translate(err, entityTrack, "failed to list tracks")
}
