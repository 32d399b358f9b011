package service

import (
	"context"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
)

func (s *Service) CreateArtist(ctx context.Context, req *models.CreateArtistRequest) (*models.ArtistResponse, error) {
	out, err := s.CreateArtists(ctx, []*models.CreateArtistRequest{req})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateArtists creates every artist or none.
func (s *Service) CreateArtists(ctx context.Context, reqs []*models.CreateArtistRequest) (out []*models.ArtistResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateArtists", tracer.Int(tracer.AttrBatchSize, len(reqs)))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		out = make([]*models.ArtistResponse, 0, len(reqs))
		for _, req := range reqs {
			artist := req.Artist()
			if err := st.Catalog.CreateArtist(ctx, artist); err != nil {
				return translate(err, entityArtist, "failed to create artist")
			}
			out = append(out, models.NewArtistResponse(artist))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range out {
		s.metrics.IncMutation("artist", "create")
	}
	return out, nil
}

// GetArtist reads an artist; albums and tracks are embedded only when asked for.
func (s *Service) GetArtist(ctx context.Context, id int64, expandAlbums, expandTracks bool) (resp *models.ArtistDetailResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetArtist",
		tracer.Int64(tracer.AttrArtistID, id),
		tracer.Bool("expand.albums", expandAlbums),
		tracer.Bool("expand.tracks", expandTracks),
	)
	defer func() { span.End(err) }()

	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		g, err := st.Catalog.ArtistGraph(ctx, id, expandAlbums, expandTracks)
		if err != nil {
			return translate(err, entityArtist, "failed to load artist")
		}
		if expandAlbums && g.Albums == nil {
			g.Albums = []*models.Album{}
		}
		if expandTracks && g.Tracks == nil {
			g.Tracks = []*models.Track{}
		}
		resp = models.NewArtistDetailResponse(g)
		return nil
	})
	return resp, err
}

func (s *Service) ListArtists(ctx context.Context) ([]*models.ArtistResponse, error) {
	return s.artists(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Artist, error) {
		return st.Catalog.ListArtists(ctx)
	})
}

func (s *Service) SearchArtists(ctx context.Context, name string) ([]*models.ArtistResponse, error) {
	return s.artists(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Artist, error) {
		return st.Catalog.SearchArtists(ctx, name)
	})
}

// PopularArtists lists artists at or above minPopularity, most popular first.
// A nil minPopularity uses the configured default.
func (s *Service) PopularArtists(ctx context.Context, minPopularity *int) ([]*models.ArtistResponse, error) {
	threshold := s.popularArtists
	if minPopularity != nil {
		threshold = *minPopularity
	}
	return s.artists(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Artist, error) {
		return st.Catalog.PopularArtists(ctx, threshold)
	})
}

func (s *Service) artists(ctx context.Context, load func(context.Context, storage.Stores) ([]*models.Artist, error)) ([]*models.ArtistResponse, error) {
	var artists []*models.Artist
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		artists, err = load(ctx, st)
		return translate(err, entityArtist, "failed to list artists")
	})
	if err != nil {
		return nil, err
	}
	return models.NewArtistResponses(artists), nil
}

func (s *Service) UpdateArtist(ctx context.Context, id int64, req *models.UpdateArtistRequest) (resp *models.ArtistResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.UpdateArtist", tracer.Int64(tracer.AttrArtistID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		artist, err := st.Catalog.FindArtist(ctx, id)
		if err != nil {
			return translate(err, entityArtist, "failed to load artist")
		}
		req.Apply(artist)
		if err := st.Catalog.UpdateArtist(ctx, artist); err != nil {
			return translate(err, entityArtist, "failed to update artist")
		}
		resp = models.NewArtistResponse(artist)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("artist", "update")
	return resp, nil
}

// DeleteArtist removes the artist from every album, track and follower set.
func (s *Service) DeleteArtist(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteArtist", tracer.Int64(tracer.AttrArtistID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		return translate(st.Catalog.DeleteArtist(ctx, id), entityArtist, "failed to delete artist")
	})
	if err == nil {
		s.metrics.IncMutation("artist", "delete")
	}
	return err
}

func (s *Service) FollowArtist(ctx context.Context, userID, id int64) error {
	return s.mutateArtist(ctx, id, "follow", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.FollowArtist(ctx, userID, id)
	})
}

func (s *Service) UnfollowArtist(ctx context.Context, userID, id int64) error {
	return s.mutateArtist(ctx, id, "unfollow", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.UnfollowArtist(ctx, userID, id)
	})
}

func (s *Service) ArtistTracks(ctx context.Context, id int64) ([]*models.TrackResponse, error) {
	var tracks []*models.Track
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		tracks, err = artistTracks(ctx, st, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.NewTrackResponses(tracks), nil
}

// LinkArtistTracks credits the artist on every track. Any unknown track id
// fails the whole call.
func (s *Service) LinkArtistTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error) {
	return s.relinkArtistTracks(ctx, id, trackIDs, "link_tracks", func(st storage.Stores) linkFunc { return st.Catalog.LinkArtistTracks })
}

func (s *Service) UnlinkArtistTracks(ctx context.Context, id int64, trackIDs []int64) ([]*models.TrackResponse, error) {
	return s.relinkArtistTracks(ctx, id, trackIDs, "unlink_tracks", func(st storage.Stores) linkFunc { return st.Catalog.UnlinkArtistTracks })
}

func (s *Service) relinkArtistTracks(ctx context.Context, id int64, trackIDs []int64, op string, link func(storage.Stores) linkFunc) (out []*models.TrackResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ArtistTracks."+op,
		tracer.Int64(tracer.AttrArtistID, id),
		tracer.Int(tracer.AttrBatchSize, len(trackIDs)),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindArtist(ctx, id); err != nil {
			return translate(err, entityArtist, "failed to load artist")
		}
		if err := requireAll(ctx, st.Catalog.MissingTracks, trackIDs, entityTrack); err != nil {
			return err
		}
		if err := link(st)(ctx, id, trackIDs); err != nil {
			return translate(err, entityTrack, "failed to update artist tracks")
		}
		tracks, err := artistTracks(ctx, st, id)
		out = models.NewTrackResponses(tracks)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("artist", op)
	return out, nil
}

func (s *Service) ArtistAlbums(ctx context.Context, id int64) ([]*models.AlbumResponse, error) {
	var albums []*models.Album
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		albums, err = artistAlbums(ctx, st, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.NewAlbumResponses(albums), nil
}

// LinkArtistAlbums credits the artist on every album. Any unknown album id
// fails the whole call.
func (s *Service) LinkArtistAlbums(ctx context.Context, id int64, albumIDs []int64) ([]*models.AlbumResponse, error) {
	return s.relinkArtistAlbums(ctx, id, albumIDs, "link_albums", func(st storage.Stores) linkFunc { return st.Catalog.LinkArtistAlbums })
}

func (s *Service) UnlinkArtistAlbums(ctx context.Context, id int64, albumIDs []int64) ([]*models.AlbumResponse, error) {
	return s.relinkArtistAlbums(ctx, id, albumIDs, "unlink_albums", func(st storage.Stores) linkFunc { return st.Catalog.UnlinkArtistAlbums })
}

func (s *Service) relinkArtistAlbums(ctx context.Context, id int64, albumIDs []int64, op string, link func(storage.Stores) linkFunc) (out []*models.AlbumResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ArtistAlbums."+op,
		tracer.Int64(tracer.AttrArtistID, id),
		tracer.Int(tracer.AttrBatchSize, len(albumIDs)),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindArtist(ctx, id); err != nil {
			return translate(err, entityArtist, "failed to load artist")
		}
		if err := requireAll(ctx, st.Catalog.MissingAlbums, albumIDs, entityAlbum); err != nil {
			return err
		}
		if err := link(st)(ctx, id, albumIDs); err != nil {
			return translate(err, entityAlbum, "failed to update artist albums")
		}
		albums, err := artistAlbums(ctx, st, id)
		out = models.NewAlbumResponses(albums)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("artist", op)
	return out, nil
}

func (s *Service) mutateArtist(ctx context.Context, id int64, op string, fn func(context.Context, storage.Stores) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Artist."+op, tracer.Int64(tracer.AttrArtistID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindArtist(ctx, id); err != nil {
			return translate(err, entityArtist, "failed to load artist")
		}
		return translate(fn(ctx, st), entityArtist, "failed to "+op+" artist")
	})
	if err == nil {
		s.metrics.IncMutation("artist", op)
	}
	return err
}

func artistTracks(ctx context.Context, st storage.Stores, id int64) ([]*models.Track, error) {
	if _, err := st.Catalog.FindArtist(ctx, id); err != nil {
		return nil, translate(err, entityArtist, "failed to load artist")
	}
	tracks, err := st.Catalog.TracksByArtist(ctx, id)
	return tracks, translate(err, entityTrack, "failed to list tracks")
}

func artistAlbums(ctx context.Context, st storage.Stores, id int64) ([]*models.Album, error) {
	if _, err := st.Catalog.FindArtist(ctx, id); err != nil {
		return nil, translate(err, entityArtist, "failed to load artist")
	}
	albums, err := st.Catalog.AlbumsByArtist(ctx, id)
	return albums, translate(err, entityAlbum, "failed to list albums")
}
