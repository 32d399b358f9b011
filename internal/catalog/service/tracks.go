package service

import (
	"context"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
)

func (s *Service) CreateTrack(ctx context.Context, req *models.CreateTrackRequest) (*models.TrackResponse, error) {
	out, err := s.CreateTracks(ctx, []*models.CreateTrackRequest{req})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateTracks creates every track or none. The album and artist ids of each
// request must resolve.
func (s *Service) CreateTracks(ctx context.Context, reqs []*models.CreateTrackRequest) (out []*models.TrackResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateTracks", tracer.Int(tracer.AttrBatchSize, len(reqs)))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		out = make([]*models.TrackResponse, 0, len(reqs))
		for _, req := range reqs {
			if err := resolveTrackRefs(ctx, st, req.AlbumID, req.ArtistIDs); err != nil {
				return err
			}
			track := req.Track()
			if err := st.Catalog.CreateTrack(ctx, track); err != nil {
				return translate(err, entityTrack, "failed to create track")
			}
			out = append(out, models.NewTrackResponse(track))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range out {
		s.metrics.IncMutation("track", "create")
	}
	return out, nil
}

func (s *Service) GetTrack(ctx context.Context, id int64) (resp *models.TrackResponse, err error) {
	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		track, err := st.Catalog.FindTrack(ctx, id)
		if err != nil {
			return translate(err, entityTrack, "failed to load track")
		}
		resp = models.NewTrackResponse(track)
		return nil
	})
	return resp, err
}

func (s *Service) ListTracks(ctx context.Context) ([]*models.TrackResponse, error) {
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return st.Catalog.ListTracks(ctx)
	})
}

func (s *Service) SearchTracks(ctx context.Context, name string) ([]*models.TrackResponse, error) {
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return st.Catalog.SearchTracks(ctx, name)
	})
}

func (s *Service) TracksByArtist(ctx context.Context, artistID int64) ([]*models.TrackResponse, error) {
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return artistTracks(ctx, st, artistID)
	})
}

func (s *Service) TracksByAlbum(ctx context.Context, albumID int64) ([]*models.TrackResponse, error) {
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return albumTracks(ctx, st, albumID)
	})
}

func (s *Service) SavedTracks(ctx context.Context, userID int64) ([]*models.TrackResponse, error) {
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return st.Catalog.SavedTracks(ctx, userID)
	})
}

// PopularTracks lists tracks at or above minPopularity, most popular first.
// A nil minPopularity uses the configured default.
func (s *Service) PopularTracks(ctx context.Context, minPopularity *int) ([]*models.TrackResponse, error) {
	threshold := s.popularTracks
	if minPopularity != nil {
		threshold = *minPopularity
	}
	return s.tracks(ctx, func(ctx context.Context, st storage.Stores) ([]*models.Track, error) {
		return st.Catalog.PopularTracks(ctx, threshold)
	})
}

func (s *Service) tracks(ctx context.Context, load func(context.Context, storage.Stores) ([]*models.Track, error)) ([]*models.TrackResponse, error) {
	var tracks []*models.Track
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		tracks, err = load(ctx, st)
		return translate(err, entityTrack, "failed to list tracks")
	})
	if err != nil {
		return nil, err
	}
	return models.NewTrackResponses(tracks), nil
}

func (s *Service) UpdateTrack(ctx context.Context, id int64, req *models.UpdateTrackRequest) (resp *models.TrackResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.UpdateTrack", tracer.Int64(tracer.AttrTrackID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		track, err := st.Catalog.FindTrack(ctx, id)
		if err != nil {
			return translate(err, entityTrack, "failed to load track")
		}
		var artistIDs []int64
		if req.ArtistIDs != nil {
			artistIDs = *req.ArtistIDs
		}
		if err := resolveTrackRefs(ctx, st, req.AlbumID, artistIDs); err != nil {
			return err
		}
		req.Apply(track)
		if err := st.Catalog.UpdateTrack(ctx, track); err != nil {
			return translate(err, entityTrack, "failed to update track")
		}
		resp = models.NewTrackResponse(track)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("track", "update")
	return resp, nil
}

// DeleteTrack removes the track from every artist, album, playlist and saved set.
func (s *Service) DeleteTrack(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteTrack", tracer.Int64(tracer.AttrTrackID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if err := st.Catalog.DeleteTrack(ctx, id); err != nil {
			return translate(err, entityTrack, "failed to delete track")
		}
		return translate(st.Playlists.RemoveTrack(ctx, id), entityTrack, "failed to remove track from playlists")
	})
	if err == nil {
		s.metrics.IncMutation("track", "delete")
	}
	return err
}

func (s *Service) SaveTrack(ctx context.Context, userID, id int64) error {
	return s.mutateTrack(ctx, id, "save", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.SaveTrack(ctx, userID, id)
	})
}

func (s *Service) UnsaveTrack(ctx context.Context, userID, id int64) error {
	return s.mutateTrack(ctx, id, "unsave", func(ctx context.Context, st storage.Stores) error {
		return st.Catalog.UnsaveTrack(ctx, userID, id)
	})
}

func (s *Service) mutateTrack(ctx context.Context, id int64, op string, fn func(context.Context, storage.Stores) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Track."+op, tracer.Int64(tracer.AttrTrackID, id))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Catalog.FindTrack(ctx, id); err != nil {
			return translate(err, entityTrack, "failed to load track")
		}
		return translate(fn(ctx, st), entityTrack, "failed to "+op+" track")
	})
	if err == nil {
		s.metrics.IncMutation("track", op)
	}
	return err
}

func resolveTrackRefs(ctx context.Context, st storage.Stores, albumID *int64, artistIDs []int64) error {
	if albumID != nil && *albumID != 0 {
		if err := requireAll(ctx, st.Catalog.MissingAlbums, []int64{*albumID}, entityAlbum); err != nil {
			return err
		}
	}
	return requireAll(ctx, st.Catalog.MissingArtists, artistIDs, entityArtist)
}
