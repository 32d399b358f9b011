package service

import (
	"context"

	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/playlist/models"
	"rhymcaffer/internal/storage"
)

// Create stores a playlist owned by the caller. Every initial track must resolve.
func (s *Service) Create(ctx context.Context, callerID int64, req *models.CreatePlaylistRequest) (resp *models.PlaylistResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "playlist.Create", tracer.Int64(tracer.AttrCallerID, callerID))
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if err := requireTracks(ctx, st, req.TrackIDs); err != nil {
			return err
		}
		p := req.Playlist(callerID)
		if err := st.Playlists.Create(ctx, p); err != nil {
			return translate(err, "failed to create playlist")
		}
		resp = models.NewPlaylistResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("playlist", "create")
	return resp, nil
}

// Get returns the playlist when it is public or the caller owns or follows it.
func (s *Service) Get(ctx context.Context, callerID int64, isAdmin bool, id int64) (resp *models.PlaylistResponse, err error) {
	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		p, err := load(ctx, st, id, callerID, isAdmin, canRead, msgNoReadAccess)
		if err != nil {
			return err
		}
		resp = models.NewPlaylistResponse(p)
		return nil
	})
	return resp, err
}

// List returns every playlist the caller may read.
func (s *Service) List(ctx context.Context, callerID int64, isAdmin bool) ([]*models.PlaylistResponse, error) {
	return s.readable(ctx, callerID, isAdmin, func(ctx context.Context, st storage.Stores) ([]*models.Playlist, error) {
		return st.Playlists.List(ctx)
	})
}

// Search matches names case-insensitively among the playlists the caller may read.
func (s *Service) Search(ctx context.Context, callerID int64, isAdmin bool, name string) ([]*models.PlaylistResponse, error) {
	return s.readable(ctx, callerID, isAdmin, func(ctx context.Context, st storage.Stores) ([]*models.Playlist, error) {
		return st.Playlists.Search(ctx, name)
	})
}

func (s *Service) ByOwner(ctx context.Context, callerID int64) ([]*models.PlaylistResponse, error) {
	return s.readable(ctx, callerID, true, func(ctx context.Context, st storage.Stores) ([]*models.Playlist, error) {
		return st.Playlists.ByOwner(ctx, callerID)
	})
}

func (s *Service) FollowedBy(ctx context.Context, callerID int64) ([]*models.PlaylistResponse, error) {
	return s.readable(ctx, callerID, true, func(ctx context.Context, st storage.Stores) ([]*models.Playlist, error) {
		return st.Playlists.FollowedBy(ctx, callerID)
	})
}

func (s *Service) Public(ctx context.Context) ([]*models.PlaylistResponse, error) {
	return s.readable(ctx, 0, true, func(ctx context.Context, st storage.Stores) ([]*models.Playlist, error) {
		return st.Playlists.Public(ctx)
	})
}

// readable loads playlists and, unless all is set, keeps those the caller may read.
func (s *Service) readable(ctx context.Context, callerID int64, all bool, find func(context.Context, storage.Stores) ([]*models.Playlist, error)) ([]*models.PlaylistResponse, error) {
	var playlists []*models.Playlist
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		playlists, err = find(ctx, st)
		return translate(err, "failed to list playlists")
	})
	if err != nil {
		return nil, err
	}
	if !all {
		kept := playlists[:0]
		for _, p := range playlists {
			if p.CanRead(callerID) {
				kept = append(kept, p)
			}
		}
		playlists = kept
	}
	return models.NewPlaylistResponses(playlists), nil
}

// Update applies the present fields. Owners may always update; anyone may
// update a collaborative playlist.
func (s *Service) Update(ctx context.Context, callerID int64, isAdmin bool, id int64, req *models.UpdatePlaylistRequest) (resp *models.PlaylistResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "playlist.Update",
		tracer.Int64(tracer.AttrPlaylistID, id),
		tracer.Int64(tracer.AttrCallerID, callerID),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		p, err := load(ctx, st, id, callerID, isAdmin, canModify, msgNoModifyAccess)
		if err != nil {
			return err
		}
		req.Apply(p)
		if err := st.Playlists.Update(ctx, p); err != nil {
			return translate(err, "failed to update playlist")
		}
		resp = models.NewPlaylistResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("playlist", "update")
	return resp, nil
}

// Delete removes the playlist. Only its owner or an admin may delete it.
func (s *Service) Delete(ctx context.Context, callerID int64, isAdmin bool, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "playlist.Delete",
		tracer.Int64(tracer.AttrPlaylistID, id),
		tracer.Int64(tracer.AttrCallerID, callerID),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := load(ctx, st, id, callerID, isAdmin, isOwner, msgOwnerOnly); err != nil {
			return err
		}
		return translate(st.Playlists.Delete(ctx, id), "failed to delete playlist")
	})
	if err != nil {
		return err
	}
	s.metrics.IncMutation("playlist", "delete")
	s.logger.InfoContext(ctx, "playlist_deleted",
		"event", "playlist_deleted",
		"log_type", "audit",
		"playlist_id", id,
		"user_id", callerID,
		"admin", isAdmin,
	)
	return nil
}

// AddTracks adds the tracks and returns the updated playlist. Unknown track
// ids fail the call without changing the playlist.
func (s *Service) AddTracks(ctx context.Context, callerID int64, isAdmin bool, id int64, trackIDs []int64) (*models.PlaylistResponse, error) {
	return s.mutateTracks(ctx, callerID, isAdmin, id, trackIDs, "add_tracks", func(st storage.Stores) func(context.Context, int64, []int64) error {
		return st.Playlists.AddTracks
	})
}

func (s *Service) RemoveTracks(ctx context.Context, callerID int64, isAdmin bool, id int64, trackIDs []int64) (*models.PlaylistResponse, error) {
	return s.mutateTracks(ctx, callerID, isAdmin, id, trackIDs, "remove_tracks", func(st storage.Stores) func(context.Context, int64, []int64) error {
		return st.Playlists.RemoveTracks
	})
}

func (s *Service) mutateTracks(ctx context.Context, callerID int64, isAdmin bool, id int64, trackIDs []int64, op string, pick func(storage.Stores) func(context.Context, int64, []int64) error) (resp *models.PlaylistResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "playlist."+op,
		tracer.Int64(tracer.AttrPlaylistID, id),
		tracer.Int64(tracer.AttrCallerID, callerID),
		tracer.Int(tracer.AttrBatchSize, len(trackIDs)),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := load(ctx, st, id, callerID, isAdmin, canModify, msgNoModifyAccess); err != nil {
			return err
		}
		if err := requireTracks(ctx, st, trackIDs); err != nil {
			return err
		}
		if err := pick(st)(ctx, id, trackIDs); err != nil {
			return translate(err, "failed to update playlist tracks")
		}
		p, err := st.Playlists.Find(ctx, id)
		if err != nil {
			return translate(err, "failed to reload playlist")
		}
		resp = models.NewPlaylistResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("playlist", op)
	return resp, nil
}

// Follow adds the caller to the follower set of a playlist they can read.
func (s *Service) Follow(ctx context.Context, callerID int64, isAdmin bool, id int64) error {
	return s.follow(ctx, callerID, isAdmin, id, "follow", canRead, func(st storage.Stores) func(context.Context, int64, int64) error {
		return st.Playlists.Follow
	})
}

func (s *Service) Unfollow(ctx context.Context, callerID int64, isAdmin bool, id int64) error {
	anyone := func(*models.Playlist, int64) bool { return true }
	return s.follow(ctx, callerID, isAdmin, id, "unfollow", anyone, func(st storage.Stores) func(context.Context, int64, int64) error {
		return st.Playlists.Unfollow
	})
}

func (s *Service) follow(ctx context.Context, callerID int64, isAdmin bool, id int64, op string, allowed access, pick func(storage.Stores) func(context.Context, int64, int64) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "playlist."+op,
		tracer.Int64(tracer.AttrPlaylistID, id),
		tracer.Int64(tracer.AttrCallerID, callerID),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := load(ctx, st, id, callerID, isAdmin, allowed, msgNoReadAccess); err != nil {
			return err
		}
		return translate(pick(st)(ctx, id, callerID), "failed to "+op+" playlist")
	})
	if err == nil {
		s.metrics.IncMutation("playlist", op)
	}
	return err
}
