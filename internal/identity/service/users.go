package service

import (
	"context"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
)

// Create adds a user on behalf of an administrator.
func (s *Service) Create(ctx context.Context, req *models.CreateUserRequest) (resp *models.UserResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Create")
	defer func() { span.End(err) }()

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Country:      req.Country,
		ImageURL:     req.ImageURL,
		Bio:          req.Bio,
		Roles:        req.Roles,
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{models.RoleUser}
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if err := checkUnique(ctx, st, user.Username, user.Email); err != nil {
			return err
		}
		if err := st.Users.Create(ctx, user); err != nil {
			return translate(err, "failed to create user")
		}
		resp, err = project(ctx, st, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("user", "create")
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (resp *models.UserResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Get", tracer.Int64(tracer.AttrUserID, id))
	defer func() { span.End(err) }()

	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		user, err := st.Users.FindByID(ctx, id)
		if err != nil {
			return translate(err, "failed to load user")
		}
		resp, err = project(ctx, st, user)
		return err
	})
	return resp, err
}

func (s *Service) GetByUsername(ctx context.Context, username string) (resp *models.UserResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.GetByUsername")
	defer func() { span.End(err) }()

	err = s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		user, err := st.Users.FindByUsername(ctx, username)
		if err != nil {
			return translate(err, "failed to load user")
		}
		resp, err = project(ctx, st, user)
		return err
	})
	return resp, err
}

func (s *Service) List(ctx context.Context) ([]*models.UserSummary, error) {
	var users []*models.User
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		users, err = st.Users.List(ctx)
		return translate(err, "failed to list users")
	})
	if err != nil {
		return nil, err
	}
	return models.NewUserSummaries(users), nil
}

// Search matches query against username and display name, ignoring case.
func (s *Service) Search(ctx context.Context, query string) ([]*models.UserSummary, error) {
	var users []*models.User
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		users, err = st.Users.Search(ctx, query)
		return translate(err, "failed to search users")
	})
	if err != nil {
		return nil, err
	}
	return models.NewUserSummaries(users), nil
}

// Update applies a partial update. Callers may update themselves; administrators
// may update anyone and are the only ones allowed to change roles.
func (s *Service) Update(ctx context.Context, callerID int64, isAdmin bool, id int64, req *models.UpdateUserRequest) (resp *models.UserResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Update",
		tracer.Int64(tracer.AttrCallerID, callerID),
		tracer.Int64(tracer.AttrUserID, id),
	)
	defer func() { span.End(err) }()

	if callerID != id && !isAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only update your own profile")
	}
	if req.Roles != nil && !isAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Only administrators can change roles")
	}

	var hash string
	if req.Password != nil {
		if hash, err = s.hash(*req.Password); err != nil {
			return nil, err
		}
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		user, err := st.Users.FindByID(ctx, id)
		if err != nil {
			return translate(err, "failed to load user")
		}

		username, email := "", ""
		if req.Username != nil && *req.Username != user.Username {
			username = *req.Username
		}
		if req.Email != nil && *req.Email != user.Email {
			email = *req.Email
		}
		if err := checkUnique(ctx, st, username, email); err != nil {
			return err
		}

		req.Apply(user)
		if hash != "" {
			user.PasswordHash = hash
		}
		if err := st.Users.Update(ctx, user); err != nil {
			return translate(err, "failed to update user")
		}
		resp, err = project(ctx, st, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMutation("user", "update")
	return resp, nil
}

// Delete removes a user, the playlists they own and their membership in every
// follow and save set.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Delete", tracer.Int64(tracer.AttrUserID, id))
	defer func() { span.End(err) }()

	var playlists int
	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Users.FindByID(ctx, id); err != nil {
			return translate(err, "failed to load user")
		}
		owned, err := st.Playlists.IDsByOwner(ctx, id)
		if err != nil {
			return translate(err, "failed to load playlists")
		}
		playlists = len(owned)
		if err := st.Playlists.DeleteByOwner(ctx, id); err != nil {
			return translate(err, "failed to delete playlists")
		}
		if err := st.Playlists.ForgetUser(ctx, id); err != nil {
			return translate(err, "failed to remove playlist follows")
		}
		if err := st.Catalog.ForgetUser(ctx, id); err != nil {
			return translate(err, "failed to remove saved items")
		}
		return translate(st.Users.Delete(ctx, id), "failed to delete user")
	})
	if err != nil {
		return err
	}
	s.metrics.IncMutation("user", "delete")
	s.logger.InfoContext(ctx, "user_deleted",
		"event", "user_deleted",
		"log_type", "audit",
		"user_id", id,
		"playlists_deleted", playlists,
	)
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", translate(err, "failed to hash password")
	}
	return hash, nil
}

// checkUnique rejects a username or email already in use. Empty values are skipped.
func checkUnique(ctx context.Context, st storage.Stores, username, email string) error {
	if username != "" {
		exists, err := st.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return translate(err, "failed to check username")
		}
		if exists {
			return dErrors.New(dErrors.CodeConflict, msgUsernameTaken)
		}
	}
	if email != "" {
		exists, err := st.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return translate(err, "failed to check email")
		}
		if exists {
			return dErrors.New(dErrors.CodeConflict, msgEmailTaken)
		}
	}
	return nil
}

// project builds the detail form of user, loading its id sets from every store.
func project(ctx context.Context, st storage.Stores, user *models.User) (*models.UserResponse, error) {
	var (
		rel models.UserRelations
		err error
	)
	if rel.PlaylistIDs, err = st.Playlists.IDsByOwner(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load playlists")
	}
	if rel.SavedTrackIDs, err = st.Catalog.SavedTrackIDs(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load saved tracks")
	}
	if rel.SavedAlbumIDs, err = st.Catalog.SavedAlbumIDs(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load saved albums")
	}
	if rel.FollowedArtistIDs, err = st.Catalog.FollowedArtistIDs(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load followed artists")
	}
	if rel.FollowerIDs, err = st.Users.FollowerIDs(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load followers")
	}
	if rel.FollowingIDs, err = st.Users.FollowingIDs(ctx, user.ID); err != nil {
		return nil, translate(err, "failed to load following")
	}
	return &models.UserResponse{UserSummary: *models.NewUserSummary(user), UserRelations: rel}, nil
}
