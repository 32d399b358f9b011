package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	authservice "rhymcaffer/internal/auth/service"
	catalog "rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/identity/store"
	"rhymcaffer/internal/platform/metrics"
	playlist "rhymcaffer/internal/playlist/models"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

type UserServiceSuite struct {
	suite.Suite
	ctx     context.Context
	uow     *storage.Memory
	metrics *metrics.Domain
	service *Service
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = storage.NewMemory()
	s.metrics = metrics.NewDomain(prometheus.NewRegistry())
	s.service = New(s.uow, plainHasher{}, WithMetrics(s.metrics))
}

func (s *UserServiceSuite) create(username string) *models.UserResponse {
	req := &models.CreateUserRequest{Username: username, Email: username + "@x", Password: "secret1"}
	req.Normalize()
	resp, err := s.service.Create(s.ctx, req)
	s.Require().NoError(err)
	return resp
}

func (s *UserServiceSuite) hashOf(id int64) string {
	var hash string
	s.Require().NoError(s.uow.View(s.ctx, func(ctx context.Context, st storage.Stores) error {
		u, err := st.Users.FindByID(ctx, id)
		if err == nil {
			hash = u.PasswordHash
		}
		return err
	}))
	return hash
}

func ptr[T any](v T) *T { return &v }

func (s *UserServiceSuite) TestCreateAndGet() {
	created := s.create("alice")
	s.Equal("alice", created.DisplayName)
	s.Equal([]string{models.RoleUser}, created.Roles)
	s.Equal("hashed:secret1", s.hashOf(created.ID))
	s.Empty(created.FollowerIDs)

	byID, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("alice@x", byID.Email)

	byName, err := s.service.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(created.ID, byName.ID)

	_, err = s.service.Get(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.GetByUsername(s.ctx, "nobody")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Mutations.WithLabelValues("user", "create")))
}

func (s *UserServiceSuite) TestCreateDuplicate() {
	s.create("alice")

	_, err := s.service.Create(s.ctx, &models.CreateUserRequest{Username: "alice", Email: "new@x", Password: "secret1"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Create(s.ctx, &models.CreateUserRequest{Username: "alicia", Email: "alice@x", Password: "secret1"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("Email is already registered", err.Error())
}

func (s *UserServiceSuite) TestListAndSearch() {
	s.create("alice")
	s.create("bob")
	s.create("malice")

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("alice", all[0].Username)

	found, err := s.service.Search(s.ctx, "ALIC")
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *UserServiceSuite) TestUpdate() {
	alice := s.create("alice")
	bob := s.create("bob")

	s.Run("self update applies present fields only", func() {
		resp, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Bio: ptr("hi")})
		s.Require().NoError(err)
		s.Equal("hi", resp.Bio)
		s.Equal("alice", resp.Username)
		s.Equal("hashed:secret1", s.hashOf(alice.ID))
	})

	s.Run("password is rehashed when provided", func() {
		_, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Password: ptr("newpass")})
		s.Require().NoError(err)
		s.Equal("hashed:newpass", s.hashOf(alice.ID))
	})

	s.Run("unchanged username is not a conflict", func() {
		_, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Username: ptr("alice")})
		s.NoError(err)
	})

	s.Run("taken username is a conflict", func() {
		_, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Username: ptr("bob")})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("taken email names the email", func() {
		_, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Email: ptr("bob@x")})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(msgEmailTaken, err.Error())
	})

	s.Run("other users are forbidden", func() {
		_, err := s.service.Update(s.ctx, bob.ID, false, alice.ID, &models.UpdateUserRequest{Bio: ptr("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("roles need an administrator", func() {
		roles := []string{models.RoleUser, models.RoleAdmin}
		_, err := s.service.Update(s.ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Roles: &roles})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		resp, err := s.service.Update(s.ctx, bob.ID, true, alice.ID, &models.UpdateUserRequest{Roles: &roles})
		s.Require().NoError(err)
		s.ElementsMatch(roles, resp.Roles)
	})

	s.Run("unknown user", func() {
		_, err := s.service.Update(s.ctx, 1, true, 999, &models.UpdateUserRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestFollowGraph() {
	alice := s.create("alice")
	bob := s.create("bob")

	err := s.service.Follow(s.ctx, alice.ID, alice.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	s.Require().NoError(s.service.Follow(s.ctx, alice.ID, bob.ID))
	err = s.service.Follow(s.ctx, alice.ID, bob.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

	err = s.service.Follow(s.ctx, alice.ID, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	followers, err := s.service.Followers(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(followers, 1)
	s.Equal("alice", followers[0].Username)

	following, err := s.service.Following(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(following, 1)
	s.Equal("bob", following[0].Username)

	aliceView, _ := s.service.Get(s.ctx, alice.ID)
	bobView, _ := s.service.Get(s.ctx, bob.ID)
	s.Equal([]int64{bob.ID}, aliceView.FollowingIDs)
	s.Equal([]int64{alice.ID}, bobView.FollowerIDs)

	s.Require().NoError(s.service.Unfollow(s.ctx, alice.ID, bob.ID))
	err = s.service.Unfollow(s.ctx, alice.ID, bob.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	bobView, _ = s.service.Get(s.ctx, bob.ID)
	s.Empty(bobView.FollowerIDs)

	_, err = s.service.Followers(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *UserServiceSuite) TestDeleteCascades() {
	alice := s.create("alice")
	bob := s.create("bob")
	s.Require().NoError(s.service.Follow(s.ctx, alice.ID, bob.ID))
	s.Require().NoError(s.service.Follow(s.ctx, bob.ID, alice.ID))

	var trackID, ownPlaylist, bobPlaylist int64
	s.Require().NoError(s.uow.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		track := &catalog.Track{Name: "Airbag"}
		if err := st.Catalog.CreateTrack(ctx, track); err != nil {
			return err
		}
		trackID = track.ID
		if err := st.Catalog.SaveTrack(ctx, alice.ID, track.ID); err != nil {
			return err
		}
		own := &playlist.Playlist{Name: "mine", OwnerID: alice.ID, TrackIDs: []int64{track.ID}}
		if err := st.Playlists.Create(ctx, own); err != nil {
			return err
		}
		ownPlaylist = own.ID
		theirs := &playlist.Playlist{Name: "bob's", OwnerID: bob.ID, IsPublic: true}
		if err := st.Playlists.Create(ctx, theirs); err != nil {
			return err
		}
		bobPlaylist = theirs.ID
		return st.Playlists.Follow(ctx, theirs.ID, alice.ID)
	}))

	view, err := s.service.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal([]int64{ownPlaylist}, view.PlaylistIDs)
	s.Equal([]int64{trackID}, view.SavedTrackIDs)

	s.Require().NoError(s.service.Delete(s.ctx, alice.ID))

	_, err = s.service.Get(s.ctx, alice.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	bobView, err := s.service.Get(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(bobView.FollowerIDs)
	s.Empty(bobView.FollowingIDs)

	s.Require().NoError(s.uow.View(s.ctx, func(ctx context.Context, st storage.Stores) error {
		_, err := st.Playlists.Find(ctx, ownPlaylist)
		s.Error(err)
		p, err := st.Playlists.Find(ctx, bobPlaylist)
		s.Require().NoError(err)
		s.Empty(p.FollowerIDs)
		_, err = st.Catalog.FindTrack(ctx, trackID)
		s.NoError(err, "tracks survive their savers")
		return nil
	}))

	err = s.service.Delete(s.ctx, alice.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	ctx := context.Background()
	svc := New(storage.NewMemory(), authservice.NewBcryptHasher(bcrypt.MinCost))
	long := strings.Repeat("é", 40)

	_, err := svc.Create(ctx, &models.CreateUserRequest{Username: "alice", Email: "alice@x", Password: long, Roles: []string{models.RoleUser}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	alice, err := svc.Create(ctx, &models.CreateUserRequest{Username: "alice", Email: "alice@x", Password: "secret1", Roles: []string{models.RoleUser}})
	require.NoError(t, err)
	_, err = svc.Update(ctx, alice.ID, false, alice.ID, &models.UpdateUserRequest{Password: &long})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestTranslateNamesCollidingField(t *testing.T) {
	err := translate(fmt.Errorf("update: %w", store.ErrEmailTaken), "failed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, msgEmailTaken, err.Error())

	err = translate(store.ErrUsernameTaken, "failed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, msgUsernameTaken, err.Error())
}
