package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryUserStoreSuite) create(username string) *models.User {
	u := &models.User{Username: username, Email: username + "@example.com", Roles: []string{models.RoleUser}}
	require.NoError(s.T(), s.store.Create(s.ctx, u))
	return u
}

func (s *InMemoryUserStoreSuite) TestCreateAssignsSequentialIDs() {
	a := s.create("alice")
	b := s.create("bob")

	assert.Equal(s.T(), int64(1), a.ID)
	assert.Equal(s.T(), int64(2), b.ID)
	assert.False(s.T(), a.CreatedAt.IsZero())

	found, err := s.store.FindByUsername(s.ctx, "bob")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), b.ID, found.ID)
}

func (s *InMemoryUserStoreSuite) TestCreateRejectsDuplicates() {
	s.create("alice")

	err := s.store.Create(s.ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(s.T(), err, ErrUsernameTaken)
	assert.ErrorIs(s.T(), err, sentinel.ErrAlreadyUsed)

	err = s.store.Create(s.ctx, &models.User{Username: "other", Email: "alice@example.com"})
	assert.ErrorIs(s.T(), err, ErrEmailTaken)
	assert.ErrorIs(s.T(), err, sentinel.ErrAlreadyUsed)

	err = s.store.Create(s.ctx, &models.User{Username: "alice", Email: "alice@example.com"})
	assert.ErrorIs(s.T(), err, ErrUsernameTaken)
}

func (s *InMemoryUserStoreSuite) TestUpdateReportsEmailCollision() {
	s.create("alice")
	bob := s.create("bob")

	bob.Email = "alice@example.com"
	assert.ErrorIs(s.T(), s.store.Update(s.ctx, bob), ErrEmailTaken)
}

func (s *InMemoryUserStoreSuite) TestReturnedUsersAreCopies() {
	u := s.create("alice")
	u.DisplayName = "mutated"

	found, err := s.store.FindByID(s.ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), found.DisplayName)
}

func (s *InMemoryUserStoreSuite) TestFollowEdges() {
	a := s.create("alice")
	b := s.create("bob")

	added, err := s.store.Follow(s.ctx, a.ID, b.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), added)

	added, err = s.store.Follow(s.ctx, a.ID, b.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), added)

	following, _ := s.store.FollowingIDs(s.ctx, a.ID)
	followers, _ := s.store.FollowerIDs(s.ctx, b.ID)
	assert.Equal(s.T(), []int64{b.ID}, following)
	assert.Equal(s.T(), []int64{a.ID}, followers)

	removed, err := s.store.Unfollow(s.ctx, a.ID, b.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)

	removed, err = s.store.Unfollow(s.ctx, a.ID, b.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)

	_, err = s.store.Follow(s.ctx, a.ID, 99)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestDeleteDropsFollowEdges() {
	a := s.create("alice")
	b := s.create("bob")
	_, err := s.store.Follow(s.ctx, a.ID, b.ID)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.store.Delete(s.ctx, a.ID))

	followers, _ := s.store.FollowerIDs(s.ctx, b.ID)
	assert.Empty(s.T(), followers)
	assert.ErrorIs(s.T(), s.store.Delete(s.ctx, a.ID), sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestSearchIsCaseInsensitive() {
	s.create("alice")
	s.create("bob")

	found, err := s.store.Search(s.ctx, "ALI")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), "alice", found[0].Username)
}

func (s *InMemoryUserStoreSuite) TestCloneIsIndependent() {
	a := s.create("alice")
	clone := s.store.Clone()
	require.NoError(s.T(), clone.Delete(s.ctx, a.ID))

	_, err := s.store.FindByID(s.ctx, a.ID)
	assert.NoError(s.T(), err)
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}
