package refreshtoken

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rhymcaffer/pkg/platform/sentinel"
	"rhymcaffer/pkg/testutil"
)

// RegistrySuite runs the same contract against every implementation.
type RegistrySuite struct {
	suite.Suite
	newRegistry func(t *testing.T) Registry
	registry    Registry
	ctx         context.Context
}

func (s *RegistrySuite) SetupTest() {
	s.registry = s.newRegistry(s.T())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestConsumeOnce() {
	require.NoError(s.T(), s.registry.Register(s.ctx, "r1", 42, time.Hour))

	userID, err := s.registry.Consume(s.ctx, "r1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(42), userID)

	_, err = s.registry.Consume(s.ctx, "r1")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *RegistrySuite) TestUnknownToken() {
	_, err := s.registry.Consume(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *RegistrySuite) TestRevoke() {
	require.NoError(s.T(), s.registry.Register(s.ctx, "r1", 42, time.Hour))
	require.NoError(s.T(), s.registry.Revoke(s.ctx, "r1"))
	require.NoError(s.T(), s.registry.Revoke(s.ctx, "never-registered"))

	_, err := s.registry.Consume(s.ctx, "r1")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *RegistrySuite) TestConcurrentConsumeHasOneWinner() {
	require.NoError(s.T(), s.registry.Register(s.ctx, "race", 7, time.Hour))

	result := testutil.RunConcurrentCtx(s.ctx, 20, func(ctx context.Context, _ int) error {
		_, err := s.registry.Consume(ctx, "race")
		return err
	})
	assert.Equal(s.T(), int32(1), result.Successes)
	assert.Equal(s.T(), int32(19), result.NotFounds)
	assert.Zero(s.T(), result.Errors)
}

func TestInMemoryRegistry(t *testing.T) {
	suite.Run(t, &RegistrySuite{newRegistry: func(t *testing.T) Registry {
		r := NewInMemory()
		t.Cleanup(r.Close)
		return r
	}})
}

func TestRedisRegistry(t *testing.T) {
	suite.Run(t, &RegistrySuite{newRegistry: func(t *testing.T) Registry {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedis(client)
	}})
}

func TestInMemoryExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewInMemory(WithClock(func() time.Time { return now }))
	t.Cleanup(r.Close)

	require.NoError(t, r.Register(context.Background(), "r1", 1, time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := r.Consume(context.Background(), "r1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemorySweepDropsOnlyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewInMemory(WithClock(func() time.Time { return now }))
	t.Cleanup(r.Close)

	require.NoError(t, r.Register(ctx, "short", 1, time.Minute))
	require.NoError(t, r.Register(ctx, "long", 1, time.Hour))
	now = now.Add(2 * time.Minute)

	require.NoError(t, r.Register(ctx, "fresh", 2, time.Minute))
	assert.Equal(t, 3, r.Len(), "registering does not sweep")

	r.Sweep()
	assert.Equal(t, 2, r.Len())

	userID, err := r.Consume(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestRedisExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	r := NewRedis(client)

	require.NoError(t, r.Register(context.Background(), "r1", 1, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := r.Consume(context.Background(), "r1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedis(client).Register(context.Background(), "r1", 1, time.Minute)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
