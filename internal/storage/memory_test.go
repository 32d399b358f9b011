package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodels "rhymcaffer/internal/catalog/models"
	identitymodels "rhymcaffer/internal/identity/models"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/testutil"
)

func TestMemoryCommitsOnSuccess(t *testing.T) {
	uow := NewMemory()
	ctx := context.Background()

	err := uow.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		return s.Users.Create(ctx, &identitymodels.User{Username: "alice", Email: "alice@x"})
	})
	require.NoError(t, err)

	err = uow.View(ctx, func(ctx context.Context, s Stores) error {
		_, err := s.Users.FindByUsername(ctx, "alice")
		return err
	})
	assert.NoError(t, err)
}

func TestMemoryDiscardsOnError(t *testing.T) {
	uow := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		if err := s.Catalog.CreateArtist(ctx, &catalogmodels.Artist{Name: "a"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var artists []*catalogmodels.Artist
	require.NoError(t, uow.View(ctx, func(ctx context.Context, s Stores) error {
		var err error
		artists, err = s.Catalog.ListArtists(ctx)
		return err
	}))
	assert.Empty(t, artists)

	// ids are not consumed by a discarded transaction
	require.NoError(t, uow.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		a := &catalogmodels.Artist{Name: "b"}
		if err := s.Catalog.CreateArtist(ctx, a); err != nil {
			return err
		}
		assert.Equal(t, int64(1), a.ID)
		return nil
	}))
}

func TestMemoryRejectsCancelledContext(t *testing.T) {
	uow := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.RunInTx(ctx, func(context.Context, Stores) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestMemorySerializesWriters(t *testing.T) {
	uow := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			_ = uow.RunInTx(ctx, func(ctx context.Context, s Stores) error {
				return s.Catalog.CreateArtist(ctx, &catalogmodels.Artist{Name: "x"})
			})
		})
	}
	wg.Wait()

	require.NoError(t, uow.View(ctx, func(ctx context.Context, s Stores) error {
		artists, err := s.Catalog.ListArtists(ctx)
		assert.Len(t, artists, 50)
		return err
	}))
}

func TestMemoryConcurrentDuplicateUsername(t *testing.T) {
	uow := NewMemory()

	result := testutil.RunConcurrentCtx(context.Background(), 10, func(ctx context.Context, _ int) error {
		return uow.RunInTx(ctx, func(ctx context.Context, s Stores) error {
			return s.Users.Create(ctx, &identitymodels.User{Username: "alice", Email: "alice@x"})
		})
	})
	assert.Equal(t, int32(1), result.Successes)
	assert.Equal(t, int32(9), result.AlreadyUsed)
	assert.Equal(t, int32(10), result.Total())
}
