package storage

import (
	"context"
	"sync"

	catalogstore "rhymcaffer/internal/catalog/store"
	identitystore "rhymcaffer/internal/identity/store"
	playliststore "rhymcaffer/internal/playlist/store"
)

// Memory is a UnitOfWork over the in-memory stores. Writers run against a
// clone that replaces the live state only when fn succeeds; readers share
// the live state under a read lock.
type Memory struct {
	mu        sync.RWMutex
	users     *identitystore.InMemory
	catalog   *catalogstore.InMemory
	playlists *playliststore.InMemory
}

func NewMemory() *Memory {
	return &Memory{
		users:     identitystore.NewInMemory(),
		catalog:   catalogstore.NewInMemory(),
		playlists: playliststore.NewInMemory(),
	}
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	ctx, cancel, err := withDeadline(ctx, defaultTxTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	users, catalog, playlists := m.users.Clone(), m.catalog.Clone(), m.playlists.Clone()
	if err := fn(ctx, Stores{Users: users, Catalog: catalog, Playlists: playlists}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return timeoutErr(ctx, err)
	}
	m.users, m.catalog, m.playlists = users, catalog, playlists
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	ctx, cancel, err := withDeadline(ctx, defaultTxTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return fn(ctx, Stores{Users: m.users, Catalog: m.catalog, Playlists: m.playlists})
}

var _ UnitOfWork = (*Memory)(nil)
