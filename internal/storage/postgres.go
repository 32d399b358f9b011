package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	catalogstore "rhymcaffer/internal/catalog/store"
	identitystore "rhymcaffer/internal/identity/store"
	playliststore "rhymcaffer/internal/playlist/store"
	"rhymcaffer/internal/platform/database"
)

// Postgres is a UnitOfWork that binds every store to one database transaction.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return p.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, fn)
}

func (p *Postgres) View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return p.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (p *Postgres) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, s Stores) error) error {
	ctx, cancel, err := withDeadline(ctx, p.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return timeoutErr(ctx, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(ctx, bind(tx)); err != nil {
		return timeoutErr(ctx, err)
	}
	if err := tx.Commit(); err != nil {
		return timeoutErr(ctx, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func bind(db database.DBTX) Stores {
	return Stores{
		Users:     identitystore.NewPostgres(db),
		Catalog:   catalogstore.NewPostgres(db),
		Playlists: playliststore.NewPostgres(db),
	}
}

var _ UnitOfWork = (*Postgres)(nil)
