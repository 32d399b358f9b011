// Package storage groups the domain stores behind a unit of work. Every
// service operation runs inside exactly one RunInTx or View call so that a
// request observes one consistent snapshot and its writes commit together.
package storage

import (
	"context"
	"time"

	catalogstore "rhymcaffer/internal/catalog/store"
	identitystore "rhymcaffer/internal/identity/store"
	playliststore "rhymcaffer/internal/playlist/store"
	dErrors "rhymcaffer/pkg/domain-errors"
)

// Stores is the set of stores bound to one transaction.
type Stores struct {
	Users     identitystore.Store
	Catalog   catalogstore.Store
	Playlists playliststore.Store
}

// UnitOfWork runs fn against a transactional view of every store.
// A non-nil error from fn discards every write fn made.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
	// View runs fn read-only.
	View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// withDeadline rejects cancelled contexts and bounds contexts without a deadline.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

// timeoutErr converts a context failure observed after fn into CodeTimeout.
func timeoutErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return err
}
