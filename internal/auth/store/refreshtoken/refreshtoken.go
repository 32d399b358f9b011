// Package refreshtoken tracks the refresh tokens that may still be exchanged.
// Each refresh token is registered by jti when issued and consumed exactly
// once on refresh, which makes every earlier token in a rotation chain unusable.
package refreshtoken

import (
	"context"
	"sync"
	"time"

	"rhymcaffer/pkg/platform/sentinel"
)

// Registry is the set of live refresh-token ids.
type Registry interface {
	Register(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	// Consume atomically removes jti and returns its user. It returns
	// sentinel.ErrNotFound when jti is unknown, already consumed or expired.
	Consume(ctx context.Context, jti string) (int64, error)
	Revoke(ctx context.Context, jti string) error
}

type entry struct {
	userID    int64
	expiresAt time.Time
}

const defaultCleanupInterval = 5 * time.Minute

// InMemory is a process-local Registry.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type Option func(*InMemory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *InMemory) { r.now = now }
}

// NewInMemory starts a background sweep that drops expired entries until Close.
func NewInMemory(opts ...Option) *InMemory {
	r := &InMemory{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.cleanup(defaultCleanupInterval)
	return r
}

func (r *InMemory) Register(_ context.Context, jti string, userID int64, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[jti] = entry{userID: userID, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *InMemory) Consume(_ context.Context, jti string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[jti]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	delete(r.entries, jti)
	if !r.now().Before(e.expiresAt) {
		return 0, sentinel.ErrNotFound
	}
	return e.userID, nil
}

func (r *InMemory) Revoke(_ context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, jti)
	return nil
}

// Len returns the number of tracked entries, expired or not.
func (r *InMemory) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes expired entries.
func (r *InMemory) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for jti, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, jti)
		}
	}
}

func (r *InMemory) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}

// Close stops the background sweep.
func (r *InMemory) Close() {
	r.once.Do(func() { close(r.stop) })
}

var _ Registry = (*InMemory)(nil)
