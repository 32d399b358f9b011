package revocation

import (
	"context"
	"sync"
	"time"
)

// List is the invalidation set of logged-out access tokens, keyed by jti.
// Entries expire once the token would have expired anyway.
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

const defaultCleanupInterval = 5 * time.Minute

// InMemory is a process-local List. Entries do not survive a restart.
type InMemory struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type Option func(*InMemory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *InMemory) { l.now = now }
}

// NewInMemory starts a background sweep that drops expired entries until Close.
func NewInMemory(opts ...Option) *InMemory {
	l := &InMemory{
		revoked: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.cleanup(defaultCleanupInterval)
	return l
}

func (l *InMemory) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.now().Add(ttl)
	return nil
}

func (l *InMemory) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	expiry, ok := l.revoked[jti]
	return ok && l.now().Before(expiry), nil
}

// Len returns the number of tracked entries, expired or not.
func (l *InMemory) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.revoked)
}

// Sweep removes expired entries.
func (l *InMemory) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for jti, expiry := range l.revoked {
		if !now.Before(expiry) {
			delete(l.revoked, jti)
		}
	}
}

func (l *InMemory) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Close stops the background sweep.
func (l *InMemory) Close() {
	l.once.Do(func() { close(l.stop) })
}

var _ List = (*InMemory)(nil)
