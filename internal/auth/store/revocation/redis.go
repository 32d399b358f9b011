package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rhymcaffer/pkg/platform/sentinel"
)

const keyPrefix = "rhymcaffer:revoked:"

// Redis is a List shared by every instance pointing at the same Redis.
// Entries expire through the key TTL.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w: %w", sentinel.ErrUnavailable, err)
	}
	return n > 0, nil
}

var _ List = (*Redis)(nil)
