package refreshtoken

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rhymcaffer/pkg/platform/sentinel"
)

const keyPrefix = "rhymcaffer:refresh:"

// Redis is a Registry shared across instances. Consume relies on GETDEL so
// two concurrent refreshes with the same token cannot both succeed.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Register(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("register refresh token: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Consume(ctx context.Context, jti string) (int64, error) {
	raw, err := r.client.GetDel(ctx, keyPrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("consume refresh token: %w: %w", sentinel.ErrUnavailable, err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse refresh token owner: %w", err)
	}
	return userID, nil
}

func (r *Redis) Revoke(ctx context.Context, jti string) error {
	if err := r.client.Del(ctx, keyPrefix+jti).Err(); err != nil {
		return fmt.Errorf("revoke refresh token: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

var _ Registry = (*Redis)(nil)
