// Package redis provides Redis-based adapters for HeirAid.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQuotaPrefix namespaces guest usage counters.
const DefaultQuotaPrefix = "guest-quota:"

// ErrEmptyKey is returned when a counter key is blank.
var ErrEmptyKey = errors.New("quota key cannot be empty")

// GuestQuota counts guest calls in fixed windows. The first hit in a window
// creates the counter and sets its expiry; later hits only increment it.
type GuestQuota struct {
	client redis.UniversalClient
	prefix string
}

// NewGuestQuota creates a quota counter with the default key prefix.
func NewGuestQuota(client redis.UniversalClient) *GuestQuota {
	return NewGuestQuotaWithPrefix(client, DefaultQuotaPrefix)
}

// NewGuestQuotaWithPrefix creates a quota counter with a custom key prefix.
func NewGuestQuotaWithPrefix(client redis.UniversalClient, prefix string) *GuestQuota {
	return &GuestQuota{client: client, prefix: prefix}
}

// Allow records one hit for key and reports whether it stayed within limit.
// A non-positive limit disables metering.
func (q *GuestQuota) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	if key == "" {
		return false, ErrEmptyKey
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	k := q.prefix + key
	count, err := q.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := q.client.Expire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// Remaining reports how many hits are left for key in the current window.
func (q *GuestQuota) Remaining(ctx context.Context, key string, limit int) (int, error) {
	if limit <= 0 {
		return -1, nil
	}
	n, err := q.client.Get(ctx, q.prefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return limit, nil
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}
	if n >= limit {
		return 0, nil
	}
	return limit - n, nil
}

// Reset clears the counter for key. It reports whether a counter existed.
func (q *GuestQuota) Reset(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	n, err := q.client.Del(ctx, q.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}
