// Package store defines the narrow key/value contract the filter engine
// needs from Redis (or a compatible store) and a production implementation
// over go-redis.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist, the same way
// gorm.ErrRecordNotFound distinguishes "no row" from a genuine database
// error. Callers use errors.Is to tell an absent key from a transport
// failure.
var ErrNotFound = errors.New("store: key not found")

// Member is one entry of a ZRANGE ... WITHSCORES reply: an ordered-map
// member (a packed IPv4 address, for FilterB) and its score (failure
// count).
type Member struct {
	Value string
	Score float64
}

// Client is the store contract required by the filter engine:
// atomic increment/decrement, plain get/set, TTL management, existence
// checks, and the ordered-map operations FilterB needs to track distinct
// addresses per account.
type Client interface {
	Incr(ctx context.Context, key string) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	// Get returns ErrNotFound if key does not exist.
	Get(ctx context.Context, key string) (value int64, err error)
	Set(ctx context.Context, key string, value int64) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Exists(ctx context.Context, key string) (bool, error)

	ZCard(ctx context.Context, key string) (int64, error)
	ZIncrBy(ctx context.Context, key string, member string, incr float64) (float64, error)
	ZRangeWithScores(ctx context.Context, key string) ([]Member, error)
}
