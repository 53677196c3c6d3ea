package filter

import (
	"context"
	"errors"
	"time"

	"github.com/axil/redissentry-core/internal/store"
)

var errStoreDown = errors.New("store unavailable")

// erroringStore fails every operation, for exercising fail-open paths.
type erroringStore struct{}

func (erroringStore) Incr(context.Context, string) (int64, error)  { return 0, errStoreDown }
func (erroringStore) Decr(context.Context, string) (int64, error)  { return 0, errStoreDown }
func (erroringStore) Get(context.Context, string) (int64, error) {
	return 0, errStoreDown
}
func (erroringStore) Set(context.Context, string, int64) error               { return errStoreDown }
func (erroringStore) Expire(context.Context, string, time.Duration) error    { return errStoreDown }
func (erroringStore) TTL(context.Context, string) (time.Duration, error)     { return 0, errStoreDown }
func (erroringStore) Exists(context.Context, string) (bool, error)           { return false, errStoreDown }
func (erroringStore) ZCard(context.Context, string) (int64, error)           { return 0, errStoreDown }
func (erroringStore) ZIncrBy(context.Context, string, string, float64) (float64, error) {
	return 0, errStoreDown
}
func (erroringStore) ZRangeWithScores(context.Context, string) ([]store.Member, error) {
	return nil, errStoreDown
}
