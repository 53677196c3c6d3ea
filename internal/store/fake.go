package store

import (
	"context"
	"sync"
	"time"
)

// Fake is an in-memory Client used by filter/sentry tests to drive
// deterministic scenarios without a live Redis. It mimics Redis's
// lazy-expiry behavior (an expired key reads back as absent) and accepts
// an injectable clock so scenarios involving escalation windows are
// reproducible.
type Fake struct {
	mu  sync.Mutex
	Now func() time.Time

	ints       map[string]intEntry
	zsets      map[string]map[string]float64
	zsetExpiry map[string]time.Time
}

type intEntry struct {
	value    int64
	expireAt time.Time // zero value = no TTL
}

// NewFake builds an empty Fake store using time.Now as its clock.
func NewFake() *Fake {
	return &Fake{
		Now:        time.Now,
		ints:       make(map[string]intEntry),
		zsets:      make(map[string]map[string]float64),
		zsetExpiry: make(map[string]time.Time),
	}
}

func (f *Fake) expired(e intEntry) bool {
	return !e.expireAt.IsZero() && !f.Now().Before(e.expireAt)
}

func (f *Fake) getLocked(key string) (intEntry, bool) {
	e, ok := f.ints[key]
	if !ok {
		return intEntry{}, false
	}
	if f.expired(e) {
		delete(f.ints, key)
		return intEntry{}, false
	}
	return e, true
}

func (f *Fake) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, _ := f.getLocked(key)
	e.value++
	f.ints[key] = e
	return e.value, nil
}

func (f *Fake) Decr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, _ := f.getLocked(key)
	e.value--
	f.ints[key] = e
	return e.value, nil
}

func (f *Fake) Get(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.getLocked(key)
	if !ok {
		return 0, ErrNotFound
	}
	return e.value, nil
}

func (f *Fake) Set(_ context.Context, key string, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, _ := f.getLocked(key)
	e.value = value
	f.ints[key] = e
	return nil
}

func (f *Fake) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.getLocked(key); ok {
		e.expireAt = f.Now().Add(ttl)
		f.ints[key] = e
		return nil
	}
	if _, ok := f.zsets[key]; ok {
		f.zsetExpiry[key] = f.Now().Add(ttl)
	}
	return nil
}

// zsetExpiredLocked evicts key from the zset map if its TTL has lapsed. Must be
// called with f.mu held.
func (f *Fake) zsetExpiredLocked(key string) {
	expireAt, ok := f.zsetExpiry[key]
	if !ok || expireAt.IsZero() {
		return
	}
	if !f.Now().Before(expireAt) {
		delete(f.zsets, key)
		delete(f.zsetExpiry, key)
	}
}

func (f *Fake) TTL(_ context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.getLocked(key)
	if !ok || e.expireAt.IsZero() {
		return 0, nil
	}
	remaining := e.expireAt.Sub(f.Now())
	if remaining <= 0 {
		delete(f.ints, key)
		return 0, nil
	}
	// Redis reports TTL in whole seconds, rounded to the nearest one.
	return remaining.Round(time.Second), nil
}

func (f *Fake) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.getLocked(key); ok {
		return true, nil
	}
	f.zsetExpiredLocked(key)
	_, ok := f.zsets[key]
	return ok, nil
}

func (f *Fake) ZCard(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zsetExpiredLocked(key)
	return int64(len(f.zsets[key])), nil
}

func (f *Fake) ZIncrBy(_ context.Context, key string, member string, incr float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zsetExpiredLocked(key)
	set, ok := f.zsets[key]
	if !ok {
		set = make(map[string]float64)
		f.zsets[key] = set
	}
	set[member] += incr
	return set[member], nil
}

func (f *Fake) ZRangeWithScores(_ context.Context, key string) ([]Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zsetExpiredLocked(key)
	set := f.zsets[key]
	members := make([]Member, 0, len(set))
	for member, score := range set {
		members = append(members, Member{Value: member, Score: score})
	}
	return members, nil
}
