// Package filter implements the per-(address,account) block/escalation
// engine: FilterA (per-address), FilterB (per-account, distributed-attack
// aware), FilterW (whitelist) and the FilterZ escalation family.
package filter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/axil/redissentry-core/internal/store"
)

// History fires a fire-and-forget audit record. kind is "ip", "username"
// or "ip:username"; count is either a failure tally or a blocked-attempts
// count depending on caller.
type History func(ctx context.Context, kind, subject, account string, count int)

// Escalate invokes the matching Z-filter's Update and reports whether it
// extended the block.
type Escalate func(ctx context.Context, vis Visibility) (ttl time.Duration, message string, err error)

// Base holds what every A/B/W filter needs to read and write a block key:
// the store, the logger, and the shared random source for implicit-random
// delays. It intentionally does not hold a back-reference to a
// coordinator — callers pass an Escalate/History capability instead, so a
// filter never needs to know what owns it.
type Base struct {
	Store  store.Client
	Logger *zap.Logger
	Rand   Source
}

// testBlock reads a block key's remaining TTL and, if still blocked,
// its stored Visibility. ttl == 0 means "not blocked".
func (b *Base) testBlock(ctx context.Context, blockKey string) (ttl time.Duration, vis Visibility, err error) {
	ttl, err = b.Store.TTL(ctx, blockKey)
	if err != nil || ttl == 0 {
		return ttl, Explicit, err
	}
	raw, err := b.Store.Get(ctx, blockKey)
	if errors.Is(err, store.ErrNotFound) {
		// TTL raced with expiry between the two store calls; treat as
		// not blocked rather than guessing a visibility.
		return 0, Explicit, nil
	}
	if err != nil {
		return 0, Explicit, err
	}
	return ttl, DecodeBlock(raw).Visibility, nil
}

// writeBlock overwrites a block key's magnitude (preserving it, or
// defaulting to 1 if the key was absent) with the visibility t's sign
// implies, and sets its TTL to |t|.
func (b *Base) writeBlock(ctx context.Context, blockKey string, t time.Duration) error {
	magnitude := int64(1)
	if raw, err := b.Store.Get(ctx, blockKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	} else if err == nil {
		magnitude = DecodeBlock(raw).Magnitude
	}

	blk := Block{Magnitude: magnitude, Visibility: visibilityOfDelay(t)}
	if err := b.Store.Set(ctx, blockKey, blk.Encode()); err != nil {
		return err
	}
	return b.Store.Expire(ctx, blockKey, abs(t))
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// MaxResult picks the stronger of two (duration, message) results,
// ordering lexicographically by (duration, message) — the rule a
// coordinator uses to combine FilterA and FilterB's outcomes into one.
func MaxResult(aTTL time.Duration, aMsg string, bTTL time.Duration, bMsg string) (time.Duration, string) {
	if bTTL > aTTL || (bTTL == aTTL && bMsg > aMsg) {
		return bTTL, bMsg
	}
	return aTTL, aMsg
}

// orResult folds an escalation result into the original block result:
// prefer the escalation's (duration, message) when it produced one,
// otherwise keep the original.
func orResult(escTTL time.Duration, escMsg string, origTTL time.Duration, origMsg string) (time.Duration, string) {
	if escTTL != 0 {
		return escTTL, escMsg
	}
	if escMsg != "" {
		return origTTL, escMsg
	}
	return origTTL, origMsg
}
