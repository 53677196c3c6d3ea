package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/axil/redissentry-core/internal/store"
)

// Kind names which block a Z filter escalates and how its history record
// is tagged: "ip", "username" or "ip:username".
type Kind int

const (
	KindIP Kind = iota
	KindUsername
	KindIPUsername
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "ip"
	case KindUsername:
		return "username"
	default:
		return "ip:username"
	}
}

// Z is the escalation filter shared by ZA/ZB/ZW, parameterized by which
// block key it shares with its companion filter (the escalator and the
// initial blocker always co-locate on one key) and by cadence (Explicit
// or Implicit) — a product of Kind and Schedule rather than six separate
// generated types.
type Z struct {
	Base
	BlockKey     string
	Kind         Kind
	Schedule     Schedule
	ErrorMessage string // %s-templated, filled with Humanize(t) or "later"
	History      History
	Subject      string // address, for the history record
	Account      string // account, for the history record
}

// NewZA builds the escalation filter sharing FilterA's block key.
func NewZA(base Base, ip string, cadence Schedule, history History) *Z {
	return &Z{Base: base, BlockKey: "Ab:" + ip, Kind: KindIP, Schedule: cadence,
		ErrorMessage: errorMessageGeneric, History: history, Subject: ip}
}

// NewZB builds the escalation filter sharing FilterB's block key.
func NewZB(base Base, account string, cadence Schedule, history History) *Z {
	return &Z{Base: base, BlockKey: "Bb:" + account, Kind: KindUsername, Schedule: cadence,
		ErrorMessage: fmt.Sprintf("Too many failed attempts for %s. Try again %%s.", account),
		History:      history, Account: account}
}

// NewZW builds the escalation filter sharing FilterW's block key.
func NewZW(base Base, ip, account string, cadence Schedule, history History) *Z {
	return &Z{Base: base, BlockKey: "Wb:" + ip + ":" + account, Kind: KindIPUsername, Schedule: cadence,
		ErrorMessage: errorMessageGeneric, History: history, Subject: ip, Account: account}
}

// Update extends the shared block's TTL if the client keeps retrying
// while blocked. It never shortens a block: an escalation only takes
// effect when the newly computed delay exceeds the block's current
// remaining TTL.
func (z *Z) Update(ctx context.Context) (time.Duration, string, error) {
	raw, err := z.Store.Get(ctx, z.BlockKey)
	exists := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, "", err
	}

	// Move the stored magnitude up by one, keeping its current sign. An
	// absent block defaults to Incr, which creates a fresh 1 and yields
	// n=0 below, i.e. no escalation on a block that isn't there yet.
	var newValue int64
	if exists && DecodeBlock(raw).Visibility == Implicit {
		newValue, err = z.Store.Decr(ctx, z.BlockKey)
	} else {
		newValue, err = z.Store.Incr(ctx, z.BlockKey)
	}
	if err != nil {
		return 0, "", err
	}

	magnitude := newValue
	if magnitude < 0 {
		magnitude = -magnitude
	}
	n := int(magnitude - 1)

	t := z.Schedule.Delay(n, z.Rand)
	if t == 0 {
		return 0, "", nil
	}

	currentTTL, err := z.Store.TTL(ctx, z.BlockKey)
	if err != nil {
		return 0, "", err
	}
	target := abs(t)
	if target <= currentTTL {
		// A shorter or equal escalation never overrides the existing
		// block.
		return 0, "", nil
	}

	blk := Block{Magnitude: magnitude, Visibility: visibilityOfDelay(t)}
	if err := z.Store.Set(ctx, z.BlockKey, blk.Encode()); err != nil {
		return 0, "", err
	}
	if err := z.Store.Expire(ctx, z.BlockKey, target); err != nil {
		return 0, "", err
	}
	if z.History != nil {
		z.History(ctx, z.Kind.String(), z.Subject, z.Account, n)
	}

	msg := fmt.Sprintf(z.ErrorMessage, DescribeExplicit(target, blk.Visibility))
	z.Logger.Debug("escalated block",
		zap.String("kind", z.Kind.String()),
		zap.Int("n", n),
		zap.Duration("new_ttl", target),
	)
	return target, msg, nil
}
