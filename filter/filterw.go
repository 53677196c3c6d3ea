package filter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// W is the whitelist filter: once a (address, account) pair has
// authenticated successfully, its failures are tracked on this separate,
// slower schedule instead of the shared A/B schedules.
type W struct {
	Base
	IP       string
	Account  string
	Escalate Escalate
	History  History
}

func (w *W) counterKey() string { return "Wc:" + w.IP + ":" + w.Account }
func (w *W) blockKey() string   { return "Wb:" + w.IP + ":" + w.Account }

// Whitelist promotes the pair: W-counter set to 0 with a 30-day TTL.
// Zero marks "whitelisted, not yet failed" as distinct from the key being
// entirely absent.
func (w *W) Whitelist(ctx context.Context) error {
	if err := w.Store.Set(ctx, w.counterKey(), 0); err != nil {
		return err
	}
	if err := w.Store.Expire(ctx, w.counterKey(), wCounterTTL); err != nil {
		return err
	}
	w.Logger.Debug("user whitelisted", zap.String("ip", w.IP), zap.String("account", w.Account))
	return nil
}

// IsWhitelisted reports whether the W-counter key exists at all.
func (w *W) IsWhitelisted(ctx context.Context) (bool, error) {
	return w.Store.Exists(ctx, w.counterKey())
}

// Test mirrors FilterA/FilterB.Test against the W-block, escalating via ZW.
func (w *W) Test(ctx context.Context) (time.Duration, string, error) {
	ttl, vis, err := w.testBlock(ctx, w.blockKey())
	if err != nil {
		return 0, "", err
	}
	if ttl == 0 {
		return 0, "", nil
	}
	msg := fmt.Sprintf(errorMessageGeneric, DescribeExplicit(ttl, vis))

	escTTL, escMsg, err := w.Escalate(ctx, vis)
	if err != nil {
		return 0, "", err
	}
	t, m := orResult(escTTL, escMsg, ttl, msg)
	return t, m, nil
}

// Update records one failed attempt for a whitelisted pair: increment and
// refresh the 30-day counter TTL, then apply the same tiered-delay/block
// logic FilterA uses.
func (w *W) Update(ctx context.Context) (time.Duration, string, error) {
	n, err := w.Store.Incr(ctx, w.counterKey())
	if err != nil {
		return 0, "", err
	}
	if err := w.Store.Expire(ctx, w.counterKey(), wCounterTTL); err != nil {
		return 0, "", err
	}

	t := ScheduleBase.Delay(int(n), w.Rand)
	var ttl time.Duration
	var msg string
	if t != 0 {
		if err := w.writeBlock(ctx, w.blockKey(), t); err != nil {
			return 0, "", err
		}
		if w.History != nil {
			w.History(ctx, "ip:username", w.IP, w.Account, int(n))
		}
		ttl = abs(t)
		msg = fmt.Sprintf(errorMessageGeneric, DescribeExplicit(ttl, visibilityOfDelay(t)))
	}

	w.Logger.Debug("auth rejected for whitelisted ip:username",
		zap.String("ip", w.IP),
		zap.String("account", w.Account),
		zap.Int64("n", n),
		zap.Duration("block_ttl", ttl),
	)
	return ttl, msg, nil
}
