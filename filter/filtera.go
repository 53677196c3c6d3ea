package filter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const errorMessageGeneric = "Too many failed attempts. Try again %s."

// A is the per-address filter: one counter/block pair keyed on the
// client's address alone.
type A struct {
	Base
	IP       string
	Account  string // carried through to History only, never part of the key
	Escalate Escalate
	History  History
}

func (a *A) counterKey() string { return "Ac:" + a.IP }
func (a *A) blockKey() string   { return "Ab:" + a.IP }

// Test reads the current A-block and, if active, escalates via ZA before
// returning, folding in the escalation's result when it produced one and
// otherwise keeping the original.
func (a *A) Test(ctx context.Context) (time.Duration, string, error) {
	ttl, vis, err := a.testBlock(ctx, a.blockKey())
	if err != nil {
		return 0, "", err
	}
	if ttl == 0 {
		return 0, "", nil
	}
	msg := fmt.Sprintf(errorMessageGeneric, DescribeExplicit(ttl, vis))

	escTTL, escMsg, err := a.Escalate(ctx, vis)
	if err != nil {
		return 0, "", err
	}
	t, m := orResult(escTTL, escMsg, ttl, msg)
	return t, m, nil
}

// Update records one failed attempt from this address.
func (a *A) Update(ctx context.Context) (time.Duration, string, error) {
	n, err := a.Store.Incr(ctx, a.counterKey())
	if err != nil {
		return 0, "", err
	}

	t := ScheduleBase.Delay(int(n), a.Rand)
	var ttl time.Duration
	var msg string
	if t != 0 {
		if err := a.writeBlock(ctx, a.blockKey(), t); err != nil {
			return 0, "", err
		}
		if a.History != nil {
			a.History(ctx, "ip", a.IP, a.Account, int(n))
		}
		ttl = abs(t)
		msg = fmt.Sprintf(errorMessageGeneric, DescribeExplicit(ttl, visibilityOfDelay(t)))
	}

	if err := a.Store.Expire(ctx, a.counterKey(), CounterTTL(int(n))+ttl); err != nil {
		return 0, "", err
	}

	a.Logger.Debug("auth rejected from ip",
		zap.String("ip", a.IP),
		zap.Int64("n", n),
		zap.Duration("block_ttl", ttl),
	)
	return ttl, msg, nil
}
