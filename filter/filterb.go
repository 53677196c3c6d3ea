package filter

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/axil/redissentry-core/internal/store"
)

// UserExists reports whether account is a known account. FilterB consults
// it at most once per attempt (via the coordinator's memoized cache) to
// avoid creating B-counter state for accounts that don't exist — this is
// what keeps the filter from being usable as a user-enumeration oracle.
type UserExists func(ctx context.Context, account string) (bool, error)

// B is the per-account, distributed-attack-aware filter: its counter is an
// ordered map of packed-address -> per-address failure count, so it can
// tell a single noisy address from credential stuffing spread across many
// addresses.
type B struct {
	Base
	IP         string
	Account    string
	Escalate   Escalate
	History    History
	UserExists UserExists
}

func (b *B) counterKey() string { return "Bc:" + b.Account }
func (b *B) blockKey() string   { return "Bb:" + b.Account }

func (b *B) errorMessage() string {
	return fmt.Sprintf("Too many failed attempts for %s. Try again %%s.", b.Account)
}

// packIP encodes an IPv4 address as 4 big-endian bytes so it can sit as a
// member of the per-account ordered set; an empty address packs as the
// zero value.
func packIP(ip string) string {
	if ip == "" {
		return string([]byte{0, 0, 0, 0})
	}
	parsed := net.ParseIP(ip)
	if v4 := parsed.To4(); v4 != nil {
		return string(v4)
	}
	return string([]byte{0, 0, 0, 0})
}

// Test reads the current B-block and escalates via ZB if active, the same
// shape as FilterA.Test.
func (b *B) Test(ctx context.Context) (time.Duration, string, error) {
	ttl, vis, err := b.testBlock(ctx, b.blockKey())
	if err != nil {
		return 0, "", err
	}
	if ttl == 0 {
		return 0, "", nil
	}
	msg := fmt.Sprintf(b.errorMessage(), DescribeExplicit(ttl, vis))

	escTTL, escMsg, err := b.Escalate(ctx, vis)
	if err != nil {
		return 0, "", err
	}
	t, m := orResult(escTTL, escMsg, ttl, msg)
	return t, m, nil
}

// Update records one failed attempt for this account from this address.
// It is a no-op when the account is both unknown and has no prior
// B-counter entry, so an attacker probing for valid usernames never
// causes any observable state change.
func (b *B) Update(ctx context.Context) (time.Duration, string, error) {
	ipNum, err := b.Store.ZCard(ctx, b.counterKey())
	if err != nil {
		return 0, "", err
	}

	known := false
	if ipNum == 0 {
		known, err = b.UserExists(ctx, b.Account)
		if err != nil {
			return 0, "", err
		}
		if !known {
			return 0, "", nil
		}
	}

	if _, err := b.Store.ZIncrBy(ctx, b.counterKey(), packIP(b.IP), 1); err != nil {
		return 0, "", err
	}
	members, err := b.Store.ZRangeWithScores(ctx, b.counterKey())
	if err != nil {
		return 0, "", err
	}

	newIPNum := int64(len(members))
	var faNum int64
	for _, m := range members {
		faNum += int64(m.Score)
	}

	var ttl time.Duration
	var msg string
	if newIPNum > 1 {
		t := ScheduleBase.Delay(int(faNum), b.Rand)
		if t != 0 {
			if err := b.writeBlock(ctx, b.blockKey(), t); err != nil {
				return 0, "", err
			}
			if b.History != nil {
				b.History(ctx, "username", describeMembers(members), b.Account, int(newIPNum))
			}
			ttl = abs(t)
			msg = fmt.Sprintf(b.errorMessage(), DescribeExplicit(ttl, visibilityOfDelay(t)))
		}
	}

	if err := b.Store.Expire(ctx, b.counterKey(), CounterTTL(int(faNum))+ttl); err != nil {
		return 0, "", err
	}

	b.Logger.Debug("auth rejected for username",
		zap.String("account", b.Account),
		zap.Int64("fa_num", faNum),
		zap.Int64("ip_num", newIPNum),
		zap.Duration("block_ttl", ttl),
	)
	return ttl, msg, nil
}

// describeMembers renders the (address, count) pairs as
// "ip1(n1), ip2(n2), ...", truncated to 2048 bytes.
func describeMembers(members []store.Member) string {
	s := ""
	for i, m := range members {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s(%.0f)", unpackIP(m.Value), m.Score)
	}
	const maxLen = 2048
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

func unpackIP(packed string) string {
	if len(packed) != 4 {
		return "0.0.0.0"
	}
	b := []byte(packed)
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}
