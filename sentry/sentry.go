// Package sentry implements the per-attempt coordinator: it wires together
// FilterA, FilterB, FilterW and their ZA/ZB/ZW escalation companions, and
// exposes the Ask/Inform decision surface a login endpoint calls around
// each authentication attempt.
package sentry

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/axil/redissentry-core/filter"
	"github.com/axil/redissentry-core/internal/metrics"
	"github.com/axil/redissentry-core/internal/store"
)

// Capabilities bundles the collaborator callbacks a Sentry needs at
// construction, in place of a back-reference cycle (a filter holding a
// pointer to its owning coordinator).
type Capabilities struct {
	// UserExists is consulted by FilterB at most once per attempt.
	UserExists filter.UserExists
	// History is the fire-and-forget audit callback shared by every
	// filter that places or escalates a block.
	History filter.History
}

// Sentry is one per-attempt coordinator instance: construct it for a
// single (address, account) pair, call Ask once before authenticating and
// Inform once after, then discard it. All state lives in the store.
type Sentry struct {
	ip      string
	account string
	logger  *zap.Logger

	caps Capabilities

	userExistsOnce sync.Once
	userExistsVal  bool
	userExistsErr  error

	whitelisted bool

	fa *filter.A
	fb *filter.B
	fw *filter.W

	zaExplicit, zaImplicit *filter.Z
	zbExplicit, zbImplicit *filter.Z
	zwExplicit, zwImplicit *filter.Z
}

// New builds a Sentry for one attempt. st is the shared store, logger the
// process-wide structured logger, rnd the process-wide (mutex-guarded)
// random source for implicit-random delays.
func New(ip, account string, st store.Client, logger *zap.Logger, rnd filter.Source, caps Capabilities) *Sentry {
	base := filter.Base{Store: st, Logger: logger, Rand: rnd}

	s := &Sentry{ip: ip, account: account, logger: logger, caps: caps}

	s.zaExplicit = filter.NewZA(base, ip, filter.ScheduleZExplicit, caps.History)
	s.zaImplicit = filter.NewZA(base, ip, filter.ScheduleZImplicit, caps.History)
	s.zbExplicit = filter.NewZB(base, account, filter.ScheduleZExplicit, caps.History)
	s.zbImplicit = filter.NewZB(base, account, filter.ScheduleZImplicit, caps.History)
	s.zwExplicit = filter.NewZW(base, ip, account, filter.ScheduleZExplicit, caps.History)
	s.zwImplicit = filter.NewZW(base, ip, account, filter.ScheduleZImplicit, caps.History)

	s.fa = &filter.A{Base: base, IP: ip, Account: account, History: caps.History, Escalate: s.escalateA}
	s.fb = &filter.B{Base: base, IP: ip, Account: account, History: caps.History, UserExists: s.cachedUserExists, Escalate: s.escalateB}
	s.fw = &filter.W{Base: base, IP: ip, Account: account, History: caps.History, Escalate: s.escalateW}

	return s
}

// cachedUserExists caches the UserExists lookup: the callback fires at
// most once per Sentry instance no matter how many times FilterB consults
// it within one attempt.
func (s *Sentry) cachedUserExists(ctx context.Context, account string) (bool, error) {
	s.userExistsOnce.Do(func() {
		s.userExistsVal, s.userExistsErr = s.caps.UserExists(ctx, account)
	})
	return s.userExistsVal, s.userExistsErr
}

// escalateA/B/W dispatch an active block to the Explicit or Implicit
// companion filter based on the block's current visibility: an explicit
// block escalates on the explicit cadence, an implicit one on the
// implicit cadence. Each records the escalation metric when one lands.
func (s *Sentry) escalateA(ctx context.Context, vis filter.Visibility) (time.Duration, string, error) {
	z := s.zaExplicit
	if vis == filter.Implicit {
		z = s.zaImplicit
	}
	ttl, msg, err := z.Update(ctx)
	if err == nil && msg != "" {
		metrics.EscalationsTotal.WithLabelValues("za", vis.String()).Inc()
	}
	return ttl, msg, err
}

func (s *Sentry) escalateB(ctx context.Context, vis filter.Visibility) (time.Duration, string, error) {
	z := s.zbExplicit
	if vis == filter.Implicit {
		z = s.zbImplicit
	}
	ttl, msg, err := z.Update(ctx)
	if err == nil && msg != "" {
		metrics.EscalationsTotal.WithLabelValues("zb", vis.String()).Inc()
	}
	return ttl, msg, err
}

func (s *Sentry) escalateW(ctx context.Context, vis filter.Visibility) (time.Duration, string, error) {
	z := s.zwExplicit
	if vis == filter.Implicit {
		z = s.zwImplicit
	}
	ttl, msg, err := z.Update(ctx)
	if err == nil && msg != "" {
		metrics.EscalationsTotal.WithLabelValues("zw", vis.String()).Inc()
	}
	return ttl, msg, err
}

// Ask reports whether this attempt should be rejected before credentials
// are even checked: an empty string means proceed, anything else is the
// user-facing rejection message. FilterW is consulted first so a
// whitelisted-but-blocked pair is resolved without a second round trip;
// FilterA and FilterB are combined with filter.MaxResult otherwise. Ask is
// wrapped in failOpen so no store error ever reaches the caller.
func (s *Sentry) Ask(ctx context.Context) string {
	return failOpen(s.logger, "ask", func() (string, error) { return s.ask(ctx) })
}

func (s *Sentry) ask(ctx context.Context) (string, error) {
	wTTL, wMsg, err := s.fw.Test(ctx)
	if err != nil {
		return "", err
	}
	if wTTL != 0 || wMsg != "" {
		s.whitelisted = true
		return wMsg, nil
	}

	whitelisted, err := s.fw.IsWhitelisted(ctx)
	if err != nil {
		return "", err
	}
	s.whitelisted = whitelisted
	if whitelisted {
		return "", nil
	}

	aTTL, aMsg, err := s.fa.Test(ctx)
	if err != nil {
		return "", err
	}
	bTTL, bMsg, err := s.fb.Test(ctx)
	if err != nil {
		return "", err
	}
	_, msg := filter.MaxResult(aTTL, aMsg, bTTL, bMsg)
	return msg, nil
}

// Inform records the outcome of an attempt Ask already let through:
// success promotes the pair to the whitelist, failure records against
// whichever filter currently governs this pair. Like Ask, it is wrapped
// in failOpen.
func (s *Sentry) Inform(ctx context.Context, success bool) string {
	return failOpen(s.logger, "inform", func() (string, error) { return s.inform(ctx, success) })
}

func (s *Sentry) inform(ctx context.Context, success bool) (string, error) {
	if success {
		if err := s.fw.Whitelist(ctx); err != nil {
			return "", err
		}
		metrics.WhitelistPromotionsTotal.Inc()
		return "", nil
	}

	if s.whitelisted {
		ttl, msg, err := s.fw.Update(ctx)
		if err != nil {
			return "", err
		}
		s.recordBlock("w", ttl, msg)
		return msg, nil
	}

	aTTL, aMsg, err := s.fa.Update(ctx)
	if err != nil {
		return "", err
	}
	s.recordBlock("a", aTTL, aMsg)

	bTTL, bMsg, err := s.fb.Update(ctx)
	if err != nil {
		return "", err
	}
	s.recordBlock("b", bTTL, bMsg)

	_, msg := filter.MaxResult(aTTL, aMsg, bTTL, bMsg)
	return msg, nil
}

// recordBlock increments the block-placed metric when a filter's Update
// newly blocked the attempt. The filters never return a negative TTL (they
// report the magnitude, not the sign), so visibility is read off the
// rendered message instead: an implicit block's message always ends in
// the literal word "later".
func (s *Sentry) recordBlock(name string, ttl time.Duration, msg string) {
	if ttl == 0 && msg == "" {
		return
	}
	vis := filter.Explicit
	if strings.HasSuffix(strings.TrimSpace(msg), "later.") {
		vis = filter.Implicit
	}
	metrics.BlocksTotal.WithLabelValues(name, vis.String()).Inc()
}
