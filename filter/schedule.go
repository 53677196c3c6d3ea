package filter

import "time"

// Schedule is the tiered-delay table shared by the base A/B/W filters and
// the Z escalation family: the Explicit/Implicit split is a variant value
// (which Schedule a filter uses), not a separate type. A failure count n
// that is a positive multiple of Period engages tier n/Period; once tiers
// run out, the delay becomes implicit-random.
type Schedule struct {
	Period int
	Delays []time.Duration // explicit tiers, in order; may be empty
}

// ScheduleBase is the A/B/W tiered schedule: every 5th failure escalates,
// tiers 5/10/30/60 minutes, then implicit-random.
var ScheduleBase = Schedule{
	Period: 5,
	Delays: []time.Duration{5 * time.Minute, 10 * time.Minute, 30 * time.Minute, 60 * time.Minute},
}

// ScheduleZExplicit is the explicit escalation cadence: period 9, a single
// 30-minute explicit tier, then implicit-random.
var ScheduleZExplicit = Schedule{
	Period: 9,
	Delays: []time.Duration{30 * time.Minute},
}

// ScheduleZImplicit is the implicit escalation cadence: period 3, no
// explicit tier — implicit-random from the very first multiple.
var ScheduleZImplicit = Schedule{
	Period: 3,
	Delays: nil,
}

// Delay returns the signed delay for failure count n: 0 if n is not a
// positive multiple of Period, the explicit tier if one remains, otherwise
// a negative implicit-random duration.
func (s Schedule) Delay(n int, src Source) time.Duration {
	if n <= 0 || n%s.Period != 0 {
		return 0
	}
	tier := n / s.Period
	if tier <= len(s.Delays) {
		return s.Delays[tier-1]
	}
	return implicitRandomDelay(src)
}

const (
	// deltaCounterTTLPerFailure and maxCounterTTL bound the A/B counter's
	// own TTL: each failure adds a fifth of a day (one day per tier of 5
	// failures), capped at a week.
	deltaCounterTTLPerFailure = 24 * time.Hour / 5
	maxCounterTTL             = 7 * 24 * time.Hour
	wCounterTTL               = 30 * 24 * time.Hour
)

// CounterTTL caps the A/B counter's own TTL at maxCounterTTL, growing
// by deltaCounterTTLPerFailure per recorded failure below that. The W
// counter uses the fixed wCounterTTL instead.
func CounterTTL(n int) time.Duration {
	ttl := time.Duration(n) * deltaCounterTTLPerFailure
	if ttl > maxCounterTTL {
		return maxCounterTTL
	}
	return ttl
}
