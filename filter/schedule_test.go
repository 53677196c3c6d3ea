package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedSource always returns the same float, so implicit-random delays
// become deterministic in tests.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestScheduleBaseTiers(t *testing.T) {
	src := fixedSource(0.5)
	assert.Zero(t, ScheduleBase.Delay(1, src))
	assert.Zero(t, ScheduleBase.Delay(4, src))
	assert.Equal(t, 5*time.Minute, ScheduleBase.Delay(5, src))
	assert.Equal(t, 10*time.Minute, ScheduleBase.Delay(10, src))
	assert.Equal(t, 30*time.Minute, ScheduleBase.Delay(15, src))
	assert.Equal(t, 60*time.Minute, ScheduleBase.Delay(20, src))
	// tiers exhausted: falls through to a negative implicit-random delay.
	assert.Negative(t, ScheduleBase.Delay(25, src))
}

func TestScheduleZExplicitTiers(t *testing.T) {
	src := fixedSource(0.5)
	assert.Zero(t, ScheduleZExplicit.Delay(1, src))
	assert.Equal(t, 30*time.Minute, ScheduleZExplicit.Delay(9, src))
	assert.Negative(t, ScheduleZExplicit.Delay(18, src))
}

func TestScheduleZImplicitHasNoExplicitTier(t *testing.T) {
	src := fixedSource(0.5)
	assert.Zero(t, ScheduleZImplicit.Delay(1, src))
	assert.Zero(t, ScheduleZImplicit.Delay(2, src))
	assert.Negative(t, ScheduleZImplicit.Delay(3, src))
	assert.Negative(t, ScheduleZImplicit.Delay(6, src))
}

func TestCounterTTLMonotonicAndCapped(t *testing.T) {
	prev := CounterTTL(0)
	for n := 1; n <= 50; n++ {
		ttl := CounterTTL(n)
		assert.GreaterOrEqual(t, ttl, prev)
		assert.LessOrEqual(t, ttl, maxCounterTTL)
		prev = ttl
	}
	assert.Equal(t, maxCounterTTL, CounterTTL(1000))
}
