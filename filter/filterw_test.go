package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axil/redissentry-core/internal/store"
)

func TestFilterW_IsWhitelistedReflectsWhitelistCall(t *testing.T) {
	fake := store.NewFake()
	w := &W{Base: newTestBase(fake), IP: "10.0.0.1", Account: "alice", Escalate: noopEscalate}

	ok, err := w.IsWhitelisted(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, w.Whitelist(context.Background()))

	ok, err = w.IsWhitelisted(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterW_BlocksAfterFiveFailures(t *testing.T) {
	fake := store.NewFake()
	w := &W{Base: newTestBase(fake), IP: "10.0.0.1", Account: "alice", Escalate: noopEscalate}
	assert.NoError(t, w.Whitelist(context.Background()))

	var lastTTL time.Duration
	for i := 0; i < 5; i++ {
		var err error
		lastTTL, _, err = w.Update(context.Background())
		assert.NoError(t, err)
	}
	assert.Equal(t, 5*time.Minute, lastTTL)

	ttl, msg, err := w.Test(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
	assert.NotEmpty(t, msg)
}
