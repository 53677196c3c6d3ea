package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/axil/redissentry-core/internal/store"
)

func noopEscalate(context.Context, Visibility) (time.Duration, string, error) {
	return 0, "", nil
}

func newTestBase(fake *store.Fake) Base {
	return Base{Store: fake, Logger: zap.NewNop(), Rand: fixedSource(0.5)}
}

func TestFilterA_UnblockedBeforeThreshold(t *testing.T) {
	fake := store.NewFake()
	a := &A{Base: newTestBase(fake), IP: "1.2.3.4", Escalate: noopEscalate}

	for i := 0; i < 4; i++ {
		ttl, msg, err := a.Update(context.Background())
		assert.NoError(t, err)
		assert.Zero(t, ttl)
		assert.Empty(t, msg)
	}

	ttl, msg, err := a.Test(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, ttl)
	assert.Empty(t, msg)
}

func TestFilterA_BlocksOnFifthFailure(t *testing.T) {
	fake := store.NewFake()
	a := &A{Base: newTestBase(fake), IP: "1.2.3.4", Escalate: noopEscalate}

	var lastTTL time.Duration
	var lastMsg string
	for i := 0; i < 5; i++ {
		var err error
		lastTTL, lastMsg, err = a.Update(context.Background())
		assert.NoError(t, err)
	}
	assert.Equal(t, 5*time.Minute, lastTTL)
	assert.Equal(t, "Too many failed attempts. Try again in 5 minutes.", lastMsg)

	ttl, msg, err := a.Test(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
	assert.Equal(t, "Too many failed attempts. Try again in 5 minutes.", msg)
}

func TestFilterA_TestEscalatesViaCallback(t *testing.T) {
	fake := store.NewFake()
	escalated := false
	a := &A{Base: newTestBase(fake), IP: "1.2.3.4", Escalate: func(ctx context.Context, vis Visibility) (time.Duration, string, error) {
		escalated = true
		return 30 * time.Minute, "escalated message", nil
	}}

	for i := 0; i < 5; i++ {
		_, _, err := a.Update(context.Background())
		assert.NoError(t, err)
	}

	ttl, msg, err := a.Test(context.Background())
	assert.NoError(t, err)
	assert.True(t, escalated)
	assert.Equal(t, 30*time.Minute, ttl)
	assert.Equal(t, "escalated message", msg)
}

func TestFilterA_HistoryRecordsAccount(t *testing.T) {
	fake := store.NewFake()
	var gotAccount string
	a := &A{Base: newTestBase(fake), IP: "1.2.3.4", Account: "alice", Escalate: noopEscalate,
		History: func(ctx context.Context, kind, subject, account string, count int) {
			gotAccount = account
		}}

	for i := 0; i < 5; i++ {
		_, _, err := a.Update(context.Background())
		assert.NoError(t, err)
	}

	assert.Equal(t, "alice", gotAccount)
}

func TestFilterA_UpdateReturnsStoreError(t *testing.T) {
	a := &A{Base: Base{Store: erroringStore{}, Logger: zap.NewNop(), Rand: fixedSource(0.5)}, IP: "1.2.3.4", Escalate: noopEscalate}
	_, _, err := a.Update(context.Background())
	assert.Error(t, err)
}
