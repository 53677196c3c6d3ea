package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axil/redissentry-core/internal/store"
)

func userExists(known bool) UserExists {
	return func(context.Context, string) (bool, error) { return known, nil }
}

func TestFilterB_UnknownAccountIsNoOp(t *testing.T) {
	fake := store.NewFake()
	calls := 0
	b := &B{Base: newTestBase(fake), IP: "10.0.0.1", Account: "ghost", Escalate: noopEscalate,
		UserExists: func(ctx context.Context, account string) (bool, error) { calls++; return false, nil }}

	for i := 0; i < 3; i++ {
		ttl, msg, err := b.Update(context.Background())
		assert.NoError(t, err)
		assert.Zero(t, ttl)
		assert.Empty(t, msg)
	}

	exists, err := fake.Exists(context.Background(), b.counterKey())
	assert.NoError(t, err)
	assert.False(t, exists, "an unknown account must never gain a B-counter entry")
	assert.Equal(t, 3, calls, "with no counter entry ever created, every call re-consults user_exists")
}

func TestFilterB_BlocksOnDistributedFailures(t *testing.T) {
	fake := store.NewFake()
	b := &B{Base: newTestBase(fake), Account: "alice", Escalate: noopEscalate, UserExists: userExists(true)}

	ips := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1", "10.0.0.2", "10.0.0.1"}
	var lastTTL time.Duration
	var lastMsg string
	for _, ip := range ips {
		b.IP = ip
		var err error
		lastTTL, lastMsg, err = b.Update(context.Background())
		assert.NoError(t, err)
	}

	assert.Equal(t, 5*time.Minute, lastTTL)
	assert.Contains(t, lastMsg, "alice")
	assert.Contains(t, lastMsg, "in 5 minutes")

	ttl, msg, err := b.Test(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
	assert.NotEmpty(t, msg)
}

func TestFilterB_SingleAddressNeverBlocksAlone(t *testing.T) {
	fake := store.NewFake()
	b := &B{Base: newTestBase(fake), IP: "10.0.0.1", Account: "alice", Escalate: noopEscalate, UserExists: userExists(true)}

	for i := 0; i < 20; i++ {
		ttl, msg, err := b.Update(context.Background())
		assert.NoError(t, err)
		assert.Zero(t, ttl, "a single address never produces the distributed-attack signal")
		assert.Empty(t, msg)
	}
}
