package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/adapters/redis"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "doc1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:doc1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:doc1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "doc", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock2, err := locker.Lock(ctx, "doc", time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:doc"), "expired holder must not release the new lock")
	require.NoError(t, unlock2(ctx))
}

func TestRedisObjectLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.ObjectLockerContractTest(t, redis.NewObjectLocker(client, "test:", 0))
}

func TestRedisObjectLocker_TTL(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewObjectLocker(client, "test:", time.Second)
	ctx := context.Background()

	_, err := locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
	require.NoError(t, err)
	_, err = locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
	assert.ErrorIs(t, err, ports.ErrLocked)

	mr.FastForward(2 * time.Second)
	unlock, err := locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
