package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned by an ObjectLocker when another holder owns the key.
var ErrLocked = errors.New("object is locked")

// UnlockFunc is a function that releases a lock.
type UnlockFunc = func(ctx context.Context) error

// ObjectLocker grants exclusive access to an object path. It never waits:
// when the key is held it fails with ErrLocked.
type ObjectLocker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}

// DistributedLocker defines the interface for distributed concurrency control.
// It allows the Session Manager to coordinate access across multiple instances (replicas).
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or the context is canceled.
	// The lock expires after ttl if the holder never releases it.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
