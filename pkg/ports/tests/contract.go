package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/cadence/pkg/ports"
)

// ObjectLockerContractTest is a reusable test suite that verifies if an adapter complies with ports.ObjectLocker.
func ObjectLockerContractTest(t *testing.T, locker ports.ObjectLocker) {
	t.Helper()
	ctx := context.Background()

	t.Run("Lock_Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
		if err != nil {
			t.Fatalf("unexpected error locking: %v", err)
		}
		_, err = locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
		if !errors.Is(err, ports.ErrLocked) {
			t.Errorf("expected ErrLocked for a held key, got %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error unlocking: %v", err)
		}
	})

	t.Run("Lock_AfterUnlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "Constraint.0/Process.0/Constraint.1")
		if err != nil {
			t.Fatalf("expected key to be free after unlock, got %v", err)
		}
		_ = unlock(ctx)
	})

	t.Run("Lock_IndependentKeys", func(t *testing.T) {
		u1, err := locker.Lock(ctx, "Constraint.0/Process.0/Event.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer func() { _ = u1(ctx) }()
		u2, err := locker.Lock(ctx, "Constraint.0/Process.0/Event.2")
		if err != nil {
			t.Errorf("distinct keys must not contend, got %v", err)
			return
		}
		_ = u2(ctx)
	})

	t.Run("Unlock_Idempotent", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "Constraint.0/Process.0/TimeNode.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error unlocking: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Errorf("second unlock should be harmless, got %v", err)
		}
		other, err := locker.Lock(ctx, "Constraint.0/Process.0/TimeNode.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// A stale unlock must not release someone else's lock.
		_ = unlock(ctx)
		if _, err := locker.Lock(ctx, "Constraint.0/Process.0/TimeNode.1"); !errors.Is(err, ports.ErrLocked) {
			t.Errorf("stale unlock released a live lock: %v", err)
		}
		_ = other(ctx)
	})
}
