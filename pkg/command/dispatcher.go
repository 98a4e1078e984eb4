package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
)

// Unlock releases an object lock.
type Unlock = func(ctx context.Context) error

// Locker grants exclusive, non-blocking access to an object. Lock fails when
// another holder owns key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// OngoingDispatcher drives a continuous edit. Each Submit replaces the
// pending command, so the document always shows exactly one pending effect.
// Commit hands that command to the stack; Rollback discards it.
type OngoingDispatcher struct {
	stack   *Stack
	locker  Locker
	path    domain.Path
	current Command
	unlock  Unlock
	logger  *slog.Logger
}

// DispatcherOption configures an OngoingDispatcher.
type DispatcherOption func(*OngoingDispatcher)

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *OngoingDispatcher) {
		d.logger = logger
	}
}

// NewOngoingDispatcher creates a dispatcher editing the object at path.
func NewOngoingDispatcher(stack *Stack, locker Locker, path domain.Path, opts ...DispatcherOption) *OngoingDispatcher {
	d := &OngoingDispatcher{stack: stack, locker: locker, path: path, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Document returns the document being edited.
func (d *OngoingDispatcher) Document() *domain.Document { return d.stack.Document() }

// Path returns the edited object path.
func (d *OngoingDispatcher) Path() domain.Path { return d.path }

// LockKey is the object lock key: the document id followed by the path, so
// equal paths in different documents do not exclude each other.
func (d *OngoingDispatcher) LockKey() string {
	return d.stack.Document().ID + "/" + d.path.String()
}

// Pending reports whether a command awaits commit or rollback.
func (d *OngoingDispatcher) Pending() bool { return d.current != nil }

// Current returns the pending command, or nil.
func (d *OngoingDispatcher) Current() Command { return d.current }

// Submit undoes the pending command, if any, and applies cmd in its place.
// The object lock is taken on the first submission. If cmd fails, the
// document is left as it was before the edit started and the lock is
// released.
func (d *OngoingDispatcher) Submit(ctx context.Context, cmd Command) error {
	if d.unlock == nil {
		unlock, err := d.locker.Lock(ctx, d.LockKey())
		if err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		d.unlock = unlock
	}

	doc := d.stack.Document()
	if d.current != nil {
		prev := d.current
		d.current = nil
		if err := prev.Undo(doc); err != nil {
			d.release(ctx)
			return fmt.Errorf("undo pending %s: %w", prev.Key(), err)
		}
	}
	if err := cmd.Redo(doc); err != nil {
		d.release(ctx)
		return fmt.Errorf("submit %s: %w", cmd.Key(), err)
	}
	d.current = cmd
	return nil
}

// Commit records the pending command on the stack without applying it again.
func (d *OngoingDispatcher) Commit(ctx context.Context) error {
	if d.current == nil {
		d.release(ctx)
		return nil
	}
	d.stack.PushApplied(d.current)
	d.current = nil
	d.release(ctx)
	return nil
}

// Rollback undoes and discards the pending command.
func (d *OngoingDispatcher) Rollback(ctx context.Context) error {
	if d.current == nil {
		d.release(ctx)
		return nil
	}
	cmd := d.current
	d.current = nil
	defer d.release(ctx)
	if err := cmd.Undo(d.stack.Document()); err != nil {
		return fmt.Errorf("rollback %s: %w", cmd.Key(), err)
	}
	return nil
}

func (d *OngoingDispatcher) release(ctx context.Context) {
	if d.unlock == nil {
		return
	}
	unlock := d.unlock
	d.unlock = nil
	if err := unlock(ctx); err != nil {
		d.logger.Warn("Failed to release object lock",
			"key", d.LockKey(),
			"err", err,
		)
	}
}
