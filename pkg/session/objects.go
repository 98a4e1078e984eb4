package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/cadence/pkg/ports"
	"github.com/google/uuid"
)

// ObjectLocks is an in-process ports.ObjectLocker.
type ObjectLocks struct {
	mu   sync.Mutex
	held map[string]string
}

func NewObjectLocks() *ObjectLocks {
	return &ObjectLocks{held: make(map[string]string)}
}

// Lock takes key or fails with ports.ErrLocked. The returned function only
// releases the lock it was returned with.
func (l *ObjectLocks) Lock(_ context.Context, key string) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, fmt.Errorf("%s: %w", key, ports.ErrLocked)
	}
	token := uuid.NewString()
	l.held[key] = token
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// Held reports whether key is currently locked.
func (l *ObjectLocks) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
