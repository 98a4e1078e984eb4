package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/cadence/pkg/domain"
)

// Registry maps process kinds to their factories. It implements
// domain.Factories and is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]domain.ProcessFactory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]domain.ProcessFactory),
	}
}

// Register adds a factory under its Kind.
// If a factory with the same kind exists, it is overwritten.
func (r *Registry) Register(f domain.ProcessFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.Kind()] = f
}

// Factory looks up the factory of kind.
func (r *Registry) Factory(kind string) (domain.ProcessFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, ok
}

// MustFactory is Factory returning a domain.FactoryError when kind is unknown.
func (r *Registry) MustFactory(kind string) (domain.ProcessFactory, error) {
	f, ok := r.Factory(kind)
	if !ok {
		return nil, fmt.Errorf("registry: %w", &domain.FactoryError{Kind: kind})
	}
	return f, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
