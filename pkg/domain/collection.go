package domain

import (
	"fmt"
	"slices"
)

// Identified is implemented by every entity stored in a Collection.
type Identified[K ID] interface {
	ID() K
}

// Collection is an ordered, id-indexed set of owned entities.
// Added fires after insertion, Removing before and Removed after removal.
type Collection[K ID, V Identified[K]] struct {
	order []K
	items map[K]V

	Added    Signal[V]
	Removing Signal[V]
	Removed  Signal[V]
}

// Add appends v. It fails with ErrDuplicateID if the id is taken.
func (c *Collection[K, V]) Add(v V) error {
	return c.Insert(len(c.order), v)
}

// Insert places v at index, clamped to the collection bounds.
func (c *Collection[K, V]) Insert(index int, v V) error {
	id := v.ID()
	if _, ok := c.items[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	if c.items == nil {
		c.items = make(map[K]V)
	}
	index = max(0, min(index, len(c.order)))
	c.items[id] = v
	c.order = slices.Insert(c.order, index, id)
	c.Added.Emit(v)
	return nil
}

// Remove detaches the entity with the given id and returns it.
func (c *Collection[K, V]) Remove(id K) (V, error) {
	v, ok := c.items[id]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c.Removing.Emit(v)
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(k K) bool { return k == id })
	c.Removed.Emit(v)
	return v, nil
}

// Get looks up an entity by id.
func (c *Collection[K, V]) Get(id K) (V, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Has reports whether id is present.
func (c *Collection[K, V]) Has(id K) bool {
	_, ok := c.items[id]
	return ok
}

// Len returns the number of entities.
func (c *Collection[K, V]) Len() int {
	return len(c.order)
}

// IndexOf returns the position of id, or -1.
func (c *Collection[K, V]) IndexOf(id K) int {
	return slices.Index(c.order, id)
}

// IDs returns a copy of the ids in order.
func (c *Collection[K, V]) IDs() []K {
	return slices.Clone(c.order)
}

// All returns the entities in order. The slice is a copy, so callers may
// mutate the collection while iterating it.
func (c *Collection[K, V]) All() []V {
	out := make([]V, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// NextID returns an id strictly greater than every id in the collection.
func (c *Collection[K, V]) NextID() K {
	var next K
	for id := range c.items {
		if id > next {
			next = id
		}
	}
	return next + 1
}
