package domain

// Connection identifies one subscription on a Signal.
type Connection uint64

type slot[T any] struct {
	conn Connection
	fn   func(T)
}

// Signal is an explicit list of subscriber callbacks.
// The zero value is ready to use. Signals are not safe for concurrent use;
// a document is only ever mutated from one goroutine at a time.
type Signal[T any] struct {
	next  Connection
	slots []slot[T]
}

// Connect subscribes fn and returns the handle needed to Disconnect it.
func (s *Signal[T]) Connect(fn func(T)) Connection {
	s.next++
	s.slots = append(s.slots, slot[T]{conn: s.next, fn: fn})
	return s.next
}

// Disconnect removes a subscription. It reports whether it was connected.
func (s *Signal[T]) Disconnect(c Connection) bool {
	for i, sl := range s.slots {
		if sl.conn == c {
			// Reallocate so an Emit iterating the old slice is unaffected.
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every subscriber in connection order.
func (s *Signal[T]) Emit(v T) {
	for _, sl := range s.slots {
		sl.fn(v)
	}
}

// Len returns the number of live subscriptions.
func (s *Signal[T]) Len() int {
	return len(s.slots)
}
