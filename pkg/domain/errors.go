package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id cannot be resolved in its container.
var ErrNotFound = errors.New("entity not found")

// ErrDuplicateID is returned when an entity is added twice to a container.
var ErrDuplicateID = errors.New("duplicate entity id")

// ErrStructural marks a corrupted document: a dangling weak reference or a
// missing required object. Callers must not try to repair it.
var ErrStructural = errors.New("structural invariant violated")

// ErrFactoryNotFound is returned when no process factory is registered for a kind.
var ErrFactoryNotFound = errors.New("process factory not found")

// ErrInvalidPath is returned when an object path is malformed or does not
// match the document tree.
var ErrInvalidPath = errors.New("invalid object path")

// StructuralError details which reference could not be resolved.
type StructuralError struct {
	Kind   Kind
	ID     int32
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s %s %d: %s", ErrStructural, e.Kind, e.ID, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

func structural(kind Kind, id int32, format string, args ...any) error {
	return &StructuralError{Kind: kind, ID: id, Reason: fmt.Sprintf(format, args...)}
}
