package command

import (
	"errors"

	"github.com/aretw0/cadence/pkg/domain"
)

var (
	// ErrUnknownCommand is returned when no constructor is registered for a Key.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNothingToUndo is returned by Stack.Undo on an empty done sequence.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Stack.Redo on an empty undone sequence.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Key identifies a command type: the factory it belongs to and its name.
type Key struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

func (k Key) String() string {
	return k.Parent + "/" + k.Name
}

// Command is an undoable mutation of a document.
//
// Redo and Undo resolve their targets on doc through object paths, so a
// command may be applied to any replica of the document it was created on.
// Both report resolution failures instead of ignoring them.
type Command interface {
	Key() Key
	Redo(doc *domain.Document) error
	Undo(doc *domain.Document) error
	// MergeWith absorbs other into the receiver and reports whether it did.
	// It must not mutate anything when it returns false.
	MergeWith(other Command) bool
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
}
