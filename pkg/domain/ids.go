package domain

// ID is satisfied by every entity identifier type.
type ID interface {
	~int32
}

// Identifiers are scoped to their parent container: two processes under
// different constraints may share the same ProcessID.
type (
	StateID      int32
	EventID      int32
	TimeNodeID   int32
	ConstraintID int32
	ProcessID    int32
	RackID       int32
	SlotID       int32
	LayerID      int32
	ViewModelID  int32
)
