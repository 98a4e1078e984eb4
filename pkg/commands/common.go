package commands

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

// Parent is the key parent shared by every command of this package.
const Parent = "Scenario"

func key(name string) command.Key {
	return command.Key{Parent: Parent, Name: name}
}

func scenarioAt(doc *domain.Document, p domain.Path) (*domain.Scenario, error) {
	s, err := domain.Find[*domain.Scenario](doc, p)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return s, nil
}

func constraintAt(doc *domain.Document, p domain.Path) (*domain.Constraint, error) {
	c, err := domain.Find[*domain.Constraint](doc, p)
	if err != nil {
		return nil, fmt.Errorf("constraint: %w", err)
	}
	return c, nil
}

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Register adds every command of this package to r.
func Register(r *command.Registry) {
	ctors := []command.Constructor{
		func() command.Command { return &MoveConstraint{} },
		func() command.Command { return &MoveEvent{} },
		func() command.Command { return &MoveTimeNode{} },
		func() command.Command { return &SetConstraintHeight{} },
		func() command.Command { return &CreateEventAfterEvent{} },
		func() command.Command { return &RemoveEvent{} },
		func() command.Command { return &AddStateToEvent{} },
		func() command.Command { return &AddProcessToConstraint{} },
		func() command.Command { return &RemoveProcessFromConstraint{} },
		func() command.Command { return &AddRackToConstraint{} },
		func() command.Command { return &RemoveRackFromConstraint{} },
		func() command.Command { return &AddSlotToRack{} },
		func() command.Command { return &AddLayerToSlot{} },
		func() command.Command { return &DuplicateConstraint{} },
	}
	for _, ctor := range ctors {
		r.Register(ctor().Key(), ctor)
	}
}

// NewRegistry returns a command registry holding every scenario command.
func NewRegistry() *command.Registry {
	r := command.NewRegistry()
	Register(r)
	return r
}
