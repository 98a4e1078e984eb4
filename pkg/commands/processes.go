package commands

import (
	"fmt"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

func factoryFor(doc *domain.Document, kind string) (domain.ProcessFactory, error) {
	if f := doc.Factories(); f != nil {
		if pf, ok := f.Factory(kind); ok {
			return pf, nil
		}
	}
	return nil, &domain.FactoryError{Kind: kind}
}

// AddProcessToConstraint creates a process of the given kind in a
// constraint. The process lasts as long as the constraint.
type AddProcessToConstraint struct {
	Constraint domain.Path      `json:"constraint"`
	Kind       string           `json:"kind"`
	Process    domain.ProcessID `json:"process"`
	Duration   time.Duration    `json:"duration"`
}

func NewAddProcessToConstraint(doc *domain.Document, constraint domain.Path, kind string) (*AddProcessToConstraint, error) {
	c, err := constraintAt(doc, constraint)
	if err != nil {
		return nil, err
	}
	if _, err := factoryFor(doc, kind); err != nil {
		return nil, err
	}
	return &AddProcessToConstraint{
		Constraint: constraint,
		Kind:       kind,
		Process:    c.Processes.NextID(),
		Duration:   c.Durations.Default(),
	}, nil
}

func (m *AddProcessToConstraint) Key() command.Key { return key("AddProcessToConstraint") }

func (m *AddProcessToConstraint) Redo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	f, err := factoryFor(doc, m.Kind)
	if err != nil {
		return err
	}
	if err := ensureFree(&c.Processes, m.Process); err != nil {
		return err
	}
	return c.Processes.Add(f.MakeProcess(m.Process, m.Duration, c))
}

func (m *AddProcessToConstraint) Undo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if _, err := c.Processes.Remove(m.Process); err != nil {
		return fmt.Errorf("process %d: %w", m.Process, err)
	}
	return nil
}

func (m *AddProcessToConstraint) MergeWith(command.Command) bool { return false }

func (m *AddProcessToConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *AddProcessToConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }

type removedLayer struct {
	Rack  domain.RackID    `json:"rack"`
	Slot  domain.SlotID    `json:"slot"`
	Index int              `json:"index"`
	Data  domain.LayerData `json:"data"`
}

// RemoveProcessFromConstraint removes a process and, through the constraint,
// every layer showing it. Undo puts the layers back where they were.
type RemoveProcessFromConstraint struct {
	Constraint domain.Path        `json:"constraint"`
	Index      int                `json:"index"`
	Data       domain.ProcessData `json:"data"`
	Layers     []removedLayer     `json:"layers"`
}

func NewRemoveProcessFromConstraint(doc *domain.Document, constraint domain.Path, id domain.ProcessID) (*RemoveProcessFromConstraint, error) {
	c, err := constraintAt(doc, constraint)
	if err != nil {
		return nil, err
	}
	if c == doc.Base() && id == domain.RootScenarioID {
		return nil, fmt.Errorf("process %d: %w", id, ErrProtected)
	}
	p, ok := c.Processes.Get(id)
	if !ok {
		return nil, fmt.Errorf("process %d: %w", id, domain.ErrNotFound)
	}
	data, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	m := &RemoveProcessFromConstraint{Constraint: constraint, Index: c.Processes.IndexOf(id), Data: data}
	for _, r := range c.Racks.All() {
		for _, s := range r.Slots.All() {
			for i, l := range s.Layers.All() {
				if l.ProcessID() == id {
					m.Layers = append(m.Layers, removedLayer{Rack: r.ID(), Slot: s.ID(), Index: i, Data: l.Snapshot()})
				}
			}
		}
	}
	return m, nil
}

func (m *RemoveProcessFromConstraint) Key() command.Key { return key("RemoveProcessFromConstraint") }

func (m *RemoveProcessFromConstraint) Redo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if _, err := c.Processes.Remove(m.Data.ID); err != nil {
		return fmt.Errorf("process %d: %w", m.Data.ID, err)
	}
	return nil
}

func (m *RemoveProcessFromConstraint) Undo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	f, err := factoryFor(doc, m.Data.Kind)
	if err != nil {
		return err
	}
	p, err := f.Restore(m.Data, c, doc.Factories())
	if err != nil {
		return err
	}
	if err := c.Processes.Insert(m.Index, p); err != nil {
		return err
	}
	for _, rl := range m.Layers {
		r, ok := c.Racks.Get(rl.Rack)
		if !ok {
			return &domain.StructuralError{Kind: domain.KindRack, ID: int32(rl.Rack), Reason: "rack missing while restoring layers"}
		}
		s, ok := r.Slots.Get(rl.Slot)
		if !ok {
			return &domain.StructuralError{Kind: domain.KindSlot, ID: int32(rl.Slot), Reason: "slot missing while restoring layers"}
		}
		if err := s.Layers.Insert(rl.Index, domain.RestoreLayer(rl.Data)); err != nil {
			return err
		}
	}
	return nil
}

func (m *RemoveProcessFromConstraint) MergeWith(command.Command) bool { return false }

func (m *RemoveProcessFromConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *RemoveProcessFromConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }
