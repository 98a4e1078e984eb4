package commands

import (
	"fmt"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

// AddRackToConstraint adds an empty rack. The full view shows it when it was
// showing nothing.
type AddRackToConstraint struct {
	Constraint domain.Path   `json:"constraint"`
	Rack       domain.RackID `json:"rack"`
	Show       bool          `json:"show"`
}

func NewAddRackToConstraint(doc *domain.Document, constraint domain.Path) (*AddRackToConstraint, error) {
	c, err := constraintAt(doc, constraint)
	if err != nil {
		return nil, err
	}
	_, shown := c.FullView().ShownRack()
	return &AddRackToConstraint{Constraint: constraint, Rack: c.Racks.NextID(), Show: !shown}, nil
}

func (m *AddRackToConstraint) Key() command.Key { return key("AddRackToConstraint") }

func (m *AddRackToConstraint) Redo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if err := c.Racks.Add(domain.NewRack(m.Rack)); err != nil {
		return err
	}
	if m.Show {
		c.FullView().ShowRack(m.Rack)
	}
	return nil
}

func (m *AddRackToConstraint) Undo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if _, err := c.Racks.Remove(m.Rack); err != nil {
		return fmt.Errorf("rack %d: %w", m.Rack, err)
	}
	return nil
}

func (m *AddRackToConstraint) MergeWith(command.Command) bool { return false }

func (m *AddRackToConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *AddRackToConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }

// RemoveRackFromConstraint removes a rack with its slots and layers.
type RemoveRackFromConstraint struct {
	Constraint domain.Path     `json:"constraint"`
	Index      int             `json:"index"`
	Data       domain.RackData `json:"data"`
	Shown      bool            `json:"shown"`
}

func NewRemoveRackFromConstraint(doc *domain.Document, constraint domain.Path, id domain.RackID) (*RemoveRackFromConstraint, error) {
	c, err := constraintAt(doc, constraint)
	if err != nil {
		return nil, err
	}
	r, ok := c.Racks.Get(id)
	if !ok {
		return nil, fmt.Errorf("rack %d: %w", id, domain.ErrNotFound)
	}
	shown, ok := c.FullView().ShownRack()
	return &RemoveRackFromConstraint{
		Constraint: constraint,
		Index:      c.Racks.IndexOf(id),
		Data:       r.Snapshot(),
		Shown:      ok && shown == id,
	}, nil
}

func (m *RemoveRackFromConstraint) Key() command.Key { return key("RemoveRackFromConstraint") }

func (m *RemoveRackFromConstraint) Redo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if _, err := c.Racks.Remove(m.Data.ID); err != nil {
		return fmt.Errorf("rack %d: %w", m.Data.ID, err)
	}
	return nil
}

func (m *RemoveRackFromConstraint) Undo(doc *domain.Document) error {
	c, err := constraintAt(doc, m.Constraint)
	if err != nil {
		return err
	}
	if err := c.Racks.Insert(m.Index, domain.RestoreRack(m.Data)); err != nil {
		return err
	}
	if m.Shown {
		c.FullView().ShowRack(m.Data.ID)
	}
	return nil
}

func (m *RemoveRackFromConstraint) MergeWith(command.Command) bool { return false }

func (m *RemoveRackFromConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *RemoveRackFromConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }

// AddSlotToRack appends a slot to a rack.
type AddSlotToRack struct {
	Rack   domain.Path   `json:"rack"`
	Slot   domain.SlotID `json:"slot"`
	Height float64       `json:"height"`
}

func NewAddSlotToRack(doc *domain.Document, rack domain.Path, height float64) (*AddSlotToRack, error) {
	r, err := domain.Find[*domain.Rack](doc, rack)
	if err != nil {
		return nil, err
	}
	return &AddSlotToRack{Rack: rack, Slot: r.Slots.NextID(), Height: height}, nil
}

func (m *AddSlotToRack) Key() command.Key { return key("AddSlotToRack") }

func (m *AddSlotToRack) Redo(doc *domain.Document) error {
	r, err := domain.Find[*domain.Rack](doc, m.Rack)
	if err != nil {
		return err
	}
	return r.Slots.Add(domain.NewSlot(m.Slot, m.Height))
}

func (m *AddSlotToRack) Undo(doc *domain.Document) error {
	r, err := domain.Find[*domain.Rack](doc, m.Rack)
	if err != nil {
		return err
	}
	if _, err := r.Slots.Remove(m.Slot); err != nil {
		return fmt.Errorf("slot %d: %w", m.Slot, err)
	}
	return nil
}

func (m *AddSlotToRack) MergeWith(command.Command) bool { return false }

func (m *AddSlotToRack) Serialize() ([]byte, error) { return marshal(m) }
func (m *AddSlotToRack) Deserialize(data []byte) error { return unmarshal(data, m) }

// AddLayerToSlot shows a process of the enclosing constraint in a slot.
type AddLayerToSlot struct {
	Slot    domain.Path      `json:"slot"`
	Layer   domain.LayerID   `json:"layer"`
	Process domain.ProcessID `json:"process"`
}

func NewAddLayerToSlot(doc *domain.Document, slot domain.Path, process domain.ProcessID) (*AddLayerToSlot, error) {
	s, err := domain.Find[*domain.Slot](doc, slot)
	if err != nil {
		return nil, err
	}
	return &AddLayerToSlot{Slot: slot, Layer: s.Layers.NextID(), Process: process}, nil
}

func (m *AddLayerToSlot) Key() command.Key { return key("AddLayerToSlot") }

func (m *AddLayerToSlot) Redo(doc *domain.Document) error {
	s, err := domain.Find[*domain.Slot](doc, m.Slot)
	if err != nil {
		return err
	}
	if s.Rack() == nil || s.Rack().Constraint() == nil {
		return &domain.StructuralError{Kind: domain.KindSlot, ID: int32(s.ID()), Reason: "slot is detached from its constraint"}
	}
	c := s.Rack().Constraint()
	p, ok := c.Processes.Get(m.Process)
	if !ok {
		return fmt.Errorf("process %d: %w", m.Process, domain.ErrNotFound)
	}
	f, err := factoryFor(doc, p.Kind())
	if err != nil {
		return err
	}
	return s.Layers.Add(f.MakeLayer(p, m.Layer))
}

func (m *AddLayerToSlot) Undo(doc *domain.Document) error {
	s, err := domain.Find[*domain.Slot](doc, m.Slot)
	if err != nil {
		return err
	}
	if _, err := s.Layers.Remove(m.Layer); err != nil {
		return fmt.Errorf("layer %d: %w", m.Layer, err)
	}
	return nil
}

func (m *AddLayerToSlot) MergeWith(command.Command) bool { return false }

func (m *AddLayerToSlot) Serialize() ([]byte, error) { return marshal(m) }
func (m *AddLayerToSlot) Deserialize(data []byte) error { return unmarshal(data, m) }
