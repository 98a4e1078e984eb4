package domain

import "fmt"

// CloneConstraint copies src under a new id.
//
// Processes are cloned first, keeping their ids, and a source to clone map is
// built; racks are cloned next and every layer is re-created through the
// factory of the cloned process it now shows. The full view is cloned with
// its id. Secondary view models are never copied: they belong to the view
// layer, which recreates them if it needs to.
func CloneConstraint(src *Constraint, id ConstraintID, factories Factories) (*Constraint, error) {
	c := newBareConstraint(id)
	c.startState = src.startState
	c.endState = src.endState
	c.Durations.copyFrom(src.Durations)
	c.startDate = src.startDate
	c.heightPercentage = src.heightPercentage

	pairs := make(map[Process]Process, src.Processes.Len())
	for _, p := range src.Processes.All() {
		clone, err := p.Clone(p.ID(), c, factories)
		if err != nil {
			return nil, fmt.Errorf("clone process %d: %w", p.ID(), err)
		}
		pairs[p] = clone
		if err := c.Processes.Add(clone); err != nil {
			return nil, err
		}
	}

	for _, r := range src.Racks.All() {
		rack, err := cloneRack(r, r.ID(), func(from, to *Slot) error {
			for _, l := range from.Layers.All() {
				proc, err := l.Process()
				if err != nil {
					return err
				}
				clone, ok := pairs[proc]
				if !ok {
					return structural(KindLayer, int32(l.ID()), "process %d was not cloned", proc.ID())
				}
				f, err := lookupFactory(factories, clone.Kind())
				if err != nil {
					return fmt.Errorf("clone layer %d: %w", l.ID(), err)
				}
				if err := to.Layers.Add(f.CloneLayer(clone, l.ID(), l)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("clone rack %d: %w", r.ID(), err)
		}
		if err := c.Racks.Add(rack); err != nil {
			return nil, err
		}
	}

	c.fullView = src.fullView.Clone(src.fullView.ID(), c)
	c.setupViewModel(c.fullView)
	return c, nil
}

func cloneRack(src *Rack, id RackID, cloneLayers func(from, to *Slot) error) (*Rack, error) {
	r := NewRack(id)
	for _, s := range src.Slots.All() {
		slot := NewSlot(s.ID(), s.Height())
		if err := cloneLayers(s, slot); err != nil {
			return nil, err
		}
		if err := r.Slots.Add(slot); err != nil {
			return nil, err
		}
	}
	return r, nil
}
