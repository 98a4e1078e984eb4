package domain

import (
	"fmt"
	"time"
)

const (
	// BaseConstraintID is the id of the root constraint of every document.
	BaseConstraintID ConstraintID = 0
	// RootScenarioID is the id of the scenario hosted by the base constraint.
	RootScenarioID ProcessID = 0
)

// DefaultDocumentDuration is used when a document is created without one.
const DefaultDocumentDuration = 5 * time.Minute

// Document is the addressing root of a scenario: a base constraint hosting
// the root Scenario process.
type Document struct {
	ID        string
	base      *Constraint
	factories Factories
}

// NewDocument creates an empty document. factories is the process factory
// lookup used by cloning and process creation.
func NewDocument(id string, factories Factories, duration time.Duration) *Document {
	if duration <= 0 {
		duration = DefaultDocumentDuration
	}
	base := NewConstraint(BaseConstraintID, 0, 0, duration)
	scenario := NewScenario(RootScenarioID, duration, base)
	_ = base.Processes.Add(scenario)
	return &Document{ID: id, base: base, factories: factories}
}

func (d *Document) Base() *Constraint { return d.base }
func (d *Document) Factories() Factories { return d.factories }

// Scenario returns the root scenario.
func (d *Document) Scenario() *Scenario {
	p, _ := d.base.Processes.Get(RootScenarioID)
	s, _ := p.(*Scenario)
	return s
}

// RootScenarioPath addresses the root scenario of any document.
func RootScenarioPath() Path {
	return Path{{Kind: KindConstraint, ID: int32(BaseConstraintID)}, {Kind: KindProcess, ID: int32(RootScenarioID)}}
}

// Resolve walks p from the base constraint.
func (d *Document) Resolve(p Path) (any, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if p[0].Kind != KindConstraint || ConstraintID(p[0].ID) != d.base.ID() {
		return nil, fmt.Errorf("%w: %s does not start at the base constraint", ErrInvalidPath, p)
	}
	var cur any = d.base
	for i, seg := range p[1:] {
		next, err := child(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s at %s: %w", p, p[:i+2], err)
		}
		cur = next
	}
	return cur, nil
}

func child(parent any, seg Segment) (any, error) {
	switch node := parent.(type) {
	case *Constraint:
		switch seg.Kind {
		case KindProcess:
			if p, ok := node.Processes.Get(ProcessID(seg.ID)); ok {
				return p, nil
			}
		case KindRack:
			if r, ok := node.Racks.Get(RackID(seg.ID)); ok {
				return r, nil
			}
		case KindViewModel:
			for _, vm := range node.viewModels {
				if vm.ID() == ViewModelID(seg.ID) {
					return vm, nil
				}
			}
		default:
			return nil, fmt.Errorf("%w: %s under a constraint", ErrInvalidPath, seg.Kind)
		}
	case *Scenario:
		switch seg.Kind {
		case KindConstraint:
			if c, ok := node.Constraints.Get(ConstraintID(seg.ID)); ok {
				return c, nil
			}
		case KindEvent:
			if e, ok := node.Events.Get(EventID(seg.ID)); ok {
				return e, nil
			}
		case KindTimeNode:
			if t, ok := node.TimeNodes.Get(TimeNodeID(seg.ID)); ok {
				return t, nil
			}
		case KindState:
			if s, ok := node.States.Get(StateID(seg.ID)); ok {
				return s, nil
			}
		default:
			return nil, fmt.Errorf("%w: %s under a scenario", ErrInvalidPath, seg.Kind)
		}
	case *Rack:
		if seg.Kind != KindSlot {
			return nil, fmt.Errorf("%w: %s under a rack", ErrInvalidPath, seg.Kind)
		}
		if s, ok := node.Slots.Get(SlotID(seg.ID)); ok {
			return s, nil
		}
	case *Slot:
		if seg.Kind != KindLayer {
			return nil, fmt.Errorf("%w: %s under a slot", ErrInvalidPath, seg.Kind)
		}
		if l, ok := node.Layers.Get(LayerID(seg.ID)); ok {
			return l, nil
		}
	default:
		return nil, fmt.Errorf("%w: %T has no children", ErrInvalidPath, parent)
	}
	return nil, fmt.Errorf("%s %d: %w", seg.Kind, seg.ID, ErrNotFound)
}

// Find resolves p and asserts the result type.
func Find[T any](d *Document, p Path) (T, error) {
	var zero T
	v, err := d.Resolve(p)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is a %T", ErrInvalidPath, p, v)
	}
	return t, nil
}
