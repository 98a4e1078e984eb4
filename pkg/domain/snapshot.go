package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// The *Data types are the serializable form of the graph. Removal commands
// keep them so that undo still works after the command itself has been
// serialized and replayed elsewhere.

type StateData struct {
	ID                 StateID      `json:"id"`
	Event              EventID      `json:"event"`
	HeightPercentage   float64      `json:"height_percentage"`
	PreviousConstraint ConstraintID `json:"previous_constraint,omitempty"`
	NextConstraint     ConstraintID `json:"next_constraint,omitempty"`
}

type EventData struct {
	ID               EventID       `json:"id"`
	TimeNode         TimeNodeID    `json:"time_node"`
	States           []StateID     `json:"states"`
	Date             time.Duration `json:"date"`
	HeightPercentage float64       `json:"height_percentage"`
}

type TimeNodeData struct {
	ID     TimeNodeID    `json:"id"`
	Date   time.Duration `json:"date"`
	Events []EventID     `json:"events"`
}

type DurationsData struct {
	Default        time.Duration `json:"default"`
	Min            time.Duration `json:"min"`
	Max            time.Duration `json:"max"`
	PlayPercentage float64       `json:"play_percentage"`
	ExecutionSpeed float64       `json:"execution_speed"`
}

type LayerData struct {
	ID      LayerID           `json:"id"`
	Process ProcessID         `json:"process"`
	Kind    string            `json:"kind"`
	Options map[string]string `json:"options,omitempty"`
}

type SlotData struct {
	ID     SlotID      `json:"id"`
	Height float64     `json:"height"`
	Layers []LayerData `json:"layers"`
}

type RackData struct {
	ID    RackID     `json:"id"`
	Slots []SlotData `json:"slots"`
}

type ViewModelData struct {
	ID        ViewModelID `json:"id"`
	ShownRack *RackID     `json:"shown_rack,omitempty"`
}

type ConstraintData struct {
	ID               ConstraintID   `json:"id"`
	StartState       StateID        `json:"start_state"`
	EndState         StateID        `json:"end_state"`
	StartDate        time.Duration  `json:"start_date"`
	HeightPercentage float64        `json:"height_percentage"`
	ExecutionState   ExecutionState `json:"execution_state"`
	Durations        DurationsData  `json:"durations"`
	FullView         ViewModelData  `json:"full_view"`
	Processes        []ProcessData  `json:"processes"`
	Racks            []RackData     `json:"racks"`
}

func (s *State) Snapshot() StateData {
	return StateData{
		ID:                 s.id,
		Event:              s.event,
		HeightPercentage:   s.heightPercentage,
		PreviousConstraint: s.previousConstraint,
		NextConstraint:     s.nextConstraint,
	}
}

func RestoreState(d StateData) *State {
	return &State{
		id:                 d.ID,
		event:              d.Event,
		heightPercentage:   d.HeightPercentage,
		previousConstraint: d.PreviousConstraint,
		nextConstraint:     d.NextConstraint,
	}
}

func (e *Event) Snapshot() EventData {
	return EventData{
		ID:               e.id,
		TimeNode:         e.timeNode,
		States:           e.States(),
		Date:             e.date,
		HeightPercentage: e.heightPercentage,
	}
}

func RestoreEvent(d EventData) *Event {
	return &Event{
		id:               d.ID,
		timeNode:         d.TimeNode,
		states:           slices.Clone(d.States),
		date:             d.Date,
		heightPercentage: d.HeightPercentage,
	}
}

func (t *TimeNode) Snapshot() TimeNodeData {
	return TimeNodeData{ID: t.id, Date: t.date, Events: t.Events()}
}

func RestoreTimeNode(d TimeNodeData) *TimeNode {
	return &TimeNode{id: d.ID, date: d.Date, events: slices.Clone(d.Events)}
}

func (l *Layer) Snapshot() LayerData {
	return LayerData{ID: l.id, Process: l.process, Kind: l.kind, Options: maps.Clone(l.options)}
}

func (s *Slot) Snapshot() SlotData {
	data := SlotData{ID: s.id, Height: s.height, Layers: []LayerData{}}
	for _, l := range s.Layers.All() {
		data.Layers = append(data.Layers, l.Snapshot())
	}
	return data
}

func (r *Rack) Snapshot() RackData {
	data := RackData{ID: r.id, Slots: []SlotData{}}
	for _, s := range r.Slots.All() {
		data.Slots = append(data.Slots, s.Snapshot())
	}
	return data
}

// RestoreLayer rebuilds a detached layer.
func RestoreLayer(d LayerData) *Layer {
	return &Layer{id: d.ID, process: d.Process, kind: d.Kind, options: maps.Clone(d.Options)}
}

// RestoreRack rebuilds a detached rack. Layer references are checked once the
// rack is added to a constraint and a layer is resolved.
func RestoreRack(d RackData) *Rack {
	r := NewRack(d.ID)
	for _, sd := range d.Slots {
		s := NewSlot(sd.ID, sd.Height)
		for _, ld := range sd.Layers {
			_ = s.Layers.Add(RestoreLayer(ld))
		}
		_ = r.Slots.Add(s)
	}
	return r
}

// SnapshotConstraint captures c, its processes, racks and full view.
func SnapshotConstraint(c *Constraint) (ConstraintData, error) {
	data := ConstraintData{
		ID:               c.id,
		StartState:       c.startState,
		EndState:         c.endState,
		StartDate:        c.startDate,
		HeightPercentage: c.heightPercentage,
		ExecutionState:   c.executionState,
		Durations: DurationsData{
			Default:        c.Durations.Default(),
			Min:            c.Durations.Min(),
			Max:            c.Durations.Max(),
			PlayPercentage: c.Durations.PlayPercentage(),
			ExecutionSpeed: c.Durations.ExecutionSpeed(),
		},
		FullView:  ViewModelData{ID: c.fullView.ID()},
		Processes: []ProcessData{},
		Racks:     []RackData{},
	}
	if id, ok := c.fullView.ShownRack(); ok {
		data.FullView.ShownRack = &id
	}
	for _, p := range c.Processes.All() {
		pd, err := p.Snapshot()
		if err != nil {
			return ConstraintData{}, fmt.Errorf("snapshot process %d: %w", p.ID(), err)
		}
		data.Processes = append(data.Processes, pd)
	}
	for _, r := range c.Racks.All() {
		data.Racks = append(data.Racks, r.Snapshot())
	}
	return data, nil
}

// RestoreConstraint rebuilds a constraint from its snapshot. Every layer must
// reference a restored process.
func RestoreConstraint(d ConstraintData, factories Factories) (*Constraint, error) {
	c := newBareConstraint(d.ID)
	c.startState = d.StartState
	c.endState = d.EndState
	c.startDate = d.StartDate
	c.heightPercentage = d.HeightPercentage
	c.executionState = d.ExecutionState
	c.Durations.copyFrom(&Durations{
		defaultDuration: d.Durations.Default,
		minDuration:     d.Durations.Min,
		maxDuration:     d.Durations.Max,
		playPercentage:  d.Durations.PlayPercentage,
		executionSpeed:  d.Durations.ExecutionSpeed,
	})

	for _, pd := range d.Processes {
		f, err := lookupFactory(factories, pd.Kind)
		if err != nil {
			return nil, fmt.Errorf("restore process %d: %w", pd.ID, err)
		}
		p, err := f.Restore(pd, c, factories)
		if err != nil {
			return nil, fmt.Errorf("restore process %d: %w", pd.ID, err)
		}
		if err := c.Processes.Add(p); err != nil {
			return nil, err
		}
	}
	for _, rd := range d.Racks {
		for _, sd := range rd.Slots {
			for _, ld := range sd.Layers {
				if !c.Processes.Has(ld.Process) {
					return nil, structural(KindLayer, int32(ld.ID), "process %d not found in constraint %d", ld.Process, d.ID)
				}
			}
		}
		if err := c.Racks.Add(RestoreRack(rd)); err != nil {
			return nil, err
		}
	}

	c.fullView = NewViewModel(d.FullView.ID, FullView, c)
	if d.FullView.ShownRack != nil {
		c.fullView.ShowRack(*d.FullView.ShownRack)
	}
	c.setupViewModel(c.fullView)
	return c, nil
}
