package commands

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

// ErrProtected is returned when a command targets an object every document
// must keep: the start event of a scenario or the root scenario.
var ErrProtected = errors.New("object cannot be removed")

func ensureFree[K domain.ID, V domain.Identified[K]](c *domain.Collection[K, V], ids ...K) error {
	for _, id := range ids {
		if c.Has(id) {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateID, id)
		}
	}
	return nil
}

// CreateEventAfterEvent creates a time node with one event and one state at
// Date, and a constraint reaching it from a new state on the source event.
type CreateEventAfterEvent struct {
	Scenario   domain.Path         `json:"scenario"`
	Source     domain.EventID      `json:"source"`
	Date       time.Duration       `json:"date"`
	Y          float64             `json:"y"`
	StartState domain.StateID      `json:"start_state"`
	EndState   domain.StateID      `json:"end_state"`
	Event      domain.EventID      `json:"event"`
	TimeNode   domain.TimeNodeID   `json:"time_node"`
	Constraint domain.ConstraintID `json:"constraint"`
	FullView   domain.ViewModelID  `json:"full_view"`
}

func NewCreateEventAfterEvent(doc *domain.Document, scenario domain.Path, source domain.EventID, date time.Duration, y float64) (*CreateEventAfterEvent, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	src, err := s.Event(source)
	if err != nil {
		return nil, err
	}
	if date < src.Date() {
		return nil, fmt.Errorf("create event after %d: date %s precedes %s", source, date, src.Date())
	}
	start := s.States.NextID()
	return &CreateEventAfterEvent{
		Scenario:   scenario,
		Source:     source,
		Date:       date,
		Y:          y,
		StartState: start,
		EndState:   start + 1,
		Event:      s.Events.NextID(),
		TimeNode:   s.TimeNodes.NextID(),
		Constraint: s.Constraints.NextID(),
		FullView:   1,
	}, nil
}

func (m *CreateEventAfterEvent) Key() command.Key { return key("CreateEventAfterEvent") }

func (m *CreateEventAfterEvent) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	src, err := s.Event(m.Source)
	if err != nil {
		return err
	}
	if err := ensureFree(&s.States, m.StartState, m.EndState); err != nil {
		return err
	}
	if err := ensureFree(&s.Events, m.Event); err != nil {
		return err
	}
	if err := ensureFree(&s.TimeNodes, m.TimeNode); err != nil {
		return err
	}
	if err := ensureFree(&s.Constraints, m.Constraint); err != nil {
		return err
	}

	tn := domain.NewTimeNode(m.TimeNode, m.Date)
	ev := domain.NewEvent(m.Event, m.TimeNode, m.Date, m.Y)
	start := domain.NewState(m.StartState, m.Source, m.Y)
	end := domain.NewState(m.EndState, m.Event, m.Y)
	c := domain.NewConstraint(m.Constraint, m.FullView, m.Y, m.Date-src.Date())
	c.SetStartDate(src.Date())
	c.SetStartState(m.StartState)
	c.SetEndState(m.EndState)

	_ = s.States.Add(start)
	_ = s.States.Add(end)
	_ = s.Events.Add(ev)
	_ = s.TimeNodes.Add(tn)
	src.AddState(start.ID())
	ev.AddState(end.ID())
	tn.AddEvent(ev.ID())
	return s.Attach(c)
}

func (m *CreateEventAfterEvent) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	if _, err := s.Detach(m.Constraint); err != nil {
		return err
	}
	if src, ok := s.Events.Get(m.Source); ok {
		src.RemoveState(m.StartState)
	}
	for _, id := range []domain.StateID{m.StartState, m.EndState} {
		if _, err := s.States.Remove(id); err != nil {
			return fmt.Errorf("state %d: %w", id, err)
		}
	}
	if _, err := s.Events.Remove(m.Event); err != nil {
		return fmt.Errorf("event %d: %w", m.Event, err)
	}
	if _, err := s.TimeNodes.Remove(m.TimeNode); err != nil {
		return fmt.Errorf("time node %d: %w", m.TimeNode, err)
	}
	return nil
}

func (m *CreateEventAfterEvent) MergeWith(command.Command) bool { return false }

func (m *CreateEventAfterEvent) Serialize() ([]byte, error) { return marshal(m) }
func (m *CreateEventAfterEvent) Deserialize(data []byte) error { return unmarshal(data, m) }

// AddStateToEvent adds a free state to an event.
type AddStateToEvent struct {
	Scenario domain.Path    `json:"scenario"`
	Event    domain.EventID `json:"event"`
	State    domain.StateID `json:"state"`
	Y        float64        `json:"y"`
}

func NewAddStateToEvent(doc *domain.Document, scenario domain.Path, event domain.EventID, y float64) (*AddStateToEvent, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	if _, err := s.Event(event); err != nil {
		return nil, err
	}
	return &AddStateToEvent{Scenario: scenario, Event: event, State: s.States.NextID(), Y: y}, nil
}

func (m *AddStateToEvent) Key() command.Key { return key("AddStateToEvent") }

func (m *AddStateToEvent) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	ev, err := s.Event(m.Event)
	if err != nil {
		return err
	}
	if err := s.States.Add(domain.NewState(m.State, m.Event, m.Y)); err != nil {
		return err
	}
	ev.AddState(m.State)
	return nil
}

func (m *AddStateToEvent) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	st, err := s.State(m.State)
	if err != nil {
		return err
	}
	if st.PreviousConstraint() != 0 || st.NextConstraint() != 0 {
		return &domain.StructuralError{Kind: domain.KindState, ID: int32(m.State), Reason: "state still has constraints"}
	}
	if ev, ok := s.Events.Get(m.Event); ok {
		ev.RemoveState(m.State)
	}
	_, err = s.States.Remove(m.State)
	return err
}

func (m *AddStateToEvent) MergeWith(command.Command) bool { return false }

func (m *AddStateToEvent) Serialize() ([]byte, error) { return marshal(m) }
func (m *AddStateToEvent) Deserialize(data []byte) error { return unmarshal(data, m) }

type indexedState struct {
	Index int              `json:"index"`
	Data  domain.StateData `json:"data"`
}

type indexedConstraint struct {
	Index int                   `json:"index"`
	Data  domain.ConstraintData `json:"data"`
}

// RemoveEvent removes an event, its states and every constraint attached to
// them. Its time node goes too when the event was the only one on it.
type RemoveEvent struct {
	Scenario       domain.Path         `json:"scenario"`
	Event          domain.EventData    `json:"event"`
	EventIndex     int                 `json:"event_index"`
	States         []indexedState      `json:"states"`
	Constraints    []indexedConstraint `json:"constraints"`
	TimeNode       domain.TimeNodeData `json:"time_node"`
	TimeNodeIndex  int                 `json:"time_node_index"`
	RemoveTimeNode bool                `json:"remove_time_node"`
}

func NewRemoveEvent(doc *domain.Document, scenario domain.Path, id domain.EventID) (*RemoveEvent, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	ev, err := s.Event(id)
	if err != nil {
		return nil, err
	}
	if id == s.StartEvent() {
		return nil, fmt.Errorf("event %d: %w", id, ErrProtected)
	}
	tn, err := s.TimeNode(ev.TimeNode())
	if err != nil {
		return nil, err
	}
	m := &RemoveEvent{
		Scenario:       scenario,
		Event:          ev.Snapshot(),
		EventIndex:     s.Events.IndexOf(id),
		TimeNode:       tn.Snapshot(),
		TimeNodeIndex:  s.TimeNodes.IndexOf(tn.ID()),
		RemoveTimeNode: len(tn.Events()) == 1 && tn.ID() != s.StartTimeNode(),
	}
	seen := make(map[domain.ConstraintID]bool)
	for _, stID := range ev.States() {
		st, err := s.State(stID)
		if err != nil {
			return nil, err
		}
		m.States = append(m.States, indexedState{Index: s.States.IndexOf(stID), Data: st.Snapshot()})
		for _, cID := range []domain.ConstraintID{st.PreviousConstraint(), st.NextConstraint()} {
			if cID == 0 || seen[cID] {
				continue
			}
			seen[cID] = true
			c, err := s.Constraint(cID)
			if err != nil {
				return nil, err
			}
			data, err := domain.SnapshotConstraint(c)
			if err != nil {
				return nil, err
			}
			m.Constraints = append(m.Constraints, indexedConstraint{Index: s.Constraints.IndexOf(cID), Data: data})
		}
	}
	slices.SortFunc(m.States, func(a, b indexedState) int { return cmp.Compare(a.Index, b.Index) })
	slices.SortFunc(m.Constraints, func(a, b indexedConstraint) int { return cmp.Compare(a.Index, b.Index) })
	return m, nil
}

func (m *RemoveEvent) Key() command.Key { return key("RemoveEvent") }

func (m *RemoveEvent) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	for _, c := range m.Constraints {
		if _, err := s.Detach(c.Data.ID); err != nil {
			return err
		}
	}
	for _, st := range m.States {
		if _, err := s.States.Remove(st.Data.ID); err != nil {
			return fmt.Errorf("state %d: %w", st.Data.ID, err)
		}
	}
	tn, err := s.TimeNode(m.TimeNode.ID)
	if err != nil {
		return err
	}
	tn.RemoveEvent(m.Event.ID)
	if _, err := s.Events.Remove(m.Event.ID); err != nil {
		return fmt.Errorf("event %d: %w", m.Event.ID, err)
	}
	if m.RemoveTimeNode {
		if _, err := s.TimeNodes.Remove(tn.ID()); err != nil {
			return fmt.Errorf("time node %d: %w", tn.ID(), err)
		}
	}
	return nil
}

func (m *RemoveEvent) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	if m.RemoveTimeNode {
		if err := s.TimeNodes.Insert(m.TimeNodeIndex, domain.RestoreTimeNode(m.TimeNode)); err != nil {
			return err
		}
	} else {
		tn, err := s.TimeNode(m.TimeNode.ID)
		if err != nil {
			return err
		}
		tn.AddEvent(m.Event.ID)
	}
	if err := s.Events.Insert(m.EventIndex, domain.RestoreEvent(m.Event)); err != nil {
		return err
	}
	for _, st := range m.States {
		if err := s.States.Insert(st.Index, domain.RestoreState(st.Data)); err != nil {
			return err
		}
	}
	for _, cd := range m.Constraints {
		c, err := domain.RestoreConstraint(cd.Data, doc.Factories())
		if err != nil {
			return err
		}
		start, err := s.State(c.StartState())
		if err != nil {
			return err
		}
		end, err := s.State(c.EndState())
		if err != nil {
			return err
		}
		if err := s.Constraints.Insert(cd.Index, c); err != nil {
			return err
		}
		start.SetNextConstraint(c.ID())
		end.SetPreviousConstraint(c.ID())
	}
	return nil
}

func (m *RemoveEvent) MergeWith(command.Command) bool { return false }

func (m *RemoveEvent) Serialize() ([]byte, error) { return marshal(m) }
func (m *RemoveEvent) Deserialize(data []byte) error { return unmarshal(data, m) }

// DuplicateConstraint clones a constraint under a new id, between two new
// states placed on the events of the source.
type DuplicateConstraint struct {
	Scenario   domain.Path         `json:"scenario"`
	Source     domain.ConstraintID `json:"source"`
	Constraint domain.ConstraintID `json:"constraint"`
	StartEvent domain.EventID      `json:"start_event"`
	EndEvent   domain.EventID      `json:"end_event"`
	StartState domain.StateID      `json:"start_state"`
	EndState   domain.StateID      `json:"end_state"`
	Y          float64             `json:"y"`
}

func NewDuplicateConstraint(doc *domain.Document, scenario domain.Path, source domain.ConstraintID) (*DuplicateConstraint, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	src, err := s.Constraint(source)
	if err != nil {
		return nil, err
	}
	startEv, err := s.EventOfState(src.StartState())
	if err != nil {
		return nil, err
	}
	endEv, err := s.EventOfState(src.EndState())
	if err != nil {
		return nil, err
	}
	state := s.States.NextID()
	return &DuplicateConstraint{
		Scenario:   scenario,
		Source:     source,
		Constraint: s.Constraints.NextID(),
		StartEvent: startEv.ID(),
		EndEvent:   endEv.ID(),
		StartState: state,
		EndState:   state + 1,
		Y:          src.HeightPercentage(),
	}, nil
}

func (m *DuplicateConstraint) Key() command.Key { return key("DuplicateConstraint") }

func (m *DuplicateConstraint) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	src, err := s.Constraint(m.Source)
	if err != nil {
		return err
	}
	startEv, err := s.Event(m.StartEvent)
	if err != nil {
		return err
	}
	endEv, err := s.Event(m.EndEvent)
	if err != nil {
		return err
	}
	if err := ensureFree(&s.States, m.StartState, m.EndState); err != nil {
		return err
	}
	if err := ensureFree(&s.Constraints, m.Constraint); err != nil {
		return err
	}
	clone, err := domain.CloneConstraint(src, m.Constraint, doc.Factories())
	if err != nil {
		return err
	}
	clone.SetStartState(m.StartState)
	clone.SetEndState(m.EndState)
	clone.SetHeightPercentage(m.Y)

	_ = s.States.Add(domain.NewState(m.StartState, m.StartEvent, m.Y))
	_ = s.States.Add(domain.NewState(m.EndState, m.EndEvent, m.Y))
	startEv.AddState(m.StartState)
	endEv.AddState(m.EndState)
	return s.Attach(clone)
}

func (m *DuplicateConstraint) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	if _, err := s.Detach(m.Constraint); err != nil {
		return err
	}
	if ev, ok := s.Events.Get(m.StartEvent); ok {
		ev.RemoveState(m.StartState)
	}
	if ev, ok := s.Events.Get(m.EndEvent); ok {
		ev.RemoveState(m.EndState)
	}
	for _, id := range []domain.StateID{m.StartState, m.EndState} {
		if _, err := s.States.Remove(id); err != nil {
			return fmt.Errorf("state %d: %w", id, err)
		}
	}
	return nil
}

func (m *DuplicateConstraint) MergeWith(command.Command) bool { return false }

func (m *DuplicateConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *DuplicateConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }
