package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScenarioKind is the process kind of Scenario.
const ScenarioKind = "Scenario"

// Scenario is the process holding a temporal graph. A new scenario starts
// with a start time node at date zero carrying one event and one state.
type Scenario struct {
	ProcessBase

	States      Collection[StateID, *State]
	Events      Collection[EventID, *Event]
	TimeNodes   Collection[TimeNodeID, *TimeNode]
	Constraints Collection[ConstraintID, *Constraint]

	startTimeNode TimeNodeID
	startEvent    EventID
}

// NewScenario creates a scenario with its start time node, event and state.
func NewScenario(id ProcessID, duration time.Duration, parent *Constraint) *Scenario {
	s := &Scenario{ProcessBase: NewProcessBase(id, duration, parent)}
	tn := NewTimeNode(1, 0)
	ev := NewEvent(1, tn.ID(), 0, 0.5)
	st := NewState(1, ev.ID(), 0.5)
	ev.AddState(st.ID())
	tn.AddEvent(ev.ID())
	_ = s.TimeNodes.Add(tn)
	_ = s.Events.Add(ev)
	_ = s.States.Add(st)
	s.startTimeNode = tn.ID()
	s.startEvent = ev.ID()
	return s
}

func (s *Scenario) Kind() string { return ScenarioKind }

func (s *Scenario) StartTimeNode() TimeNodeID { return s.startTimeNode }
func (s *Scenario) StartEvent() EventID { return s.startEvent }

func (s *Scenario) State(id StateID) (*State, error) {
	if v, ok := s.States.Get(id); ok {
		return v, nil
	}
	return nil, fmt.Errorf("state %d: %w", id, ErrNotFound)
}

func (s *Scenario) Event(id EventID) (*Event, error) {
	if v, ok := s.Events.Get(id); ok {
		return v, nil
	}
	return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
}

func (s *Scenario) TimeNode(id TimeNodeID) (*TimeNode, error) {
	if v, ok := s.TimeNodes.Get(id); ok {
		return v, nil
	}
	return nil, fmt.Errorf("time node %d: %w", id, ErrNotFound)
}

func (s *Scenario) Constraint(id ConstraintID) (*Constraint, error) {
	if v, ok := s.Constraints.Get(id); ok {
		return v, nil
	}
	return nil, fmt.Errorf("constraint %d: %w", id, ErrNotFound)
}

// EventOfState returns the event a state is attached to.
func (s *Scenario) EventOfState(id StateID) (*Event, error) {
	st, err := s.State(id)
	if err != nil {
		return nil, err
	}
	ev, ok := s.Events.Get(st.Event())
	if !ok {
		return nil, structural(KindState, int32(id), "event %d not found", st.Event())
	}
	return ev, nil
}

// StartExecution starts the scenario and every constraint in it.
func (s *Scenario) StartExecution() {
	s.ProcessBase.StartExecution()
	for _, c := range s.Constraints.All() {
		c.StartExecution()
	}
}

func (s *Scenario) StopExecution() {
	s.ProcessBase.StopExecution()
	for _, c := range s.Constraints.All() {
		c.StopExecution()
	}
}

// Reset resets every constraint of the graph.
func (s *Scenario) Reset() {
	for _, c := range s.Constraints.All() {
		c.Reset()
	}
}

// Validate checks that every weak reference of the graph resolves.
func (s *Scenario) Validate() error {
	if !s.TimeNodes.Has(s.startTimeNode) {
		return structural(KindTimeNode, int32(s.startTimeNode), "start time node missing")
	}
	for _, c := range s.Constraints.All() {
		start, ok := s.States.Get(c.StartState())
		if !ok {
			return structural(KindConstraint, int32(c.ID()), "start state %d not found", c.StartState())
		}
		end, ok := s.States.Get(c.EndState())
		if !ok {
			return structural(KindConstraint, int32(c.ID()), "end state %d not found", c.EndState())
		}
		if start.NextConstraint() != c.ID() {
			return structural(KindConstraint, int32(c.ID()), "start state %d points to constraint %d", start.ID(), start.NextConstraint())
		}
		if end.PreviousConstraint() != c.ID() {
			return structural(KindConstraint, int32(c.ID()), "end state %d points to constraint %d", end.ID(), end.PreviousConstraint())
		}
	}
	for _, st := range s.States.All() {
		ev, ok := s.Events.Get(st.Event())
		if !ok || !ev.HasState(st.ID()) {
			return structural(KindState, int32(st.ID()), "not held by event %d", st.Event())
		}
		for _, id := range []ConstraintID{st.PreviousConstraint(), st.NextConstraint()} {
			if id != 0 && !s.Constraints.Has(id) {
				return structural(KindState, int32(st.ID()), "constraint %d not found", id)
			}
		}
	}
	for _, ev := range s.Events.All() {
		tn, ok := s.TimeNodes.Get(ev.TimeNode())
		if !ok || !tn.HasEvent(ev.ID()) {
			return structural(KindEvent, int32(ev.ID()), "not held by time node %d", ev.TimeNode())
		}
		for _, id := range ev.States() {
			if !s.States.Has(id) {
				return structural(KindEvent, int32(ev.ID()), "state %d not found", id)
			}
		}
	}
	for _, tn := range s.TimeNodes.All() {
		for _, id := range tn.Events() {
			if !s.Events.Has(id) {
				return structural(KindTimeNode, int32(tn.ID()), "event %d not found", id)
			}
		}
	}
	return nil
}

// Clone copies the whole graph; nested constraints keep their ids.
func (s *Scenario) Clone(id ProcessID, parent *Constraint, factories Factories) (Process, error) {
	out := &Scenario{
		ProcessBase:   NewProcessBase(id, s.Duration(), parent),
		startTimeNode: s.startTimeNode,
		startEvent:    s.startEvent,
	}
	for _, v := range s.States.All() {
		_ = out.States.Add(v.clone())
	}
	for _, v := range s.Events.All() {
		_ = out.Events.Add(v.clone())
	}
	for _, v := range s.TimeNodes.All() {
		_ = out.TimeNodes.Add(v.clone())
	}
	for _, c := range s.Constraints.All() {
		clone, err := CloneConstraint(c, c.ID(), factories)
		if err != nil {
			return nil, fmt.Errorf("clone constraint %d: %w", c.ID(), err)
		}
		_ = out.Constraints.Add(clone)
	}
	return out, nil
}

type scenarioPayload struct {
	StartTimeNode TimeNodeID       `json:"start_time_node"`
	StartEvent    EventID          `json:"start_event"`
	States        []StateData      `json:"states"`
	Events        []EventData      `json:"events"`
	TimeNodes     []TimeNodeData   `json:"time_nodes"`
	Constraints   []ConstraintData `json:"constraints"`
}

func (s *Scenario) Snapshot() (ProcessData, error) {
	payload := scenarioPayload{StartTimeNode: s.startTimeNode, StartEvent: s.startEvent}
	for _, v := range s.States.All() {
		payload.States = append(payload.States, v.Snapshot())
	}
	for _, v := range s.Events.All() {
		payload.Events = append(payload.Events, v.Snapshot())
	}
	for _, v := range s.TimeNodes.All() {
		payload.TimeNodes = append(payload.TimeNodes, v.Snapshot())
	}
	for _, c := range s.Constraints.All() {
		cd, err := SnapshotConstraint(c)
		if err != nil {
			return ProcessData{}, err
		}
		payload.Constraints = append(payload.Constraints, cd)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ProcessData{}, fmt.Errorf("marshal scenario %d: %w", s.ID(), err)
	}
	data := s.Data(ScenarioKind)
	data.Payload = raw
	return data, nil
}

// RestoreScenario rebuilds a scenario from its snapshot and validates it.
func RestoreScenario(data ProcessData, parent *Constraint, factories Factories) (*Scenario, error) {
	var payload scenarioPayload
	if err := json.Unmarshal(data.Payload, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal scenario %d: %w", data.ID, err)
	}
	s := &Scenario{
		ProcessBase:   NewProcessBase(data.ID, data.Duration, parent),
		startTimeNode: payload.StartTimeNode,
		startEvent:    payload.StartEvent,
	}
	for _, d := range payload.States {
		if err := s.States.Add(RestoreState(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range payload.Events {
		if err := s.Events.Add(RestoreEvent(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range payload.TimeNodes {
		if err := s.TimeNodes.Add(RestoreTimeNode(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range payload.Constraints {
		c, err := RestoreConstraint(d, factories)
		if err != nil {
			return nil, err
		}
		if err := s.Constraints.Add(c); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
