package domain

import (
	"fmt"
	"time"
)

// EventPosition is the saved placement of an event.
type EventPosition struct {
	Date             time.Duration `json:"date"`
	HeightPercentage float64       `json:"height_percentage"`
}

// ConstraintPosition is the saved placement of a constraint.
type ConstraintPosition struct {
	StartDate        time.Duration `json:"start_date"`
	HeightPercentage float64       `json:"height_percentage"`
	Default          time.Duration `json:"default"`
	Min              time.Duration `json:"min"`
	Max              time.Duration `json:"max"`
}

// Positions records every value a displacement may touch so that it can be
// put back exactly.
type Positions struct {
	TimeNodes   map[TimeNodeID]time.Duration        `json:"time_nodes"`
	Events      map[EventID]EventPosition           `json:"events"`
	Constraints map[ConstraintID]ConstraintPosition `json:"constraints"`
}

func newPositions() Positions {
	return Positions{
		TimeNodes:   make(map[TimeNodeID]time.Duration),
		Events:      make(map[EventID]EventPosition),
		Constraints: make(map[ConstraintID]ConstraintPosition),
	}
}

// Empty reports whether nothing was captured.
func (p Positions) Empty() bool {
	return len(p.TimeNodes) == 0 && len(p.Events) == 0 && len(p.Constraints) == 0
}

func (p Positions) addConstraint(c *Constraint) {
	p.Constraints[c.ID()] = ConstraintPosition{
		StartDate:        c.StartDate(),
		HeightPercentage: c.HeightPercentage(),
		Default:          c.Durations.Default(),
		Min:              c.Durations.Min(),
		Max:              c.Durations.Max(),
	}
}

// CaptureConstraint records the placement of one constraint.
func (s *Scenario) CaptureConstraint(id ConstraintID) (Positions, error) {
	c, err := s.Constraint(id)
	if err != nil {
		return Positions{}, err
	}
	p := newPositions()
	p.addConstraint(c)
	return p, nil
}

// CaptureTimeNode records the time node, its events and every constraint
// attached to the states of those events.
func (s *Scenario) CaptureTimeNode(id TimeNodeID) (Positions, error) {
	tn, err := s.TimeNode(id)
	if err != nil {
		return Positions{}, err
	}
	p := newPositions()
	p.TimeNodes[tn.ID()] = tn.Date()
	err = s.eachAdjacent(tn, func(ev *Event) {
		p.Events[ev.ID()] = EventPosition{Date: ev.Date(), HeightPercentage: ev.HeightPercentage()}
	}, func(c *Constraint, _ bool) {
		p.addConstraint(c)
	})
	if err != nil {
		return Positions{}, err
	}
	return p, nil
}

// Apply writes the recorded values back. Every recorded id must resolve.
func (s *Scenario) Apply(p Positions) error {
	for id, date := range p.TimeNodes {
		tn, err := s.TimeNode(id)
		if err != nil {
			return err
		}
		tn.SetDate(date)
	}
	for id, pos := range p.Events {
		ev, err := s.Event(id)
		if err != nil {
			return err
		}
		ev.SetDate(pos.Date)
		ev.SetHeightPercentage(pos.HeightPercentage)
	}
	for id, pos := range p.Constraints {
		c, err := s.Constraint(id)
		if err != nil {
			return err
		}
		c.SetStartDate(pos.StartDate)
		c.SetHeightPercentage(pos.HeightPercentage)
		c.Durations.SetMin(pos.Min)
		c.Durations.SetMax(pos.Max)
		c.Durations.SetDefault(pos.Default)
	}
	return nil
}

// eachAdjacent visits the events of tn and the constraints attached to their
// states; incoming is true for constraints ending on tn.
func (s *Scenario) eachAdjacent(tn *TimeNode, onEvent func(*Event), onConstraint func(c *Constraint, incoming bool)) error {
	for _, evID := range tn.Events() {
		ev, ok := s.Events.Get(evID)
		if !ok {
			return structural(KindTimeNode, int32(tn.ID()), "event %d not found", evID)
		}
		onEvent(ev)
		for _, stID := range ev.States() {
			st, ok := s.States.Get(stID)
			if !ok {
				return structural(KindEvent, int32(ev.ID()), "state %d not found", stID)
			}
			if id := st.PreviousConstraint(); id != 0 {
				c, ok := s.Constraints.Get(id)
				if !ok {
					return structural(KindState, int32(st.ID()), "constraint %d not found", id)
				}
				onConstraint(c, true)
			}
			if id := st.NextConstraint(); id != 0 {
				c, ok := s.Constraints.Get(id)
				if !ok {
					return structural(KindState, int32(st.ID()), "constraint %d not found", id)
				}
				onConstraint(c, false)
			}
		}
	}
	return nil
}

// MoveTimeNodeTo moves tn and its events to date. Constraints ending on it are
// resized, constraints starting on it are moved and resized so that their end
// stays in place. The date is clamped so that no constraint gets a negative
// duration; the start time node never moves. The applied date is returned.
func (s *Scenario) MoveTimeNodeTo(id TimeNodeID, date time.Duration) (time.Duration, error) {
	tn, err := s.TimeNode(id)
	if err != nil {
		return 0, err
	}
	if id == s.startTimeNode {
		return tn.Date(), nil
	}

	var incoming, outgoing []*Constraint
	err = s.eachAdjacent(tn, func(*Event) {}, func(c *Constraint, in bool) {
		if in {
			incoming = append(incoming, c)
		} else {
			outgoing = append(outgoing, c)
		}
	})
	if err != nil {
		return 0, err
	}

	date = max(date, 0)
	for _, c := range incoming {
		date = max(date, c.StartDate())
	}
	for _, c := range outgoing {
		date = min(date, c.EndDate())
	}

	for _, c := range incoming {
		c.Durations.Resize(date - c.StartDate())
	}
	for _, c := range outgoing {
		end := c.EndDate()
		c.SetStartDate(date)
		c.Durations.Resize(end - date)
	}
	tn.SetDate(date)
	for _, evID := range tn.Events() {
		ev, _ := s.Events.Get(evID)
		ev.SetDate(date)
	}
	return date, nil
}

// MoveEventTo moves the time node of an event and sets the event's vertical
// position.
func (s *Scenario) MoveEventTo(id EventID, date time.Duration, y float64) (time.Duration, error) {
	ev, err := s.Event(id)
	if err != nil {
		return 0, err
	}
	applied, err := s.MoveTimeNodeTo(ev.TimeNode(), date)
	if err != nil {
		return 0, fmt.Errorf("move event %d: %w", id, err)
	}
	ev.SetHeightPercentage(y)
	return applied, nil
}

// Attach links c to its start and end states and adds it to the graph.
func (s *Scenario) Attach(c *Constraint) error {
	start, err := s.State(c.StartState())
	if err != nil {
		return structural(KindConstraint, int32(c.ID()), "start state: %v", err)
	}
	end, err := s.State(c.EndState())
	if err != nil {
		return structural(KindConstraint, int32(c.ID()), "end state: %v", err)
	}
	if id := start.NextConstraint(); id != 0 {
		return structural(KindState, int32(start.ID()), "already starts constraint %d", id)
	}
	if id := end.PreviousConstraint(); id != 0 {
		return structural(KindState, int32(end.ID()), "already ends constraint %d", id)
	}
	if err := s.Constraints.Add(c); err != nil {
		return err
	}
	start.SetNextConstraint(c.ID())
	end.SetPreviousConstraint(c.ID())
	return nil
}

// Detach removes a constraint from the graph and unlinks its states.
func (s *Scenario) Detach(id ConstraintID) (*Constraint, error) {
	c, err := s.Constraints.Remove(id)
	if err != nil {
		return nil, fmt.Errorf("constraint %d: %w", id, err)
	}
	if st, ok := s.States.Get(c.StartState()); ok && st.NextConstraint() == id {
		st.SetNextConstraint(0)
	}
	if st, ok := s.States.Get(c.EndState()); ok && st.PreviousConstraint() == id {
		st.SetPreviousConstraint(0)
	}
	return c, nil
}
