package commands

import (
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

// MoveConstraint changes the start date and vertical position of a
// constraint.
type MoveConstraint struct {
	Scenario   domain.Path         `json:"scenario"`
	Constraint domain.ConstraintID `json:"constraint"`
	OldDate    time.Duration       `json:"old_date"`
	OldY       float64             `json:"old_y"`
	NewDate    time.Duration       `json:"new_date"`
	NewY       float64             `json:"new_y"`
}

// NewMoveConstraint captures the current placement of the constraint as the
// undo values.
func NewMoveConstraint(doc *domain.Document, scenario domain.Path, id domain.ConstraintID, date time.Duration, y float64) (*MoveConstraint, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	c, err := s.Constraint(id)
	if err != nil {
		return nil, err
	}
	return &MoveConstraint{
		Scenario:   scenario,
		Constraint: id,
		OldDate:    c.StartDate(),
		OldY:       c.HeightPercentage(),
		NewDate:    date,
		NewY:       y,
	}, nil
}

// Retarget returns a command with the same undo values and a new target.
func (m *MoveConstraint) Retarget(date time.Duration, y float64) *MoveConstraint {
	out := *m
	out.NewDate, out.NewY = date, y
	return &out
}

func (m *MoveConstraint) Key() command.Key { return key("MoveConstraint") }

func (m *MoveConstraint) Redo(doc *domain.Document) error {
	return m.place(doc, m.NewDate, m.NewY)
}

func (m *MoveConstraint) Undo(doc *domain.Document) error {
	return m.place(doc, m.OldDate, m.OldY)
}

func (m *MoveConstraint) place(doc *domain.Document, date time.Duration, y float64) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	c, err := s.Constraint(m.Constraint)
	if err != nil {
		return err
	}
	c.SetStartDate(date)
	c.SetHeightPercentage(y)
	return nil
}

func (m *MoveConstraint) MergeWith(other command.Command) bool {
	o, ok := other.(*MoveConstraint)
	if !ok || o.Constraint != m.Constraint || !o.Scenario.Equal(m.Scenario) {
		return false
	}
	m.NewDate, m.NewY = o.NewDate, o.NewY
	return true
}

func (m *MoveConstraint) Serialize() ([]byte, error) { return marshal(m) }
func (m *MoveConstraint) Deserialize(data []byte) error { return unmarshal(data, m) }

// MoveTimeNode moves a time node with its events. Constraints ending on it
// are resized and constraints starting on it follow.
type MoveTimeNode struct {
	Scenario domain.Path       `json:"scenario"`
	TimeNode domain.TimeNodeID `json:"time_node"`
	Date     time.Duration     `json:"date"`
	Before   domain.Positions  `json:"before"`
}

func NewMoveTimeNode(doc *domain.Document, scenario domain.Path, id domain.TimeNodeID, date time.Duration) (*MoveTimeNode, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	before, err := s.CaptureTimeNode(id)
	if err != nil {
		return nil, err
	}
	return &MoveTimeNode{Scenario: scenario, TimeNode: id, Date: date, Before: before}, nil
}

func (m *MoveTimeNode) Retarget(date time.Duration) *MoveTimeNode {
	out := *m
	out.Date = date
	return &out
}

func (m *MoveTimeNode) Key() command.Key { return key("MoveTimeNode") }

func (m *MoveTimeNode) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	_, err = s.MoveTimeNodeTo(m.TimeNode, m.Date)
	return err
}

func (m *MoveTimeNode) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	return s.Apply(m.Before)
}

func (m *MoveTimeNode) MergeWith(other command.Command) bool {
	o, ok := other.(*MoveTimeNode)
	if !ok || o.TimeNode != m.TimeNode || !o.Scenario.Equal(m.Scenario) {
		return false
	}
	m.Date = o.Date
	return true
}

func (m *MoveTimeNode) Serialize() ([]byte, error) { return marshal(m) }
func (m *MoveTimeNode) Deserialize(data []byte) error { return unmarshal(data, m) }

// MoveEvent moves the time node of an event and sets the event's vertical
// position.
type MoveEvent struct {
	Scenario domain.Path      `json:"scenario"`
	Event    domain.EventID   `json:"event"`
	Date     time.Duration    `json:"date"`
	Y        float64          `json:"y"`
	Before   domain.Positions `json:"before"`
}

func NewMoveEvent(doc *domain.Document, scenario domain.Path, id domain.EventID, date time.Duration, y float64) (*MoveEvent, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	ev, err := s.Event(id)
	if err != nil {
		return nil, err
	}
	before, err := s.CaptureTimeNode(ev.TimeNode())
	if err != nil {
		return nil, err
	}
	return &MoveEvent{Scenario: scenario, Event: id, Date: date, Y: y, Before: before}, nil
}

func (m *MoveEvent) Retarget(date time.Duration, y float64) *MoveEvent {
	out := *m
	out.Date, out.Y = date, y
	return &out
}

func (m *MoveEvent) Key() command.Key { return key("MoveEvent") }

func (m *MoveEvent) Redo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	_, err = s.MoveEventTo(m.Event, m.Date, m.Y)
	return err
}

func (m *MoveEvent) Undo(doc *domain.Document) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	return s.Apply(m.Before)
}

func (m *MoveEvent) MergeWith(other command.Command) bool {
	o, ok := other.(*MoveEvent)
	if !ok || o.Event != m.Event || !o.Scenario.Equal(m.Scenario) {
		return false
	}
	m.Date, m.Y = o.Date, o.Y
	return true
}

func (m *MoveEvent) Serialize() ([]byte, error) { return marshal(m) }
func (m *MoveEvent) Deserialize(data []byte) error { return unmarshal(data, m) }

// SetConstraintHeight changes the vertical position of a constraint.
// Successive changes of the same constraint merge into one history entry.
type SetConstraintHeight struct {
	Scenario   domain.Path         `json:"scenario"`
	Constraint domain.ConstraintID `json:"constraint"`
	Old        float64             `json:"old"`
	New        float64             `json:"new"`
}

func NewSetConstraintHeight(doc *domain.Document, scenario domain.Path, id domain.ConstraintID, y float64) (*SetConstraintHeight, error) {
	s, err := scenarioAt(doc, scenario)
	if err != nil {
		return nil, err
	}
	c, err := s.Constraint(id)
	if err != nil {
		return nil, err
	}
	return &SetConstraintHeight{Scenario: scenario, Constraint: id, Old: c.HeightPercentage(), New: y}, nil
}

func (m *SetConstraintHeight) Key() command.Key { return key("SetConstraintHeight") }

func (m *SetConstraintHeight) Redo(doc *domain.Document) error { return m.set(doc, m.New) }
func (m *SetConstraintHeight) Undo(doc *domain.Document) error { return m.set(doc, m.Old) }

func (m *SetConstraintHeight) set(doc *domain.Document, y float64) error {
	s, err := scenarioAt(doc, m.Scenario)
	if err != nil {
		return err
	}
	c, err := s.Constraint(m.Constraint)
	if err != nil {
		return err
	}
	c.SetHeightPercentage(y)
	return nil
}

func (m *SetConstraintHeight) MergeWith(other command.Command) bool {
	o, ok := other.(*SetConstraintHeight)
	if !ok || o.Constraint != m.Constraint || !o.Scenario.Equal(m.Scenario) {
		return false
	}
	m.New = o.New
	return true
}

func (m *SetConstraintHeight) Serialize() ([]byte, error) { return marshal(m) }
func (m *SetConstraintHeight) Deserialize(data []byte) error { return unmarshal(data, m) }
