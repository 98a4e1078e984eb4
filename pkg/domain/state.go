package domain

// State is an attachment point on an Event. It links at most one incoming
// (previous) and one outgoing (next) Constraint; a zero ConstraintID means
// no link.
type State struct {
	id                 StateID
	event              EventID
	heightPercentage   float64
	previousConstraint ConstraintID
	nextConstraint     ConstraintID

	HeightPercentageChanged   Signal[float64]
	PreviousConstraintChanged Signal[ConstraintID]
	NextConstraintChanged     Signal[ConstraintID]
}

// NewState creates a State attached to event at vertical position y.
func NewState(id StateID, event EventID, y float64) *State {
	return &State{id: id, event: event, heightPercentage: y}
}

func (s *State) ID() StateID { return s.id }
func (s *State) Event() EventID { return s.event }
func (s *State) HeightPercentage() float64 { return s.heightPercentage }

func (s *State) SetHeightPercentage(y float64) {
	if s.heightPercentage == y {
		return
	}
	s.heightPercentage = y
	s.HeightPercentageChanged.Emit(y)
}

func (s *State) PreviousConstraint() ConstraintID { return s.previousConstraint }

func (s *State) SetPreviousConstraint(id ConstraintID) {
	if s.previousConstraint == id {
		return
	}
	s.previousConstraint = id
	s.PreviousConstraintChanged.Emit(id)
}

func (s *State) NextConstraint() ConstraintID { return s.nextConstraint }

func (s *State) SetNextConstraint(id ConstraintID) {
	if s.nextConstraint == id {
		return
	}
	s.nextConstraint = id
	s.NextConstraintChanged.Emit(id)
}

func (s *State) clone() *State {
	return &State{
		id:                 s.id,
		event:              s.event,
		heightPercentage:   s.heightPercentage,
		previousConstraint: s.previousConstraint,
		nextConstraint:     s.nextConstraint,
	}
}
