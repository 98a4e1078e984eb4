package domain

import (
	"slices"
	"time"
)

// TimeNode is the shared temporal coordinate of a set of Events.
type TimeNode struct {
	id     TimeNodeID
	date   time.Duration
	events []EventID

	DateChanged   Signal[time.Duration]
	EventsChanged Signal[[]EventID]
}

func NewTimeNode(id TimeNodeID, date time.Duration) *TimeNode {
	return &TimeNode{id: id, date: date}
}

func (t *TimeNode) ID() TimeNodeID { return t.id }
func (t *TimeNode) Date() time.Duration { return t.date }

// Events returns a copy of the event ids in order. The first one drives
// time node displacement.
func (t *TimeNode) Events() []EventID {
	return slices.Clone(t.events)
}

func (t *TimeNode) HasEvent(id EventID) bool {
	return slices.Contains(t.events, id)
}

func (t *TimeNode) AddEvent(id EventID) {
	if t.HasEvent(id) {
		return
	}
	t.events = append(t.events, id)
	t.EventsChanged.Emit(t.Events())
}

func (t *TimeNode) RemoveEvent(id EventID) bool {
	i := slices.Index(t.events, id)
	if i < 0 {
		return false
	}
	t.events = slices.Delete(t.events, i, i+1)
	t.EventsChanged.Emit(t.Events())
	return true
}

func (t *TimeNode) SetDate(d time.Duration) {
	if t.date == d {
		return
	}
	t.date = d
	t.DateChanged.Emit(d)
}

func (t *TimeNode) Translate(delta time.Duration) {
	t.SetDate(t.date + delta)
}

func (t *TimeNode) clone() *TimeNode {
	return &TimeNode{id: t.id, date: t.date, events: slices.Clone(t.events)}
}
