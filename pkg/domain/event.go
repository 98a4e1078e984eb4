package domain

import (
	"slices"
	"time"
)

// Event is a synchronization point holding an ordered set of States.
// It belongs to exactly one TimeNode and shares its date.
type Event struct {
	id               EventID
	timeNode         TimeNodeID
	states           []StateID
	date             time.Duration
	heightPercentage float64

	DateChanged             Signal[time.Duration]
	HeightPercentageChanged Signal[float64]
	StatesChanged           Signal[[]StateID]
}

// NewEvent creates an Event anchored to timeNode.
func NewEvent(id EventID, timeNode TimeNodeID, date time.Duration, y float64) *Event {
	return &Event{id: id, timeNode: timeNode, date: date, heightPercentage: y}
}

func (e *Event) ID() EventID { return e.id }
func (e *Event) TimeNode() TimeNodeID { return e.timeNode }
func (e *Event) Date() time.Duration { return e.date }
func (e *Event) HeightPercentage() float64 { return e.heightPercentage }

// States returns a copy of the state ids in order.
func (e *Event) States() []StateID {
	return slices.Clone(e.states)
}

func (e *Event) HasState(id StateID) bool {
	return slices.Contains(e.states, id)
}

// AddState appends id; adding a state already present is a no-op.
func (e *Event) AddState(id StateID) {
	if e.HasState(id) {
		return
	}
	e.states = append(e.states, id)
	e.StatesChanged.Emit(e.States())
}

// RemoveState reports whether id was present.
func (e *Event) RemoveState(id StateID) bool {
	i := slices.Index(e.states, id)
	if i < 0 {
		return false
	}
	e.states = slices.Delete(e.states, i, i+1)
	e.StatesChanged.Emit(e.States())
	return true
}

func (e *Event) SetDate(d time.Duration) {
	if e.date == d {
		return
	}
	e.date = d
	e.DateChanged.Emit(d)
}

func (e *Event) Translate(delta time.Duration) {
	e.SetDate(e.date + delta)
}

func (e *Event) SetHeightPercentage(y float64) {
	if e.heightPercentage == y {
		return
	}
	e.heightPercentage = y
	e.HeightPercentageChanged.Emit(y)
}

func (e *Event) clone() *Event {
	return &Event{
		id:               e.id,
		timeNode:         e.timeNode,
		states:           slices.Clone(e.states),
		date:             e.date,
		heightPercentage: e.heightPercentage,
	}
}
