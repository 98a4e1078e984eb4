package domain

import (
	"slices"
	"time"
)

// ExecutionState is the runtime status of a Constraint.
type ExecutionState int

const (
	ExecutionEnabled ExecutionState = iota
	ExecutionDisabled
	ExecutionExecuting
)

func (s ExecutionState) String() string {
	switch s {
	case ExecutionEnabled:
		return "enabled"
	case ExecutionDisabled:
		return "disabled"
	case ExecutionExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

type rackWiring struct {
	processRemoved  Connection
	durationChanged Connection
}

type viewModelWiring struct {
	rackRemoving Connection
	deleted      Connection
}

// Constraint is the primary timed element: an interval between two States
// hosting Processes exposed through Racks.
//
// The start and end states are weak references resolved through the
// enclosing Scenario. The full view model is owned by the constraint;
// secondary view models belong to the view layer and are only tracked.
type Constraint struct {
	id               ConstraintID
	startState       StateID
	endState         StateID
	startDate        time.Duration
	heightPercentage float64
	executionState   ExecutionState

	Durations *Durations
	Processes Collection[ProcessID, Process]
	Racks     Collection[RackID, *Rack]

	fullView       *ViewModel
	viewModels     []*ViewModel
	viewModelWires map[*ViewModel]viewModelWiring
	rackWires      map[RackID]rackWiring

	StartDateChanged        Signal[time.Duration]
	HeightPercentageChanged Signal[float64]
	ExecutionStateChanged   Signal[ExecutionState]
	ViewModelCreated        Signal[*ViewModel]
	ViewModelRemoved        Signal[*ViewModel]
}

// NewConstraint creates a constraint of the given default duration at
// vertical position y, together with its full view model.
func NewConstraint(id ConstraintID, fullViewID ViewModelID, y float64, duration time.Duration) *Constraint {
	c := newBareConstraint(id)
	c.Durations = NewDurations(duration)
	c.fullView = NewViewModel(fullViewID, FullView, c)
	c.setupViewModel(c.fullView)
	c.SetHeightPercentage(y)
	return c
}

func newBareConstraint(id ConstraintID) *Constraint {
	c := &Constraint{
		id:             id,
		Durations:      NewDurations(0),
		viewModelWires: make(map[*ViewModel]viewModelWiring),
		rackWires:      make(map[RackID]rackWiring),
	}
	c.Racks.Added.Connect(c.onRackAdded)
	c.Racks.Removed.Connect(c.onRackRemoved)
	return c
}

func (c *Constraint) onRackAdded(r *Rack) {
	r.parent = c
	r.OnDurationChanged(c.Durations.Default())
	c.rackWires[r.ID()] = rackWiring{
		processRemoved:  c.Processes.Removed.Connect(r.OnDeleteSharedProcess),
		durationChanged: c.Durations.DefaultDurationChanged.Connect(r.OnDurationChanged),
	}
}

func (c *Constraint) onRackRemoved(r *Rack) {
	if w, ok := c.rackWires[r.ID()]; ok {
		c.Processes.Removed.Disconnect(w.processRemoved)
		c.Durations.DefaultDurationChanged.Disconnect(w.durationChanged)
		delete(c.rackWires, r.ID())
	}
	r.parent = nil
}

func (c *Constraint) setupViewModel(vm *ViewModel) {
	c.viewModelWires[vm] = viewModelWiring{
		rackRemoving: c.Racks.Removing.Connect(vm.OnRackRemoval),
		deleted:      vm.AboutToBeDeleted.Connect(c.onDestroyedViewModel),
	}
	if vm == c.fullView {
		c.viewModels = slices.Insert(c.viewModels, 0, vm)
	} else {
		c.viewModels = append(c.viewModels, vm)
	}
	c.ViewModelCreated.Emit(vm)
}

func (c *Constraint) onDestroyedViewModel(vm *ViewModel) {
	i := slices.Index(c.viewModels, vm)
	if i < 0 {
		return
	}
	c.viewModels = slices.Delete(c.viewModels, i, i+1)
	if w, ok := c.viewModelWires[vm]; ok {
		c.Racks.Removing.Disconnect(w.rackRemoving)
		vm.AboutToBeDeleted.Disconnect(w.deleted)
		delete(c.viewModelWires, vm)
	}
	c.ViewModelRemoved.Emit(vm)
}

func (c *Constraint) ID() ConstraintID { return c.id }

func (c *Constraint) StartState() StateID { return c.startState }
func (c *Constraint) SetStartState(id StateID) { c.startState = id }
func (c *Constraint) EndState() StateID { return c.endState }
func (c *Constraint) SetEndState(id StateID) { c.endState = id }

func (c *Constraint) StartDate() time.Duration { return c.startDate }

// EndDate is the start date plus the default duration.
func (c *Constraint) EndDate() time.Duration {
	return c.startDate + c.Durations.Default()
}

func (c *Constraint) SetStartDate(d time.Duration) {
	if c.startDate == d {
		return
	}
	c.startDate = d
	c.StartDateChanged.Emit(d)
}

// Translate shifts the start date by delta.
func (c *Constraint) Translate(delta time.Duration) {
	c.SetStartDate(c.startDate + delta)
}

func (c *Constraint) HeightPercentage() float64 { return c.heightPercentage }

func (c *Constraint) SetHeightPercentage(y float64) {
	if c.heightPercentage == y {
		return
	}
	c.heightPercentage = y
	c.HeightPercentageChanged.Emit(y)
}

func (c *Constraint) ExecutionState() ExecutionState { return c.executionState }

func (c *Constraint) SetExecutionState(s ExecutionState) {
	if c.executionState == s {
		return
	}
	c.executionState = s
	c.ExecutionStateChanged.Emit(s)
}

// FullView returns the view model owned by the constraint.
func (c *Constraint) FullView() *ViewModel { return c.fullView }

// SetFullView replaces the full view. The previous one is unregistered and
// the replacement gets the same wiring the original had. A replacement that
// was registered as a secondary view is unregistered first.
func (c *Constraint) SetFullView(vm *ViewModel) {
	if vm == c.fullView {
		return
	}
	if c.fullView != nil {
		c.onDestroyedViewModel(c.fullView)
	}
	if slices.Contains(c.viewModels, vm) {
		c.onDestroyedViewModel(vm)
	}
	c.fullView = vm
	c.setupViewModel(vm)
}

// RegisterViewModel tracks a secondary view model owned by the view layer.
func (c *Constraint) RegisterViewModel(vm *ViewModel) {
	if slices.Contains(c.viewModels, vm) {
		return
	}
	c.setupViewModel(vm)
}

// ViewModels returns every registered view model, full view first.
func (c *Constraint) ViewModels() []*ViewModel {
	return slices.Clone(c.viewModels)
}

// StartExecution starts every owned process.
func (c *Constraint) StartExecution() {
	for _, p := range c.Processes.All() {
		p.StartExecution()
	}
}

// StopExecution rewinds the play position and stops every owned process.
func (c *Constraint) StopExecution() {
	c.Durations.SetPlayPercentage(0)
	c.Durations.SetExecutionSpeed(1.0)
	for _, p := range c.Processes.All() {
		p.StopExecution()
	}
}

// Reset rewinds the constraint and its processes and re-enables it. It is the
// only path that changes the execution state outside of user action.
func (c *Constraint) Reset() {
	c.Durations.SetPlayPercentage(0)
	c.Durations.SetExecutionSpeed(1.0)
	for _, p := range c.Processes.All() {
		p.Reset()
		p.StopExecution()
	}
	c.SetExecutionState(ExecutionEnabled)
}
