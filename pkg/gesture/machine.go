package gesture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
)

// ErrGestureFinished is returned when input reaches a released or cancelled
// gesture.
var ErrGestureFinished = errors.New("gesture finished")

// State is the position of a gesture in its lifecycle.
type State int

const (
	Pressed State = iota
	Moving
	Released
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Moving:
		return "moving"
	case Released:
		return "released"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the gesture accepts no more input.
func (s State) Terminal() bool { return s == Released || s == Cancelled }

// Input is a pointer event fed to a gesture.
type Input int

const (
	InputMove Input = iota
	InputRelease
	InputCancel
)

func (i Input) String() string {
	switch i {
	case InputMove:
		return "move"
	case InputRelease:
		return "release"
	case InputCancel:
		return "cancel"
	}
	return "unknown"
}

type edge struct {
	from State
	in   Input
}

var transitions = map[edge]State{
	{Pressed, InputMove}:    Moving,
	{Pressed, InputRelease}: Released,
	{Pressed, InputCancel}:  Cancelled,
	{Moving, InputMove}:     Moving,
	{Moving, InputRelease}:  Released,
	{Moving, InputCancel}:   Cancelled,
}

// Point is a pointer position in document coordinates.
type Point struct {
	Date time.Duration `yaml:"date" json:"date"`
	Y    float64       `yaml:"y" json:"y"`
}

// Context is the state a gesture carries between inputs.
type Context struct {
	Press   Point
	Current Point

	// Reference values of the target, read when the pointer first moves.
	ReferenceDate time.Duration
	ReferenceY    float64
}

// Delta is the pointer displacement since the press.
func (c *Context) Delta() Point {
	return Point{Date: c.Current.Date - c.Press.Date, Y: c.Current.Y - c.Press.Y}
}

// Target is the reference position shifted by the pointer displacement.
func (c *Context) Target() Point {
	d := c.Delta()
	return Point{Date: max(c.ReferenceDate+d.Date, 0), Y: c.ReferenceY + d.Y}
}

// Behavior is what distinguishes one gesture from another.
type Behavior interface {
	// Capture stores the reference values of the target in ctx.
	Capture(ctx *Context, doc *domain.Document) error
	// Build returns the command moving the target for ctx.
	Build(ctx *Context, doc *domain.Document) (command.Command, error)
}

// Machine runs one press-move-release interaction.
type Machine struct {
	name       string
	state      State
	ctx        Context
	behavior   Behavior
	dispatcher *command.OngoingDispatcher
	logger     *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger configures a logger for the Machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a gesture editing the object at path, starting in Pressed.
func New(name string, stack *command.Stack, locker command.Locker, path domain.Path, behavior Behavior, press Point, opts ...Option) *Machine {
	m := &Machine{
		name:     name,
		state:    Pressed,
		ctx:      Context{Press: press, Current: press},
		behavior: behavior,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.dispatcher = command.NewOngoingDispatcher(stack, locker, path, command.WithDispatcherLogger(m.logger))
	return m
}

func (m *Machine) Name() string { return m.name }
func (m *Machine) State() State { return m.state }
func (m *Machine) Context() Context { return m.ctx }
func (m *Machine) Path() domain.Path { return m.dispatcher.Path() }

// LockKey is the object lock key held while the gesture is moving.
func (m *Machine) LockKey() string { return m.dispatcher.LockKey() }

// Move feeds a pointer position.
func (m *Machine) Move(ctx context.Context, p Point) error {
	if m.state.Terminal() {
		return ErrGestureFinished
	}
	m.ctx.Current = p
	return m.fire(ctx, InputMove)
}

// Release ends the gesture and commits its effect as one history entry.
func (m *Machine) Release(ctx context.Context) error {
	return m.fire(ctx, InputRelease)
}

// Cancel ends the gesture and reverts its effect.
func (m *Machine) Cancel(ctx context.Context) error {
	return m.fire(ctx, InputCancel)
}

// Abort cancels the gesture unless it already finished. It is meant to be
// deferred by whoever feeds the gesture.
func (m *Machine) Abort(ctx context.Context) error {
	if m.state.Terminal() {
		return nil
	}
	return m.Cancel(ctx)
}

func (m *Machine) fire(ctx context.Context, in Input) error {
	next, ok := transitions[edge{m.state, in}]
	if !ok {
		return fmt.Errorf("%s %s in state %s: %w", m.name, in, m.state, ErrGestureFinished)
	}
	prev := m.state
	m.state = next
	m.logger.Debug("gesture transition", "gesture", m.name, "from", prev.String(), "to", next.String())
	return m.enter(ctx, prev, next)
}

func (m *Machine) enter(ctx context.Context, prev, next State) error {
	doc := m.dispatcher.Document()
	switch next {
	case Moving:
		if prev == Pressed {
			if err := m.behavior.Capture(&m.ctx, doc); err != nil {
				m.state = Cancelled
				return fmt.Errorf("%s: %w", m.name, err)
			}
		}
		cmd, err := m.behavior.Build(&m.ctx, doc)
		if err == nil {
			err = m.dispatcher.Submit(ctx, cmd)
		}
		if err != nil {
			// Drops any pending command. A failed Submit has already restored
			// the document and released the lock.
			m.state = Cancelled
			_ = m.dispatcher.Rollback(ctx)
			return fmt.Errorf("%s: %w", m.name, err)
		}
	case Released:
		return m.dispatcher.Commit(ctx)
	case Cancelled:
		return m.dispatcher.Rollback(ctx)
	}
	return nil
}
