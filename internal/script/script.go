// Package script runs scripted edits (commands and pointer gestures)
// against a document. It backs the play command.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/gesture"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
	"gopkg.in/yaml.v3"
)

// ErrInvalidStep is returned for a step naming zero or several actions.
var ErrInvalidStep = errors.New("invalid step")

// Script is a sequence of edits on one document.
type Script struct {
	Document string        `yaml:"document"`
	Duration time.Duration `yaml:"duration"`
	Steps    []Step        `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	CreateEvent *CreateEvent `yaml:"create_event,omitempty"`
	AddProcess  *AddProcess  `yaml:"add_process,omitempty"`
	Gesture     *Gesture     `yaml:"gesture,omitempty"`
	Undo        int          `yaml:"undo,omitempty"`
	Redo        int          `yaml:"redo,omitempty"`
}

type CreateEvent struct {
	After domain.EventID `yaml:"after"`
	Date  time.Duration  `yaml:"date"`
	Y     float64        `yaml:"y"`
}

type AddProcess struct {
	Constraint domain.ConstraintID `yaml:"constraint"`
	Kind       string              `yaml:"kind"`
}

// Gesture kinds.
const (
	MoveConstraint = "move-constraint"
	MoveEvent      = "move-event"
	MoveTimeNode   = "move-time-node"
)

// Gesture is a press, a list of pointer moves and a release, or a cancel
// when Cancel is set.
type Gesture struct {
	Kind   string          `yaml:"kind"`
	Target int32           `yaml:"target"`
	Press  gesture.Point   `yaml:"press"`
	Moves  []gesture.Point `yaml:"moves"`
	Cancel bool            `yaml:"cancel,omitempty"`
}

func (s Step) validate() error {
	n := 0
	for _, set := range []bool{s.CreateEvent != nil, s.AddProcess != nil, s.Gesture != nil, s.Undo > 0, s.Redo > 0} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %d actions", ErrInvalidStep, n)
	}
	if g := s.Gesture; g != nil {
		switch g.Kind {
		case MoveConstraint, MoveEvent, MoveTimeNode:
		default:
			return fmt.Errorf("%w: unknown gesture %q", ErrInvalidStep, g.Kind)
		}
	}
	return nil
}

// Parse decodes a YAML script and checks its steps.
func Parse(r io.Reader) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &sc, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Documents is the session surface a script runs against.
type Documents interface {
	Do(ctx context.Context, docID string, fn func(context.Context, *session.Session) error) error
	Objects() ports.ObjectLocker
}

// Runner plays scripts.
type Runner struct {
	docs    Documents
	observe func(name, state string)
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver is called with the name and final state of every gesture.
func WithObserver(fn func(name, state string)) Option {
	return func(r *Runner) {
		r.observe = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(docs Documents, opts ...Option) *Runner {
	r := &Runner{docs: docs, observe: func(string, string) {}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays every step in order, each under its own document lock so that
// completed steps are persisted even if a later one fails.
func (r *Runner) Run(ctx context.Context, docID string, sc *Script) error {
	for i, st := range sc.Steps {
		err := r.docs.Do(ctx, docID, func(ctx context.Context, s *session.Session) error {
			return r.step(ctx, s, st)
		})
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		r.logger.Debug("script step done", "doc_id", docID, "step", i+1)
	}
	return nil
}

func (r *Runner) step(ctx context.Context, s *session.Session, st Step) error {
	doc, root := s.Document, domain.RootScenarioPath()
	switch {
	case st.CreateEvent != nil:
		c := st.CreateEvent
		cmd, err := commands.NewCreateEventAfterEvent(doc, root, c.After, c.Date, c.Y)
		if err != nil {
			return err
		}
		return s.Stack.Push(cmd)
	case st.AddProcess != nil:
		p := st.AddProcess
		cmd, err := commands.NewAddProcessToConstraint(doc, root.Child(domain.KindConstraint, int32(p.Constraint)), p.Kind)
		if err != nil {
			return err
		}
		return s.Stack.Push(cmd)
	case st.Gesture != nil:
		return r.gesture(ctx, s.Stack, st.Gesture)
	case st.Undo > 0:
		return repeat(st.Undo, s.Stack.Undo)
	case st.Redo > 0:
		return repeat(st.Redo, s.Stack.Redo)
	}
	return ErrInvalidStep
}

func repeat(n int, fn func() error) error {
	for range n {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) gesture(ctx context.Context, stack *command.Stack, g *Gesture) error {
	root := domain.RootScenarioPath()
	locks := r.docs.Objects()
	opts := []gesture.Option{gesture.WithLogger(r.logger)}

	var m *gesture.Machine
	switch g.Kind {
	case MoveConstraint:
		m = gesture.NewMoveConstraint(stack, locks, root, domain.ConstraintID(g.Target), g.Press, opts...)
	case MoveEvent:
		m = gesture.NewMoveEvent(stack, locks, root, domain.EventID(g.Target), g.Press, opts...)
	case MoveTimeNode:
		m = gesture.NewMoveTimeNode(stack, locks, root, domain.TimeNodeID(g.Target), g.Press, opts...)
	default:
		return fmt.Errorf("%w: unknown gesture %q", ErrInvalidStep, g.Kind)
	}
	defer func() {
		_ = m.Abort(ctx)
		r.observe(m.Name(), m.State().String())
	}()

	for _, p := range g.Moves {
		if err := m.Move(ctx, p); err != nil {
			return err
		}
	}
	if g.Cancel {
		return m.Cancel(ctx)
	}
	return m.Release(ctx)
}
