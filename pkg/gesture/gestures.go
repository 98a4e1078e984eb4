package gesture

import (
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
)

type moveConstraint struct {
	scenario domain.Path
	id       domain.ConstraintID
	cmd      *commands.MoveConstraint
}

// NewMoveConstraint starts dragging a constraint of the scenario at
// scenario. Both its start date and vertical position follow the pointer.
func NewMoveConstraint(stack *command.Stack, locker command.Locker, scenario domain.Path, id domain.ConstraintID, press Point, opts ...Option) *Machine {
	b := &moveConstraint{scenario: scenario, id: id}
	return New("move-constraint", stack, locker, scenario.Child(domain.KindConstraint, int32(id)), b, press, opts...)
}

func (b *moveConstraint) Capture(ctx *Context, doc *domain.Document) error {
	s, err := domain.Find[*domain.Scenario](doc, b.scenario)
	if err != nil {
		return err
	}
	c, err := s.Constraint(b.id)
	if err != nil {
		return err
	}
	ctx.ReferenceDate = c.StartDate()
	ctx.ReferenceY = c.HeightPercentage()
	return nil
}

func (b *moveConstraint) Build(ctx *Context, doc *domain.Document) (command.Command, error) {
	t := ctx.Target()
	if b.cmd != nil {
		b.cmd = b.cmd.Retarget(t.Date, t.Y)
		return b.cmd, nil
	}
	cmd, err := commands.NewMoveConstraint(doc, b.scenario, b.id, t.Date, t.Y)
	if err != nil {
		return nil, err
	}
	b.cmd = cmd
	return cmd, nil
}

type moveEvent struct {
	scenario domain.Path
	id       domain.EventID
	cmd      *commands.MoveEvent
}

// NewMoveEvent starts dragging an event; its time node follows the pointer
// horizontally and the event vertically.
func NewMoveEvent(stack *command.Stack, locker command.Locker, scenario domain.Path, id domain.EventID, press Point, opts ...Option) *Machine {
	b := &moveEvent{scenario: scenario, id: id}
	return New("move-event", stack, locker, scenario.Child(domain.KindEvent, int32(id)), b, press, opts...)
}

func (b *moveEvent) Capture(ctx *Context, doc *domain.Document) error {
	s, err := domain.Find[*domain.Scenario](doc, b.scenario)
	if err != nil {
		return err
	}
	ev, err := s.Event(b.id)
	if err != nil {
		return err
	}
	ctx.ReferenceDate = ev.Date()
	ctx.ReferenceY = ev.HeightPercentage()
	return nil
}

func (b *moveEvent) Build(ctx *Context, doc *domain.Document) (command.Command, error) {
	t := ctx.Target()
	if b.cmd != nil {
		b.cmd = b.cmd.Retarget(t.Date, t.Y)
		return b.cmd, nil
	}
	cmd, err := commands.NewMoveEvent(doc, b.scenario, b.id, t.Date, t.Y)
	if err != nil {
		return nil, err
	}
	b.cmd = cmd
	return cmd, nil
}

type moveTimeNode struct {
	scenario domain.Path
	id       domain.TimeNodeID
	event    domain.EventID
	cmd      *commands.MoveEvent
}

// NewMoveTimeNode starts dragging a time node horizontally. The move is
// carried by its first event, which keeps its vertical position.
func NewMoveTimeNode(stack *command.Stack, locker command.Locker, scenario domain.Path, id domain.TimeNodeID, press Point, opts ...Option) *Machine {
	b := &moveTimeNode{scenario: scenario, id: id}
	return New("move-time-node", stack, locker, scenario.Child(domain.KindTimeNode, int32(id)), b, press, opts...)
}

func (b *moveTimeNode) Capture(ctx *Context, doc *domain.Document) error {
	s, err := domain.Find[*domain.Scenario](doc, b.scenario)
	if err != nil {
		return err
	}
	tn, err := s.TimeNode(b.id)
	if err != nil {
		return err
	}
	events := tn.Events()
	if len(events) == 0 {
		return &domain.StructuralError{Kind: domain.KindTimeNode, ID: int32(b.id), Reason: "time node has no event"}
	}
	b.event = events[0]
	ctx.ReferenceDate = tn.Date()
	return nil
}

func (b *moveTimeNode) Build(ctx *Context, doc *domain.Document) (command.Command, error) {
	s, err := domain.Find[*domain.Scenario](doc, b.scenario)
	if err != nil {
		return nil, err
	}
	ev, err := s.Event(b.event)
	if err != nil {
		return nil, err
	}
	date := ctx.Target().Date
	y := ev.HeightPercentage()
	if b.cmd != nil {
		b.cmd = b.cmd.Retarget(date, y)
		return b.cmd, nil
	}
	cmd, err := commands.NewMoveEvent(doc, b.scenario, b.event, date, y)
	if err != nil {
		return nil, err
	}
	b.cmd = cmd
	return cmd, nil
}
