package gesture

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = domain.RootScenarioPath()

// fixture builds start(0) -c1-> A(10s) -c2-> B(20s).
type fixture struct {
	doc   *domain.Document
	stack *command.Stack
	locks *session.ObjectLocks
	s     *domain.Scenario
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureNamed(t, "g")
}

func newFixtureNamed(t *testing.T, docID string) *fixture {
	t.Helper()
	doc := domain.NewDocument(docID, process.NewRegistry(), time.Minute)
	stack := command.NewStack(doc)

	first, err := commands.NewCreateEventAfterEvent(doc, root, doc.Scenario().StartEvent(), 10*time.Second, 0.5)
	require.NoError(t, err)
	require.NoError(t, stack.Push(first))
	second, err := commands.NewCreateEventAfterEvent(doc, root, first.Event, 20*time.Second, 0.5)
	require.NoError(t, err)
	require.NoError(t, stack.Push(second))

	return &fixture{doc: doc, stack: stack, locks: session.NewObjectLocks(), s: doc.Scenario()}
}

func (f *fixture) constraint(t *testing.T, id domain.ConstraintID) *domain.Constraint {
	t.Helper()
	c, err := f.s.Constraint(id)
	require.NoError(t, err)
	return c
}

func at(sec float64, y float64) Point {
	return Point{Date: time.Duration(sec * float64(time.Second)), Y: y}
}

func TestMoveConstraint_ReleaseCommitsOneEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := len(f.stack.Done())
	c2 := f.constraint(t, 2)
	require.Equal(t, 10*time.Second, c2.StartDate())

	m := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))
	assert.Equal(t, Pressed, m.State())

	require.NoError(t, m.Move(ctx, at(25, 0.5)))
	assert.Equal(t, Moving, m.State())
	assert.Equal(t, 25*time.Second, c2.StartDate())
	assert.True(t, f.locks.Held(m.LockKey()))

	require.NoError(t, m.Move(ctx, at(30, 0.6)))
	assert.Equal(t, 30*time.Second, c2.StartDate())
	assert.InDelta(t, 0.6, c2.HeightPercentage(), 1e-9)
	assert.Len(t, f.stack.Done(), before, "nothing is recorded while moving")

	require.NoError(t, m.Release(ctx))
	assert.Equal(t, Released, m.State())
	assert.Len(t, f.stack.Done(), before+1)
	assert.False(t, f.locks.Held(m.LockKey()))

	require.NoError(t, f.stack.Undo())
	assert.Equal(t, 10*time.Second, c2.StartDate())
	assert.InDelta(t, 0.5, c2.HeightPercentage(), 1e-9)

	require.NoError(t, f.stack.Redo())
	assert.Equal(t, 30*time.Second, c2.StartDate())
}

func TestMoveConstraint_CancelLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := len(f.stack.Done())
	c2 := f.constraint(t, 2)

	m := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))
	require.NoError(t, m.Move(ctx, at(25, 0.9)))
	require.NoError(t, m.Cancel(ctx))

	assert.Equal(t, Cancelled, m.State())
	assert.Equal(t, 10*time.Second, c2.StartDate())
	assert.InDelta(t, 0.5, c2.HeightPercentage(), 1e-9)
	assert.Len(t, f.stack.Done(), before)
	assert.False(t, f.locks.Held(m.LockKey()))
}

func TestReleaseWithoutMove(t *testing.T) {
	f := newFixture(t)
	before := len(f.stack.Done())

	m := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))
	require.NoError(t, m.Release(context.Background()))
	assert.Equal(t, Released, m.State())
	assert.Len(t, f.stack.Done(), before)
}

func TestFinishedGestureRejectsInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))
	require.NoError(t, m.Move(ctx, at(12, 0.5)))
	require.NoError(t, m.Release(ctx))

	assert.ErrorIs(t, m.Move(ctx, at(20, 0.5)), ErrGestureFinished)
	assert.ErrorIs(t, m.Release(ctx), ErrGestureFinished)
	assert.ErrorIs(t, m.Cancel(ctx), ErrGestureFinished)
	assert.NoError(t, m.Abort(ctx))
	assert.Equal(t, 12*time.Second, f.constraint(t, 2).StartDate())
}

func TestConcurrentGesturesOnSameObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))
	second := NewMoveConstraint(f.stack, f.locks, root, 2, at(10, 0.5))

	require.NoError(t, first.Move(ctx, at(15, 0.5)))
	err := second.Move(ctx, at(18, 0.5))
	assert.ErrorIs(t, err, ports.ErrLocked)
	assert.Equal(t, Cancelled, second.State())
	assert.Equal(t, 15*time.Second, f.constraint(t, 2).StartDate())

	require.NoError(t, first.Release(ctx))
	third := NewMoveConstraint(f.stack, f.locks, root, 2, at(15, 0.5))
	require.NoError(t, third.Move(ctx, at(16, 0.5)))
	require.NoError(t, third.Release(ctx))
	assert.Equal(t, 16*time.Second, f.constraint(t, 2).StartDate())
}

func TestSameObjectInTwoDocuments(t *testing.T) {
	ctx := context.Background()
	a := newFixture(t)
	b := newFixtureNamed(t, "other")
	b.locks = a.locks

	first := NewMoveConstraint(a.stack, a.locks, root, 2, at(10, 0.5))
	second := NewMoveConstraint(b.stack, b.locks, root, 2, at(10, 0.5))
	require.NotEqual(t, first.LockKey(), second.LockKey())

	require.NoError(t, first.Move(ctx, at(15, 0.5)))
	require.NoError(t, second.Move(ctx, at(18, 0.5)))
	assert.Equal(t, Moving, second.State())
	assert.Equal(t, 15*time.Second, a.constraint(t, 2).StartDate())
	assert.Equal(t, 18*time.Second, b.constraint(t, 2).StartDate())

	require.NoError(t, first.Release(ctx))
	require.NoError(t, second.Release(ctx))
	assert.False(t, a.locks.Held(first.LockKey()))
	assert.False(t, a.locks.Held(second.LockKey()))
}

func TestMissingTargetCancels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := NewMoveConstraint(f.stack, f.locks, root, 99, at(0, 0))
	err := m.Move(ctx, at(5, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, Cancelled, m.State())
	assert.False(t, f.locks.Held(m.LockKey()))
}

func TestMoveTimeNode_ClampsAndUndoes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := len(f.stack.Done())
	c1, c2 := f.constraint(t, 1), f.constraint(t, 2)

	m := NewMoveTimeNode(f.stack, f.locks, root, 2, at(10, 0))
	require.NoError(t, m.Move(ctx, at(15, 0.9)))

	tn, err := f.s.TimeNode(2)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, tn.Date())
	assert.Equal(t, 15*time.Second, c1.Durations.Default())
	assert.Equal(t, 15*time.Second, c2.StartDate())
	assert.Equal(t, 20*time.Second, c2.EndDate(), "outgoing constraints keep their end")

	require.NoError(t, m.Move(ctx, at(40, 0)))
	assert.Equal(t, 20*time.Second, tn.Date(), "clamped to the end of the outgoing constraint")

	ev, err := f.s.Event(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ev.HeightPercentage(), 1e-9, "time node moves are horizontal only")

	require.NoError(t, m.Release(ctx))
	assert.Len(t, f.stack.Done(), before+1)

	require.NoError(t, f.stack.Undo())
	assert.Equal(t, 10*time.Second, tn.Date())
	assert.Equal(t, 10*time.Second, c1.Durations.Default())
	assert.Equal(t, 10*time.Second, c2.StartDate())
	assert.Equal(t, 10*time.Second, c2.Durations.Default())
}

func TestMoveEvent_FollowsPointer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := NewMoveEvent(f.stack, f.locks, root, 3, at(20, 0.5))
	require.NoError(t, m.Move(ctx, at(22, 0.25)))
	require.NoError(t, m.Release(ctx))

	ev, err := f.s.Event(3)
	require.NoError(t, err)
	assert.Equal(t, 22*time.Second, ev.Date())
	assert.InDelta(t, 0.25, ev.HeightPercentage(), 1e-9)
	assert.Equal(t, 12*time.Second, f.constraint(t, 2).Durations.Default())
	assert.Equal(t, "move-event", m.Name())
}

func TestContextTarget(t *testing.T) {
	c := Context{Press: at(10, 0.5), Current: at(4, 0.7), ReferenceDate: 5 * time.Second, ReferenceY: 0.1}
	assert.Equal(t, at(-6, 0.2).Date, c.Delta().Date)
	target := c.Target()
	assert.Equal(t, time.Duration(0), target.Date, "dates never go negative")
	assert.InDelta(t, 0.3, target.Y, 1e-9)
}
