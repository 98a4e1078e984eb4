package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneConstraint_Topology(t *testing.T) {
	factories, _ := testFactories()
	src := constraintWithRack(factories)
	src.SetStartDate(2 * time.Second)
	src.Durations.SetPlayPercentage(0.3)
	src.SetExecutionState(ExecutionDisabled)

	clone, err := CloneConstraint(src, 9, factories)
	require.NoError(t, err)

	assert.Equal(t, ConstraintID(9), clone.ID())
	assert.Equal(t, src.StartDate(), clone.StartDate())
	assert.Equal(t, src.HeightPercentage(), clone.HeightPercentage())
	assert.Equal(t, 0.3, clone.Durations.PlayPercentage())
	assert.Equal(t, ExecutionEnabled, clone.ExecutionState(), "execution state is not copied")

	p, ok := clone.Processes.Get(1)
	require.True(t, ok)
	assert.Same(t, clone, p.Parent())
	orig, _ := src.Processes.Get(1)
	assert.NotSame(t, orig, p)

	r, ok := clone.Racks.Get(1)
	require.True(t, ok)
	s, _ := r.Slots.Get(1)
	l, ok := s.Layers.Get(1)
	require.True(t, ok)
	shown, err := l.Process()
	require.NoError(t, err)
	assert.Same(t, p, shown, "cloned layers show the cloned process")
	assert.Equal(t, map[string]string{"made": "yes"}, l.Options())

	rack, ok := clone.FullView().ShownRack()
	assert.True(t, ok)
	assert.Equal(t, RackID(1), rack)
	assert.Equal(t, src.FullView().ID(), clone.FullView().ID())
	assert.Len(t, clone.ViewModels(), 1)

	// The copy is independent of the source.
	clone.Durations.Resize(time.Minute)
	assert.Equal(t, 10*time.Second, src.Durations.Default())
	assert.Equal(t, time.Minute, r.Duration())
}

func TestCloneConstraint_SkipsSecondaryViewModels(t *testing.T) {
	factories, _ := testFactories()
	src := NewConstraint(1, 1, 0, time.Second)
	src.RegisterViewModel(NewViewModel(2, TemporalView, src))

	clone, err := CloneConstraint(src, 2, factories)
	require.NoError(t, err)
	assert.Len(t, clone.ViewModels(), 1)
	assert.Equal(t, FullView, clone.ViewModels()[0].Kind())
}

func TestCloneConstraint_MissingFactory(t *testing.T) {
	factories, _ := testFactories()
	src := constraintWithRack(factories)
	delete(factories, fakeKind)

	_, err := CloneConstraint(src, 2, factories)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFactoryNotFound)
	var fe *FactoryError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fakeKind, fe.Kind)
}

func TestScenario_CloneKeepsGraph(t *testing.T) {
	factories, _ := testFactories()
	doc := NewDocument("d", factories, time.Minute)
	sc := doc.Scenario()
	c := NewConstraint(1, 1, 0.5, 5*time.Second)
	attachAfterStart(t, sc, c)

	out, err := sc.Clone(4, nil, factories)
	require.NoError(t, err)
	clone := out.(*Scenario)
	assert.Equal(t, ProcessID(4), clone.ID())
	assert.Equal(t, sc.States.IDs(), clone.States.IDs())
	assert.Equal(t, sc.Constraints.IDs(), clone.Constraints.IDs())
	require.NoError(t, clone.Validate())

	st, _ := clone.States.Get(1)
	st.SetNextConstraint(0)
	orig, _ := sc.States.Get(1)
	assert.Equal(t, ConstraintID(1), orig.NextConstraint())
}

// attachAfterStart adds time node 2, event 2 and state 2 at the end of c and
// links c from the start state.
func attachAfterStart(t *testing.T, sc *Scenario, c *Constraint) {
	t.Helper()
	end := c.EndDate()
	tn := NewTimeNode(2, end)
	ev := NewEvent(2, tn.ID(), end, 0.5)
	st := NewState(2, ev.ID(), 0.5)
	ev.AddState(st.ID())
	tn.AddEvent(ev.ID())
	require.NoError(t, sc.TimeNodes.Add(tn))
	require.NoError(t, sc.Events.Add(ev))
	require.NoError(t, sc.States.Add(st))
	c.SetStartState(1)
	c.SetEndState(2)
	require.NoError(t, sc.Attach(c))
}
