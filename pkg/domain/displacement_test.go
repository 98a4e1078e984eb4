package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds start(0) -c1-> tn2(10s) -c2-> tn3(20s).
func chain(t *testing.T) *Scenario {
	t.Helper()
	factories, _ := testFactories()
	sc := NewDocument("d", factories, time.Minute).Scenario()
	attachAfterStart(t, sc, NewConstraint(1, 1, 0.5, 10*time.Second))

	tn := NewTimeNode(3, 20*time.Second)
	ev := NewEvent(3, 3, 20*time.Second, 0.5)
	next := NewState(3, 3, 0.5)
	ev.AddState(3)
	tn.AddEvent(3)
	require.NoError(t, sc.TimeNodes.Add(tn))
	require.NoError(t, sc.Events.Add(ev))
	require.NoError(t, sc.States.Add(next))

	// c2 starts on a second state of event 2.
	mid := NewState(4, 2, 0.5)
	ev2, _ := sc.Events.Get(2)
	ev2.AddState(4)
	require.NoError(t, sc.States.Add(mid))
	c2 := NewConstraint(2, 1, 0.5, 10*time.Second)
	c2.SetStartDate(10 * time.Second)
	c2.SetStartState(4)
	c2.SetEndState(3)
	require.NoError(t, sc.Attach(c2))
	require.NoError(t, sc.Validate())
	return sc
}

func TestMoveTimeNodeTo(t *testing.T) {
	sc := chain(t)

	got, err := sc.MoveTimeNodeTo(2, 14*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 14*time.Second, got)
	c1, _ := sc.Constraint(1)
	c2, _ := sc.Constraint(2)
	assert.Equal(t, 14*time.Second, c1.Durations.Default())
	assert.Equal(t, 14*time.Second, c2.StartDate())
	assert.Equal(t, 6*time.Second, c2.Durations.Default())
	assert.Equal(t, 20*time.Second, c2.EndDate())
	ev, _ := sc.Event(2)
	assert.Equal(t, 14*time.Second, ev.Date())

	got, err = sc.MoveTimeNodeTo(2, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, got, "clamped to the end of the outgoing constraint")
	assert.Equal(t, time.Duration(0), c2.Durations.Default())

	got, err = sc.MoveTimeNodeTo(2, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), got)

	got, err = sc.MoveTimeNodeTo(sc.StartTimeNode(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), got, "the start time node never moves")

	_, err = sc.MoveTimeNodeTo(42, time.Second)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaptureAndApply(t *testing.T) {
	sc := chain(t)
	saved, err := sc.CaptureTimeNode(2)
	require.NoError(t, err)
	assert.Len(t, saved.Constraints, 2)
	assert.False(t, saved.Empty())

	_, err = sc.MoveEventTo(2, 3*time.Second, 0.9)
	require.NoError(t, err)
	ev, _ := sc.Event(2)
	assert.Equal(t, 0.9, ev.HeightPercentage())

	require.NoError(t, sc.Apply(saved))
	tn, _ := sc.TimeNode(2)
	assert.Equal(t, 10*time.Second, tn.Date())
	assert.Equal(t, 0.5, ev.HeightPercentage())
	c2, _ := sc.Constraint(2)
	assert.Equal(t, 10*time.Second, c2.StartDate())
	assert.Equal(t, 10*time.Second, c2.Durations.Default())
	assert.True(t, c2.Durations.Rigid())
}

func TestAttachDetach(t *testing.T) {
	sc := chain(t)

	dup := NewConstraint(5, 1, 0, time.Second)
	dup.SetStartState(1)
	dup.SetEndState(2)
	assert.ErrorIs(t, sc.Attach(dup), ErrStructural)

	c, err := sc.Detach(2)
	require.NoError(t, err)
	assert.Equal(t, ConstraintID(2), c.ID())
	st, _ := sc.State(4)
	assert.Equal(t, ConstraintID(0), st.NextConstraint())
	require.NoError(t, sc.Validate())

	_, err = sc.Detach(2)
	assert.ErrorIs(t, err, ErrNotFound)
}
