package metrics

import (
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksCountStackTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	doc := domain.NewDocument("m", process.NewRegistry(), time.Minute)
	stack := command.NewStack(doc, command.WithHooks(c.Hooks()))

	create, err := commands.NewCreateEventAfterEvent(doc, domain.RootScenarioPath(), doc.Scenario().StartEvent(), 5*time.Second, 0.5)
	require.NoError(t, err)
	require.NoError(t, stack.Push(create))

	for _, y := range []float64{0.2, 0.3} {
		move, err := commands.NewSetConstraintHeight(doc, domain.RootScenarioPath(), 1, y)
		require.NoError(t, err)
		require.NoError(t, stack.Push(move))
	}
	require.NoError(t, stack.Undo())
	require.NoError(t, stack.Redo())

	key := create.Key().String()
	height := "Scenario/SetConstraintHeight"
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(key, "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(height, "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(height, "merge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(height, "undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(height, "redo")))
}

func TestNewTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)

	a.ObserveGesture("MoveEvent", "Released")
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Gestures.WithLabelValues("MoveEvent", "Released")))
	assert.Same(t, reg, b.Gatherer())
}
