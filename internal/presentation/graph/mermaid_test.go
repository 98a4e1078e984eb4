package graph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/process"
)

func twoConstraints(t *testing.T) *domain.Document {
	t.Helper()
	doc := domain.NewDocument("doc", process.NewRegistry(), time.Minute)
	root := domain.RootScenarioPath()
	first, err := commands.NewCreateEventAfterEvent(doc, root, 1, 10*time.Second, 0.5)
	require.NoError(t, err)
	require.NoError(t, first.Redo(doc))
	second, err := commands.NewCreateEventAfterEvent(doc, root, 2, 25*time.Second, 0.5)
	require.NoError(t, err)
	require.NoError(t, second.Redo(doc))
	return doc
}

func TestGenerateMermaid(t *testing.T) {
	doc := twoConstraints(t)
	sc := doc.Scenario()

	out, err := graph.GenerateMermaid(sc, nil)
	require.NoError(t, err)
	for _, want := range []string{
		"graph LR\n",
		"subgraph tn1[\"t=0s\"]",
		"ev1((\"event 1\"))",
		"ev2(\"event 2\")",
		"subgraph tn3[\"t=25s\"]",
		"ev1 -- \"c1 10s\" --> ev2",
		"ev2 -- \"c2 15s\" --> ev3",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "linkStyle")
}

func TestGenerateMermaid_States(t *testing.T) {
	doc := twoConstraints(t)
	sc := doc.Scenario()
	c1, _ := sc.Constraint(1)
	c2, _ := sc.Constraint(2)
	c1.SetExecutionState(domain.ExecutionDisabled)
	c2.SetExecutionState(domain.ExecutionExecuting)
	_ = c2.Processes.Add(process.NewAutomation(1, c2.Durations.Default(), c2))

	out, err := graph.GenerateMermaid(sc, &graph.Overlay{Selected: []domain.ConstraintID{1, 9}})
	require.NoError(t, err)
	assert.Contains(t, out, "ev1 -. \"c1 10s\" .-> ev2")
	assert.Contains(t, out, "c2 15s <br/> 1 process(es)")
	assert.Contains(t, out, "linkStyle 1 stroke:#2e7d32")
	assert.Contains(t, out, "linkStyle 0 stroke:#fbc02d")
}

func TestGenerateMermaid_DanglingState(t *testing.T) {
	doc := twoConstraints(t)
	sc := doc.Scenario()
	c1, _ := sc.Constraint(1)
	c1.SetEndState(99)

	_, err := graph.GenerateMermaid(sc, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
