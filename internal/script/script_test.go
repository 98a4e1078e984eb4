package script

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndRun(t *testing.T) {
	ctx := context.Background()
	sc, err := Load(filepath.Join("testdata", "drag.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.Document)
	assert.Equal(t, time.Minute, sc.Duration)
	require.Len(t, sc.Steps, 6)
	assert.Equal(t, 25*time.Second, sc.Steps[2].Gesture.Moves[1].Date)

	store := memory.NewStore()
	mgr := session.NewManager(store, process.NewRegistry(), commands.NewRegistry(), session.WithDocumentDuration(sc.Duration))

	var observed []string
	r := NewRunner(mgr, WithObserver(func(name, state string) {
		observed = append(observed, name+":"+state)
	}))
	require.NoError(t, r.Run(ctx, sc.Document, sc))
	assert.Equal(t, []string{"move-constraint:released", "move-event:cancelled"}, observed)

	h, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	var names []string
	for _, env := range h.Done {
		names = append(names, env.Name)
	}
	assert.Equal(t, []string{"CreateEventAfterEvent", "CreateEventAfterEvent", "MoveConstraint"}, names)
	require.Len(t, h.Undone, 1)
	assert.Equal(t, "AddProcessToConstraint", h.Undone[0].Name)

	err = mgr.View(ctx, "demo", func(_ context.Context, s *session.Session) error {
		c, err := s.Document.Scenario().Constraint(2)
		require.NoError(t, err)
		assert.Equal(t, 25*time.Second, c.StartDate())
		assert.InDelta(t, 0.4, c.HeightPercentage(), 1e-9)
		ev, err := s.Document.Scenario().Event(3)
		require.NoError(t, err)
		assert.Equal(t, 20*time.Second, ev.Date(), "cancelled gesture leaves no trace")
		return nil
	})
	require.NoError(t, err)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty step":    "steps:\n  - {}\n",
		"two actions":   "steps:\n  - {undo: 1, redo: 1}\n",
		"bad gesture":   "steps:\n  - gesture: {kind: spin, target: 1}\n",
		"unknown field": "steps:\n  - jump: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestRun_StopsAtFailingStep(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := session.NewManager(store, process.NewRegistry(), commands.NewRegistry())

	sc, err := Parse(strings.NewReader(`
steps:
  - create_event: {after: 1, date: 5s, y: 0.5}
  - undo: 2
`))
	require.NoError(t, err)

	err = NewRunner(mgr).Run(ctx, "doc", sc)
	assert.ErrorContains(t, err, "step 2")

	h, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, h.Done, 1, "the first step was persisted")
}
