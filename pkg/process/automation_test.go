package process_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/process"
)

func TestAutomation_ValueAt(t *testing.T) {
	a := process.NewAutomation(1, time.Second, nil)
	require.NoError(t, a.SetRange(10, 20))
	assert.InDelta(t, 15, a.ValueAt(0.5), 1e-9)
	assert.InDelta(t, 10, a.ValueAt(-1), 1e-9)
	assert.InDelta(t, 20, a.ValueAt(2), 1e-9)

	a.SetPoints([]process.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 0.5, Y: 0.5}})
	assert.Equal(t, []process.Point{{X: 0, Y: 1}, {X: 0.5, Y: 0.5}, {X: 1, Y: 0}}, a.Points())
	assert.InDelta(t, 17.5, a.ValueAt(0.25), 1e-9)

	assert.Error(t, a.SetRange(2, 1))
}

func TestAutomation_Signals(t *testing.T) {
	a := process.NewAutomation(1, time.Second, nil)
	var addresses []string
	points := 0
	a.AddressChanged.Connect(func(s string) { addresses = append(addresses, s) })
	a.PointsChanged.Connect(func([]process.Point) { points++ })

	a.SetAddress("/synth/cutoff")
	a.SetAddress("/synth/cutoff")
	a.SetPoints(a.Points())
	a.SetPoints([]process.Point{{X: 0, Y: 0.2}})

	assert.Equal(t, []string{"/synth/cutoff"}, addresses)
	assert.Equal(t, 1, points)
}

func TestAutomationFactory_RestoreAndClone(t *testing.T) {
	c := domain.NewConstraint(1, 1, 0, 4*time.Second)
	a := process.NewAutomation(3, 4*time.Second, c)
	a.SetAddress("/mixer/gain")
	require.NoError(t, a.SetRange(-1, 1))
	a.SetPoints([]process.Point{{X: 0, Y: 0.1}, {X: 1, Y: 0.9}})

	data, err := a.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, process.AutomationKind, data.Kind)

	f := process.AutomationFactory{}
	restored, err := f.Restore(data, c, nil)
	require.NoError(t, err)
	got := restored.(*process.Automation)
	assert.Equal(t, "/mixer/gain", got.Address())
	assert.Equal(t, a.Points(), got.Points())
	assert.Equal(t, -1.0, got.Min())
	assert.Equal(t, 4*time.Second, got.Duration())
	assert.Same(t, c, got.Parent())

	other := domain.NewConstraint(2, 1, 0, time.Second)
	clone, err := a.Clone(3, other, nil)
	require.NoError(t, err)
	assert.Same(t, other, clone.Parent())
	a.SetAddress("/changed")
	assert.Equal(t, "/mixer/gain", clone.(*process.Automation).Address())

	layer := f.MakeLayer(a, 1)
	assert.Equal(t, process.AutomationKind, layer.Kind())
	assert.Equal(t, "linear", layer.Options()["curve"])
	assert.Equal(t, layer.Options(), f.CloneLayer(clone, 2, layer).Options())

	data.Payload = []byte(`{"min": 2, "max": 1}`)
	_, err = f.Restore(data, c, nil)
	assert.Error(t, err)
}

func TestScenarioFactory(t *testing.T) {
	reg := process.NewRegistry()
	c := domain.NewConstraint(1, 1, 0, time.Second)
	f, ok := reg.Factory(domain.ScenarioKind)
	require.True(t, ok)

	p := f.MakeProcess(2, time.Second, c)
	data, err := p.Snapshot()
	require.NoError(t, err)
	restored, err := f.Restore(data, c, reg)
	require.NoError(t, err)
	sc := restored.(*domain.Scenario)
	assert.Equal(t, 1, sc.TimeNodes.Len())
	assert.Equal(t, domain.ScenarioKind, f.MakeLayer(sc, 1).Kind())
}
