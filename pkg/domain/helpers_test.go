package domain

import (
	"encoding/json"
	"time"
)

const fakeKind = "Fake"

// fakeProcess records Reset and StopExecution calls in log.
type fakeProcess struct {
	ProcessBase
	log *[]string
}

func (p *fakeProcess) Kind() string { return fakeKind }

func (p *fakeProcess) Reset() {
	*p.log = append(*p.log, "reset")
}

func (p *fakeProcess) StopExecution() {
	*p.log = append(*p.log, "stop")
	p.ProcessBase.StopExecution()
}

func (p *fakeProcess) Clone(id ProcessID, parent *Constraint, _ Factories) (Process, error) {
	return &fakeProcess{ProcessBase: NewProcessBase(id, p.Duration(), parent), log: p.log}, nil
}

func (p *fakeProcess) Snapshot() (ProcessData, error) {
	d := p.Data(fakeKind)
	d.Payload = json.RawMessage(`{}`)
	return d, nil
}

type fakeFactory struct {
	log *[]string
}

func (f fakeFactory) Kind() string { return fakeKind }

func (f fakeFactory) MakeProcess(id ProcessID, duration time.Duration, parent *Constraint) Process {
	return &fakeProcess{ProcessBase: NewProcessBase(id, duration, parent), log: f.log}
}

func (f fakeFactory) Restore(data ProcessData, parent *Constraint, _ Factories) (Process, error) {
	return f.MakeProcess(data.ID, data.Duration, parent), nil
}

func (f fakeFactory) MakeLayer(proc Process, id LayerID) *Layer {
	return NewLayer(id, proc, map[string]string{"made": "yes"})
}

func (f fakeFactory) CloneLayer(proc Process, id LayerID, source *Layer) *Layer {
	return NewLayer(id, proc, source.Options())
}

type factoryMap map[string]ProcessFactory

func (m factoryMap) Factory(kind string) (ProcessFactory, bool) {
	f, ok := m[kind]
	return f, ok
}

func testFactories() (factoryMap, *[]string) {
	log := &[]string{}
	return factoryMap{
		fakeKind:     fakeFactory{log: log},
		ScenarioKind: scenarioFactory{},
	}, log
}

// scenarioFactory lets nested scenarios be cloned and restored in tests.
type scenarioFactory struct{}

func (scenarioFactory) Kind() string { return ScenarioKind }

func (scenarioFactory) MakeProcess(id ProcessID, duration time.Duration, parent *Constraint) Process {
	return NewScenario(id, duration, parent)
}

func (scenarioFactory) Restore(data ProcessData, parent *Constraint, factories Factories) (Process, error) {
	return RestoreScenario(data, parent, factories)
}

func (scenarioFactory) MakeLayer(proc Process, id LayerID) *Layer {
	return NewLayer(id, proc, nil)
}

func (scenarioFactory) CloneLayer(proc Process, id LayerID, source *Layer) *Layer {
	return NewLayer(id, proc, source.Options())
}

// constraintWithRack builds a constraint hosting one fake process shown in
// rack 1, slot 1, layer 1.
func constraintWithRack(factories Factories) *Constraint {
	c := NewConstraint(1, 1, 0.5, 10*time.Second)
	f, _ := factories.Factory(fakeKind)
	p := f.MakeProcess(1, 10*time.Second, c)
	_ = c.Processes.Add(p)
	r := NewRack(1)
	s := NewSlot(1, 100)
	_ = s.Layers.Add(f.MakeLayer(p, 1))
	_ = r.Slots.Add(s)
	_ = c.Racks.Add(r)
	c.FullView().ShowRack(1)
	return c
}
