package process

import (
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// ScenarioFactory builds nested scenarios.
type ScenarioFactory struct{}

func (ScenarioFactory) Kind() string { return domain.ScenarioKind }

func (ScenarioFactory) MakeProcess(id domain.ProcessID, duration time.Duration, parent *domain.Constraint) domain.Process {
	return domain.NewScenario(id, duration, parent)
}

func (ScenarioFactory) Restore(data domain.ProcessData, parent *domain.Constraint, factories domain.Factories) (domain.Process, error) {
	return domain.RestoreScenario(data, parent, factories)
}

func (ScenarioFactory) MakeLayer(proc domain.Process, id domain.LayerID) *domain.Layer {
	return domain.NewLayer(id, proc, nil)
}

func (ScenarioFactory) CloneLayer(proc domain.Process, id domain.LayerID, source *domain.Layer) *domain.Layer {
	return domain.NewLayer(id, proc, source.Options())
}
