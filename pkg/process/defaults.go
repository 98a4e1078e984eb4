package process

import (
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/registry"
)

// RegisterDefaults registers every built-in process kind.
func RegisterDefaults(r *registry.Registry) {
	r.Register(AutomationFactory{})
	r.Register(ScenarioFactory{})
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	RegisterDefaults(r)
	return r
}

var (
	_ domain.Process        = (*Automation)(nil)
	_ domain.ProcessFactory = AutomationFactory{}
	_ domain.ProcessFactory = ScenarioFactory{}
	_ domain.Factories      = (*registry.Registry)(nil)
)
