package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/aretw0/cadence/pkg/registry"
)

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()
	assert.Empty(t, r.Kinds())

	_, err := r.MustFactory(process.AutomationKind)
	require.ErrorIs(t, err, domain.ErrFactoryNotFound)
	var fe *domain.FactoryError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, process.AutomationKind, fe.Kind)

	r.Register(process.ScenarioFactory{})
	r.Register(process.AutomationFactory{})
	r.Register(process.AutomationFactory{})
	assert.Equal(t, []string{process.AutomationKind, domain.ScenarioKind}, r.Kinds())

	f, err := r.MustFactory(domain.ScenarioKind)
	require.NoError(t, err)
	assert.Equal(t, domain.ScenarioKind, f.Kind())
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	r := process.NewRegistry()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, ok := r.Factory(process.AutomationKind)
				assert.True(t, ok)
				r.Register(process.ScenarioFactory{})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, r.Kinds(), 2)
}
