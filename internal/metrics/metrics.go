// Package metrics exposes Prometheus collectors for document editing.
package metrics

import (
	"errors"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts stack transitions and gesture outcomes.
type Collector struct {
	gatherer prometheus.Gatherer

	Commands *prometheus.CounterVec
	Gestures *prometheus.CounterVec
}

// New registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cmds, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_commands_total",
		Help: "Stack transitions, labeled by command key and operation (push, merge, undo, redo).",
	}, []string{"command", "op"}))
	if err != nil {
		return nil, err
	}
	gestures, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_gestures_total",
		Help: "Finished gestures, labeled by gesture name and final state.",
	}, []string{"gesture", "state"}))
	if err != nil {
		return nil, err
	}
	return &Collector{gatherer: gatherer, Commands: cmds, Gestures: gestures}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// Gatherer returns the gatherer matching the registerer given to New.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// Hooks returns stack hooks feeding the Commands counter.
func (c *Collector) Hooks() command.Hooks {
	return command.Hooks{
		OnPush: func(cmd command.Command, merged bool) {
			op := "push"
			if merged {
				op = "merge"
			}
			c.Commands.WithLabelValues(cmd.Key().String(), op).Inc()
		},
		OnUndo: func(cmd command.Command) {
			c.Commands.WithLabelValues(cmd.Key().String(), "undo").Inc()
		},
		OnRedo: func(cmd command.Command) {
			c.Commands.WithLabelValues(cmd.Key().String(), "redo").Inc()
		},
	}
}

// ObserveGesture records a gesture that reached a terminal state.
func (c *Collector) ObserveGesture(name, state string) {
	c.Gestures.WithLabelValues(name, state).Inc()
}
