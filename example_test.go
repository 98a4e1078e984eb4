package cadence_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// ExampleNew creates an event after the start event, undoes it and redoes it.
func ExampleNew() {
	ed, err := cadence.New(memory.NewStore(), cadence.WithMetrics(prometheus.NewRegistry()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	err = ed.Apply(ctx, "score", func(doc *domain.Document) (command.Command, error) {
		return commands.NewCreateEventAfterEvent(doc, domain.RootScenarioPath(), doc.Scenario().StartEvent(), 10*time.Second, 0.5)
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := ed.Undo(ctx, "score"); err != nil {
		log.Fatal(err)
	}
	if err := ed.Redo(ctx, "score"); err != nil {
		log.Fatal(err)
	}

	h, err := ed.Manager().History(ctx, "score")
	if err != nil {
		log.Fatal(err)
	}
	for _, env := range h.Done {
		fmt.Println(env.Key())
	}
	// Output:
	// Scenario/CreateEventAfterEvent
}
