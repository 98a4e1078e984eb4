/*
Package cadence is an editing model for interactive scores: scenarios made of
time nodes, events, states and constraints, edited through undoable commands.

# Concept

A Document is rooted in a base constraint hosting the root Scenario process.
Every change goes through a command.Command that can be redone, undone,
merged with its successor and serialized. Commands live on a per-document
command.Stack; continuous edits such as drags go through a gesture.Machine,
which keeps one pending command while the pointer moves and commits a single
history entry on release.

Histories are persisted as ordered command envelopes in a ports.HistoryStore
(memory, file, Redis or SQLite) and replayed to rebuild a document.

# Usage

	store := memory.NewStore()
	ed, err := cadence.New(store)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	err = ed.Apply(ctx, "score", func(doc *domain.Document) (command.Command, error) {
		start := doc.Scenario().StartEvent()
		return commands.NewCreateEventAfterEvent(doc, domain.RootScenarioPath(), start, 10*time.Second, 0.5)
	})

	// Serve the documents over HTTP
	http.ListenAndServe(":8080", ed.Handler())

# Packages

  - pkg/domain: the scenario graph, racks, view models and object paths.
  - pkg/command: the command contract, the undo stack and the ongoing dispatcher.
  - pkg/commands: the scenario edit commands.
  - pkg/gesture: press, move and release state machines over the dispatcher.
  - pkg/session: per-document locking, replay and persistence.
  - pkg/adapters: history stores, lockers and the HTTP surface.
*/
package cadence
