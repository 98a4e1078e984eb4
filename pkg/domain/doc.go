/*
Package domain contains the scenario document model edited by cadence.

A document is a tree of nested containers. Its root is a base Constraint that
hosts a Scenario process; a Scenario owns a graph of States, Events, TimeNodes
and Constraints, and every Constraint can host further Processes (including
nested Scenarios) exposed through Racks, Slots and Layers.

This package is kept free of I/O. Mutation happens through setters that detect
no-op writes and notify subscribers through Signals, so that dependent
machinery (racks tracking a constraint duration, view models tracking racks)
stays consistent.

# Key Entities

  - Constraint: a timed interval between two States, hosting Processes.
  - Event / TimeNode / State: the synchronization points of the graph.
  - Rack / Slot / Layer: the structural containers exposing Processes.
  - Process: polymorphic payload selected by its Kind.
  - Document / Path: the addressing root used by serialized commands.
*/
package domain
