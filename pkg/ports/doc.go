/*
Package ports defines the driven ports (interfaces) of a cadence session.

These interfaces decouple the document model from external implementations,
allowing histories to be kept in memory, on disk, in Redis or in SQLite, and
locks to be taken in process or across replicas.

# Key Interfaces

  - HistoryStore: persists the command history of a document.
  - ObjectLocker: grants non-blocking exclusive access to an object path while a gesture edits it.
  - DistributedLocker: serializes access to a whole document across replicas.
*/
package ports
