/*
Package session implements document management and history persistence.

A Manager owns the live documents of a process. Access to one document is
serialized by a ref-counted per-document mutex, optionally backed by a
distributed lock so that several replicas can share one history store.
Every document is rebuilt from its stored command history on first use and
its history is saved back after each successful operation.

ObjectLocks is the in-process ObjectLocker handed to gestures.
*/
package session
