/*
Package commands implements the undoable edits of a scenario document.

Every command stores object paths and ids rather than pointers, and carries
the values its Undo needs, so a serialized command can be replayed on
another replica of the document. Constructors read the current document to
capture those values; Redo and Undo only apply them.
*/
package commands
