/*
Package command holds the undoable command model of a document.

A Command mutates a domain.Document through Redo and reverts it through
Undo. Committed commands live on a Stack; a gesture in progress is driven
through an OngoingDispatcher, which applies every intermediate command
immediately and hands a single command to the Stack on commit.

Commands travel between processes as an Envelope: the command Key plus its
JSON parameters, undo values included. A Registry turns envelopes back into
commands.
*/
package command
