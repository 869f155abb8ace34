// Package errors defines the closed set of failure conditions shared by the
// face pipeline, the container codec and the command layer.
//
// Callers branch on the kind of failure with errors.Is; the messages are for
// humans and must not be matched on.
package errors
