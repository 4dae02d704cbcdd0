// Package session drives one live connection end to end: a state machine
// from CONNECTING through CLOSED, an inbound loop that routes transport
// messages to element handlers, and an outbound loop that renders dirty
// subtrees into patches. Every session owns exactly one reactive.Scope and
// one element tree; nothing here is shared across sessions.
package session
