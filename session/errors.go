package session

import "errors"

// ErrSessionClosed is returned by operations attempted after a session has
// reached CLOSED.
var ErrSessionClosed = errors.New("session: closed")

// ErrUnknownTarget is logged (not returned to any caller) when an inbound
// message names a target_id absent from the registry, per spec.md §7's
// UnknownTarget kind: the session stays alive.
var ErrUnknownTarget = errors.New("session: unknown target_id")

// ErrUnknownHandler is logged when a target is registered but carries no
// prop at on_<type> for the message's event type.
var ErrUnknownHandler = errors.New("session: unknown handler")

// ErrMalformedEvent is logged when an inbound frame does not decode into
// the documented {type, target_id, value?, key?} shape.
var ErrMalformedEvent = errors.New("session: malformed event")
