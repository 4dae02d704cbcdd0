package element

import "errors"

// ErrDetachedScope is returned by Exit when the token passed does not match
// the top of the current goroutine's parent stack — either it was already
// exited, or scopes were exited out of nesting order. Per spec.md §7, this
// is raised to the caller; the element tree is left in an inconsistent
// state and callers that own a session should treat it as fatal.
var ErrDetachedScope = errors.New("element: detached scope (exit token does not match top of stack)")

// ErrMeasuredHasChild is returned by AddChild when called on an element
// that has a measure callback set — a leaf with a measure function cannot
// acquire children, per spec.md §3/§7.
var ErrMeasuredHasChild = errors.New("element: cannot add child to an element with a measure callback")
