package reactive

import (
	"runtime"
	"sync"
)

// trackingSlot is the task-local state that makes dependency tracking work
// without a thread-global: which Listener (if any) is currently recording
// reads, and which Scope new Effects created with a nil scope register
// against.
//
// Keyed by goroutine id so that concurrent goroutines never observe each
// other's in-flight tracking, matching the "task-local active-subscriber
// slot" design note in the specification this package implements.
type trackingSlot struct {
	listener Listener
	scope    *Scope
}

var (
	slots   sync.Map // goroutine id (uint64) -> *trackingSlot
	idBytes = 64
)

// goroutineID extracts the numeric id from the current goroutine's stack
// trace header ("goroutine 123 [running]: ..."). It is an implementation
// detail of task-local storage, not a stable public identifier.
func goroutineID() uint64 {
	buf := make([]byte, idBytes)
	n := runtime.Stack(buf, false)
	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		c := buf[i]
		if c == ' ' {
			break
		}
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

func currentSlot() *trackingSlot {
	gid := goroutineID()
	if s, ok := slots.Load(gid); ok {
		return s.(*trackingSlot)
	}
	s := &trackingSlot{}
	slots.Store(gid, s)
	return s
}

// dropSlot releases the tracking slot for the calling goroutine. Slots are
// small, so this is an optimization rather than a correctness requirement.
func dropSlot() {
	slots.Delete(goroutineID())
}

func activeListener() Listener {
	return currentSlot().listener
}

// withListener runs fn with l installed as the active subscriber, restoring
// whatever was active beforehand. Nested calls form an implicit stack via
// the defer chain, matching spec.md's "active subscriber" nesting rule.
func withListener(l Listener, fn func()) {
	slot := currentSlot()
	prev := slot.listener
	slot.listener = l
	defer func() { slot.listener = prev }()
	fn()
}

// Untrack runs fn with dependency tracking suspended: reads inside fn do not
// subscribe whatever listener is currently active.
func Untrack(fn func()) {
	withListener(nil, fn)
}

// UntrackValue is Untrack for functions that return a value.
func UntrackValue[T any](fn func() T) T {
	var v T
	withListener(nil, func() { v = fn() })
	return v
}

func activeScope() *Scope {
	return currentSlot().scope
}

// Run installs scope as the current task's Scope for the duration of fn.
// Effects created inside fn with a nil scope argument to CreateEffect are
// owned by scope and will be disposed when scope is disposed; an effect
// given an explicit scope belongs to that one instead. Deriveds are not
// registered with any Scope. This is the task-local equivalent of passing
// an explicit reactive context to every call.
func Run(scope *Scope, fn func()) {
	slot := currentSlot()
	prev := slot.scope
	slot.scope = scope
	defer func() { slot.scope = prev }()
	fn()
}
