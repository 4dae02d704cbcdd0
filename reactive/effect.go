package reactive

import "sync"

// Cleanup is returned by an effect body and run before the effect's next
// run, or on disposal.
type Cleanup func()

// Effect re-runs a thunk whenever a signal or derived it read on its last
// run changes. Effects are the only reactive primitive that schedules
// itself on a Scope's flush queue — a Derived propagates synchronously
// instead (see Derived.notifyDirty).
type Effect struct {
	_id  uint64
	name string

	thunk func() Cleanup
	scope *Scope

	mu       sync.Mutex
	cleanup  Cleanup
	sources  []signalSource
	disposed bool
	dirty    bool
}

// EffectOption configures an Effect at creation.
type EffectOption func(*Effect)

// WithName attaches a name to an effect. Names have no effect on
// scheduling; they exist for logging and for CycleError.EffectName, so a
// DependencyCycle abort can report which effect was running, per
// SPEC_FULL.md's R-module logging requirement. Effects are unnamed by
// default.
func WithName(name string) EffectOption {
	return func(e *Effect) { e.name = name }
}

// signalSource is the minimal surface an Effect/Derived needs to unsubscribe
// itself from whatever it read.
type signalSource interface {
	unsubscribe(l Listener)
}

// CreateEffect creates and immediately runs an effect inside scope; a nil
// scope means the Scope installed on this goroutine by Run, if any. The
// first run captures the effect's initial dependency set, exactly as a
// rerun would.
func CreateEffect(scope *Scope, thunk func() Cleanup, opts ...EffectOption) *Effect {
	if scope == nil {
		scope = activeScope()
	}
	e := &Effect{_id: nextID(), thunk: thunk, scope: scope}
	for _, opt := range opts {
		opt(e)
	}
	if scope != nil {
		scope.registerOwned(e)
	}
	e.run()
	return e
}

func (e *Effect) id() uint64 { return e._id }

// Name returns the effect's registered name, or "" if it was created
// without WithName.
func (e *Effect) Name() string { return e.name }

// notifyDirty implements Listener: mark pending and enqueue on the scope's
// flush queue, deduplicated by CAS-like check inside Scope.schedule.
func (e *Effect) notifyDirty() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	alreadyDirty := e.dirty
	e.dirty = true
	scope := e.scope
	e.mu.Unlock()

	if !alreadyDirty && scope != nil {
		scope.schedule(e)
	}
}

// run executes the thunk, replacing the effect's dependency set. Old
// dependencies that are no longer read are unsubscribed, per spec.md §3's
// "On rerun, replaces its dependency set" invariant.
func (e *Effect) run() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.dirty = false
	cleanup := e.cleanup
	oldSources := e.sources
	e.cleanup = nil
	e.sources = nil
	e.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	for _, src := range oldSources {
		src.unsubscribe(e)
	}

	var newCleanup Cleanup
	withListener(e, func() {
		newCleanup = e.thunk()
	})

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		if newCleanup != nil {
			newCleanup()
		}
		return
	}
	e.cleanup = newCleanup
	e.mu.Unlock()
}

// addSource records a dependency read during this effect's current run. It
// is called by Signal.Get/Derived.Get, not user code.
func (e *Effect) addSource(src signalSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sources {
		if s == src {
			return
		}
	}
	e.sources = append(e.sources, src)
}

// Dispose unsubscribes the effect from every current dependency and marks
// it tombstoned. Idempotent, per spec.md §3's "Disposal idempotent" rule.
func (e *Effect) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	cleanup := e.cleanup
	sources := e.sources
	e.cleanup = nil
	e.sources = nil
	e.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	for _, src := range sources {
		src.unsubscribe(e)
	}
}

// IsDisposed reports whether Dispose has run.
func (e *Effect) IsDisposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}
